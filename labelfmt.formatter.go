package labelfmt

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/itsatony/go-labelfmt/internal"
)

// Formatter renders label templates. A Formatter is immutable after New
// and safe for concurrent use: all per-call state lives in a renderState
// created inside Format.
type Formatter struct {
	config *formatterConfig
}

// New creates a Formatter with the given options.
func New(opts ...Option) *Formatter {
	config := defaultFormatterConfig()
	for _, opt := range opts {
		opt(config)
	}
	return &Formatter{config: config}
}

// renderState carries the arguments of one Format call. autoIndex numbers
// the empty {} fields left to right.
type renderState struct {
	positional []any
	named      map[string]any
	autoIndex  int
}

// placeholderValue marks a field that failed both lookup and evaluation.
// In safe mode the original placeholder text is written back verbatim.
type placeholderValue struct {
	field string
}

// Format renders template against positional and named arguments.
//
// In safe mode (the default) an unresolvable field stays in the output as
// its original placeholder and no error is returned; in strict mode it
// fails the call. Unbalanced braces and out-of-range numeric fields are
// errors in both modes.
func (f *Formatter) Format(template string, positional []any, named map[string]any) (string, error) {
	state := &renderState{
		positional: positional,
		named:      overlayValueMap(copyValueMap(f.config.names), named),
	}

	var opts []TokenizeOption
	if f.config.eolEscape {
		opts = append(opts, WithEOLEscapeOption())
	}

	var sb strings.Builder
	sc := NewFieldScanner(template, opts...)
	for sc.Scan() {
		tok := sc.Token()
		sb.WriteString(tok.Literal)
		if !tok.HasField {
			continue
		}
		text, err := f.renderField(tok, state)
		if err != nil {
			f.config.logger.Debug(LogMsgFormatFailed,
				zap.String(LogFieldTemplate, template),
				zap.String(LogFieldField, tok.Field),
				zap.Error(err))
			return sb.String(), err
		}
		sb.WriteString(text)
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// renderField resolves, converts, formats and styles a single field token.
func (f *Formatter) renderField(tok FieldToken, state *renderState) (string, error) {
	value, err := f.resolveField(tok.Field, state)
	if err != nil {
		return "", err
	}

	if _, unresolved := value.(placeholderValue); !unresolved {
		if f.config.raiseEmpty && internal.IsEmptyValue(value) {
			return "", NewEmptyValueError(tok.Field)
		}
		converted, convErr := f.convert(value, tok.Conv)
		if convErr != nil {
			return "", convErr
		}
		value = converted
	}

	text, err := f.formatField(value, tok)
	if err != nil {
		return "", err
	}
	return f.applyStyle(tok.Field, text, state), nil
}

// resolveField looks the field up directly and falls back to expression
// evaluation. Failure of a purely numeric field is fatal; any other
// failure yields a placeholderValue for formatField to handle.
func (f *Formatter) resolveField(field string, state *renderState) (any, error) {
	if field == "" {
		index := state.autoIndex
		state.autoIndex++
		if index >= len(state.positional) {
			return nil, NewMissingPositionalError(index)
		}
		return state.positional[index], nil
	}

	value, err := internal.ResolveValue(field, state.positional, state.named)
	if err == nil {
		return value, nil
	}

	if index, numeric := internal.PositionalRoot(field); numeric {
		return nil, NewMissingPositionalError(index)
	}

	if f.config.evaluator != nil {
		value, evalErr := f.config.evaluator.Eval(field, state.named, f.config.functions)
		if evalErr == nil {
			return value, nil
		}
		if !IsInvalidExpression(evalErr) {
			f.config.logger.Debug(LogMsgFieldUnresolved,
				zap.String(LogFieldField, field),
				zap.Error(evalErr))
		}
	}

	return placeholderValue{field: field}, nil
}

// convert applies the !x conversion to a resolved value.
func (f *Formatter) convert(value any, conv byte) (any, error) {
	switch conv {
	case ConvNone:
		return value, nil
	case ConvString:
		return internal.ValueToString(value), nil
	case ConvRepr:
		if s, ok := value.(string); ok {
			return "'" + escapeText(s) + "'", nil
		}
		return internal.ValueToString(value), nil
	case ConvQuote:
		return strconv.Quote(internal.ValueToString(value)), nil
	case ConvEscape:
		return escapeText(internal.ValueToString(value)), nil
	default:
		return nil, NewParseError(ErrMsgBadConversion, 0)
	}
}

// escapeText rewrites control and quote characters to their two-character
// escape form.
func escapeText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if esc, ok := escapeTable[r]; ok {
			sb.WriteString(esc)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// formatField applies the format spec, honoring the "!!" fallback default:
// the default steps in when the field did not resolve or when the primary
// spec rejects the resolved value.
func (f *Formatter) formatField(value any, tok FieldToken) (string, error) {
	primary, fallback, hasFallback := strings.Cut(tok.Spec, DefaultSpecMarker)

	if placeholder, unresolved := value.(placeholderValue); unresolved {
		if hasFallback {
			return f.formatDefault(primary, fallback)
		}
		if f.config.strict {
			return "", NewUnresolvedFieldError(placeholder.field)
		}
		return rebuildPlaceholder(tok), nil
	}

	text, err := internal.ApplySpec(value, primary)
	if err == nil {
		return text, nil
	}
	if hasFallback {
		return f.formatDefault(primary, fallback)
	}
	if f.config.strict {
		return "", NewSpecError(ErrMsgSpecApplyFailed, primary, err)
	}
	f.config.logger.Debug(LogMsgSpecFailed,
		zap.String(LogFieldSpec, primary),
		zap.Error(err))
	return fmt.Sprintf("{%s:%q}", internal.ValueToString(value), primary), nil
}

// formatDefault renders a "!!" fallback. The default text may carry its
// own spec after "::"; otherwise the primary spec applies, with the text
// coerced to the spec's numeric type when possible.
func (f *Formatter) formatDefault(primary, fallback string) (string, error) {
	spec := primary
	if text, nested, hasNested := strings.Cut(fallback, NestedSpecMarker); hasNested {
		fallback, spec = text, nested
	}

	value := coerceDefault(fallback, spec)
	text, err := internal.ApplySpec(value, spec)
	if err != nil {
		// the default is shown as-is when the spec cannot take it
		return fallback, nil
	}
	return text, nil
}

// coerceDefault converts the default text to the numeric type demanded by
// the spec's trailing type character, keeping it a string when it does not
// parse.
func coerceDefault(text, spec string) any {
	parsed, err := internal.ParseSpec(spec)
	if err != nil {
		return text
	}
	switch {
	case internal.IsIntType(parsed.Type):
		if n, convErr := strconv.ParseInt(strings.TrimSpace(text), 10, 64); convErr == nil {
			return n
		}
	case internal.IsFloatType(parsed.Type):
		if x, convErr := strconv.ParseFloat(strings.TrimSpace(text), 64); convErr == nil {
			return x
		}
	}
	return text
}

// rebuildPlaceholder reconstructs the original placeholder text of an
// unresolved field for safe-mode output.
func rebuildPlaceholder(tok FieldToken) string {
	var sb strings.Builder
	sb.WriteByte(byte(CharFieldOpen))
	sb.WriteString(tok.Field)
	if tok.Conv != 0 {
		sb.WriteByte(byte(CharConversion))
		sb.WriteByte(tok.Conv)
	}
	if tok.Spec != "" {
		sb.WriteByte(byte(CharSpecSep))
		sb.WriteString(tok.Spec)
	}
	sb.WriteByte(byte(CharFieldClose))
	return sb.String()
}

// Stylize runs the configured style cascade for field over text outside of
// any template rendering, e.g. to style a value that was produced elsewhere.
func (f *Formatter) Stylize(field, text string) string {
	return f.applyStyle(field, text, &renderState{})
}

// applyStyle runs the style cascade for the field and stylizes the text.
func (f *Formatter) applyStyle(field, text string, state *renderState) string {
	if len(f.config.styles) == 0 && f.config.stylize == nil {
		return text
	}
	style := f.config.styles.Resolve(field)
	if style == nil && (f.config.stylize == nil || f.config.stylize.Style == nil) {
		return text
	}
	settings := f.config.stylize.Merge(&StylizeSettings{Info: state.named})
	if settings.Logger == nil {
		settings.Logger = f.config.logger
	}
	return Stylize(text, style, settings)
}
