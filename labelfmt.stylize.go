package labelfmt

import (
	"regexp"

	"go.uber.org/zap"
)

// colorRefPattern matches indirect color references produced by style
// markup, e.g. [COLOR :meta] or [COLOR  :highlight].
var colorRefPattern = regexp.MustCompile(`\[COLOR +:(\w+)\]`)

// Colors resolves indirect color references in [COLOR :name] markup.
type Colors interface {
	// ResolveColor maps a reference name to a concrete color. A false
	// return means the name is unknown and DefaultColor is used.
	ResolveColor(name string) (string, bool)
}

// ColorMap is a fixed name-to-color table.
type ColorMap map[string]string

func (m ColorMap) ResolveColor(name string) (string, bool) {
	color, ok := m[name]
	return color, ok && color != ""
}

// ColorFunc resolves color names programmatically. An empty return means
// the name is unknown.
type ColorFunc func(name string) string

func (f ColorFunc) ResolveColor(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	color := f(name)
	return color, color != ""
}

// StylizeSettings carries the ambient environment for styling: the default
// style applied when no rule matches, the info values available to nested
// style templates, the color table for indirect references, and an
// optional logger for styling diagnostics.
type StylizeSettings struct {
	Style  Style
	Info   map[string]any
	Colors Colors
	Extra  map[string]any
	Logger *zap.Logger
}

var nopLogger = zap.NewNop()

func (s *StylizeSettings) log() *zap.Logger {
	if s == nil || s.Logger == nil {
		return nopLogger
	}
	return s.Logger
}

// Merge overlays other on top of s and returns the combined settings.
// Info and Extra merge key-wise so per-call values never discard the
// ambient ones. Neither receiver nor argument is modified.
func (s *StylizeSettings) Merge(other *StylizeSettings) *StylizeSettings {
	merged := &StylizeSettings{}
	if s != nil {
		merged.Style = s.Style
		merged.Colors = s.Colors
		merged.Logger = s.Logger
		merged.Info = copyValueMap(s.Info)
		merged.Extra = copyValueMap(s.Extra)
	}
	if other != nil {
		if other.Style != nil {
			merged.Style = other.Style
		}
		if other.Colors != nil {
			merged.Colors = other.Colors
		}
		if other.Logger != nil {
			merged.Logger = other.Logger
		}
		merged.Info = overlayValueMap(merged.Info, other.Info)
		merged.Extra = overlayValueMap(merged.Extra, other.Extra)
	}
	return merged
}

func copyValueMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func overlayValueMap(base, overlay map[string]any) map[string]any {
	if len(overlay) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]any, len(overlay))
	}
	for k, v := range overlay {
		base[k] = v
	}
	return base
}

// Stylize wraps text in the given style and resolves indirect color
// references. Tokens apply from the last to the first, so the first token
// of a definition ends up outermost. Nested-template tokens are rendered
// safely with the text as the positional argument and as "text", the
// settings info flattened and as "info", so a style like "{} ({info.year})"
// or "{text} ({info[year]})" can pull surrounding data in.
func Stylize(text string, style Style, settings *StylizeSettings) string {
	if settings == nil {
		settings = &StylizeSettings{}
	}
	if style == nil {
		style = settings.Style
	}
	for i := len(style) - 1; i >= 0; i-- {
		tok := style[i]
		if tok.Kind == StyleNestedTemplate {
			text = applyTemplateToken(tok.Value, text, settings)
			continue
		}
		text = tok.Apply(text)
	}
	if settings.Colors == nil && colorRefPattern.MatchString(text) {
		settings.log().Debug(LogMsgMissingColors)
	}
	return ResolveColors(text, settings.Colors)
}

func applyTemplateToken(template, text string, settings *StylizeSettings) string {
	names := overlayValueMap(copyValueMap(settings.Info), settings.Extra)
	if names == nil {
		names = make(map[string]any, 2)
	}
	names[StyleNameText] = text
	names[StyleNameInfo] = settings.Info
	rendered, err := SafeFormat(template, []any{text}, names)
	if err != nil {
		settings.log().Debug(LogMsgStyleFailed,
			zap.String(LogFieldStyle, template),
			zap.Error(err))
		return StyleToken{Kind: StyleNestedTemplate, Value: template}.Apply(text)
	}
	return rendered
}

// ResolveColors replaces every [COLOR :name] reference with a concrete
// [COLOR ...] tag, falling back to DefaultColor for unknown names.
func ResolveColors(text string, colors Colors) string {
	return colorRefPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := colorRefPattern.FindStringSubmatch(match)[1]
		if colors != nil {
			if color, ok := colors.ResolveColor(name); ok {
				return "[COLOR " + color + "]"
			}
		}
		return "[COLOR " + DefaultColor + "]"
	})
}
