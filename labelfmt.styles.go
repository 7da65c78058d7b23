package labelfmt

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/itsatony/go-labelfmt/internal"
)

// StyleTokenKind discriminates the shapes a single style token can take.
type StyleTokenKind int

const (
	// StyleMarkupTag wraps text in [TAG]...[/TAG] markup. The closing tag
	// uses only the first word, so "COLOR :red" closes with [/COLOR].
	StyleMarkupTag StyleTokenKind = iota
	// StyleZeroWidthBracket wraps text in literal brackets padded with
	// zero-width spaces so the section composer does not treat them as an
	// optional section.
	StyleZeroWidthBracket
	// StyleBracketPair wraps text in a two-character pair such as "()".
	StyleBracketPair
	// StyleNestedTemplate substitutes text into every {} placeholder of a
	// longer template fragment.
	StyleNestedTemplate
)

// StyleToken is a single step of a style definition. Definitions list
// tokens outermost-first; the last token is applied first.
type StyleToken struct {
	Kind  StyleTokenKind
	Value string
}

// ParseStyleToken classifies a raw style token by its shape.
func ParseStyleToken(raw string) StyleToken {
	switch {
	case raw == "[]":
		return StyleToken{Kind: StyleZeroWidthBracket, Value: raw}
	case raw != "" && isLetter(rune(raw[0])):
		return StyleToken{Kind: StyleMarkupTag, Value: raw}
	case len(raw) == 2:
		return StyleToken{Kind: StyleBracketPair, Value: raw}
	default:
		return StyleToken{Kind: StyleNestedTemplate, Value: raw}
	}
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// Apply wraps text according to the token kind.
func (t StyleToken) Apply(text string) string {
	switch t.Kind {
	case StyleZeroWidthBracket:
		return "[" + ZeroWidthSpace + text + ZeroWidthSpace + "]"
	case StyleMarkupTag:
		name := t.Value
		if i := strings.IndexFunc(name, unicode.IsSpace); i >= 0 {
			name = name[:i]
		}
		return fmt.Sprintf("[%s]%s[/%s]", t.Value, text, name)
	case StyleBracketPair:
		return string(t.Value[0]) + text + string(t.Value[1])
	default:
		return strings.ReplaceAll(t.Value, "{}", text)
	}
}

// Style is an ordered list of wrapping steps for a field value, outermost
// first: the last token wraps innermost.
type Style []StyleToken

// Apply runs the tokens over text from the last to the first.
func (s Style) Apply(text string) string {
	for i := len(s) - 1; i >= 0; i-- {
		text = s[i].Apply(text)
	}
	return text
}

// ParseStyle builds a Style from a raw definition: a single token string
// or a list of token strings.
func ParseStyle(def any) (Style, error) {
	switch v := def.(type) {
	case nil:
		return nil, nil
	case string:
		return Style{ParseStyleToken(v)}, nil
	case []string:
		style := make(Style, 0, len(v))
		for _, raw := range v {
			style = append(style, ParseStyleToken(raw))
		}
		return style, nil
	case []any:
		style := make(Style, 0, len(v))
		for _, item := range v {
			raw, ok := item.(string)
			if !ok {
				return nil, NewStyleError(fmt.Sprint(item), nil)
			}
			style = append(style, ParseStyleToken(raw))
		}
		return style, nil
	case Style:
		return v, nil
	default:
		return nil, NewStyleError(fmt.Sprint(def), nil)
	}
}

// StyleRules maps field paths to styles. Keys are field-path expressions
// ("info.title", "votes[0]") or wildcard patterns: "info.*" and "votes[*]"
// match any last segment, "*" matches every field.
type StyleRules map[string]Style

// ParseStyleRules builds rules from raw definitions, typically decoded
// from a stylesheet document.
func ParseStyleRules(defs map[string]any) (StyleRules, error) {
	rules := make(StyleRules, len(defs))
	for key, def := range defs {
		style, err := ParseStyle(def)
		if err != nil {
			return nil, err
		}
		rules[key] = style
	}
	return rules, nil
}

// Resolve walks the wildcard cascade for a field expression: the exact
// path first, then its quote-normalized form, then the last segment
// generalized to [*] or .*, ending at the catch-all "*". A field that is
// not a plain path (an expression) only ever matches its exact key; the
// cascade never carries it down to the catch-all. Returns nil when no
// rule matches.
func (r StyleRules) Resolve(field string) Style {
	if len(r) == 0 {
		return nil
	}
	if style, ok := r[field]; ok {
		return style
	}
	path, ok := internal.ParseFieldPath(field)
	if !ok {
		return nil
	}
	seen := map[string]bool{field: true}
	for path != nil {
		key := path.String()
		if !seen[key] {
			seen[key] = true
			if style, found := r[key]; found {
				return style
			}
		}
		next := path.Generalize()
		if next == "" || seen[next] {
			break
		}
		if style, found := r[next]; found {
			return style
		}
		seen[next] = true
		path, _ = internal.ParseFieldPath(next)
	}
	return nil
}
