package labelfmt

import (
	"strings"

	"go.uber.org/zap"
)

// sectionPart is one piece of a section template at a single nesting
// level: either a literal run (escapes already processed, fields still in
// place) or the raw body of a bracketed section.
type sectionPart struct {
	text    string
	section bool
}

// FormatSections renders a template with optional bracketed sections. A
// section whose fields cannot all be resolved to non-empty values is
// dropped from the output, together with the literal run that follows a
// dropped section. Sections nest to any depth; %[ %] %% (and the
// backslash forms) escape literal brackets and escape characters, and
// brackets inside {field} placeholders are opaque.
//
// Field failures inside sections only ever drop the section. Every
// literal run, the top level included, renders through a strict
// formatter, so a failing field outside all sections fails the whole
// composition regardless of the formatter's own mode.
func (f *Formatter) FormatSections(template string, positional []any, named map[string]any) (string, error) {
	strictFmt := f.sectionFormatter()
	out, err := f.renderSectionBody(template, positional, named, strictFmt)
	if err != nil {
		msg := LogMsgFormatFailed
		if IsMissingPositional(err) {
			msg = LogMsgPositionalFailed
		}
		f.config.logger.Debug(msg,
			zap.String(LogFieldTemplate, template),
			zap.Error(err))
		return "", err
	}
	return out, nil
}

// sectionFormatter derives the formatter used inside sections: identical
// environment, but every unresolved or empty field raises so the section
// can be dropped.
func (f *Formatter) sectionFormatter() *Formatter {
	config := *f.config
	config.strict = true
	config.raiseEmpty = true
	return &Formatter{config: &config}
}

// renderSectionBody renders one nesting level, literal runs and nested
// sections alike through the strict formatter.
func (f *Formatter) renderSectionBody(template string, positional []any, named map[string]any, strictFmt *Formatter) (string, error) {
	parts := splitSectionParts(template)

	var out strings.Builder
	prevOK := true
	for _, part := range parts {
		if !part.section {
			text, err := strictFmt.Format(part.text, positional, named)
			if err != nil {
				return "", err
			}
			if prevOK {
				out.WriteString(text)
			}
			continue
		}

		text, err := f.renderSectionBody(part.text, positional, named, strictFmt)
		if err != nil {
			if !isSectionFailure(err) {
				return "", err
			}
			f.config.logger.Debug(LogMsgSectionDropped,
				zap.String(LogFieldSection, part.text),
				zap.Error(err))
			prevOK = false
			continue
		}
		out.WriteString(text)
		prevOK = true
	}
	return out.String(), nil
}

// splitSectionParts splits one nesting level into literal runs and raw
// section bodies. Escapes in literal runs are resolved here; section
// bodies keep theirs for the recursive pass. A close bracket without an
// open one, and an open bracket without a close, are literal text.
func splitSectionParts(template string) []sectionPart {
	var parts []sectionPart
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, sectionPart{text: buf.String()})
			buf.Reset()
		}
	}

	i := 0
	for i < len(template) {
		c := template[i]
		switch {
		case isSectionEscape(template, i):
			buf.WriteByte(template[i+1])
			i += 2

		case c == byte(CharFieldOpen):
			w := opaqueFieldWidth(template[i:])
			buf.WriteString(template[i : i+w])
			i += w

		case c == byte(CharSectionOpen):
			end, ok := matchingSectionClose(template, i)
			if !ok {
				buf.WriteByte(c)
				i++
				break
			}
			flush()
			parts = append(parts, sectionPart{text: template[i+1 : end], section: true})
			i = end + 1

		default:
			buf.WriteByte(c)
			i++
		}
	}
	flush()
	return parts
}

// isSectionEscape reports whether template[i:] starts a two-character
// escape: % or \ followed by a bracket or another escape character.
func isSectionEscape(template string, i int) bool {
	if template[i] != byte(CharEscape) && template[i] != byte(CharBackslash) {
		return false
	}
	if i+1 >= len(template) {
		return false
	}
	switch template[i+1] {
	case byte(CharSectionOpen), byte(CharSectionClose), byte(CharEscape), byte(CharBackslash):
		return true
	}
	return false
}

// matchingSectionClose finds the close bracket matching the open bracket
// at template[open], skipping escapes and opaque field regions.
func matchingSectionClose(template string, open int) (int, bool) {
	depth := 0
	i := open
	for i < len(template) {
		switch {
		case isSectionEscape(template, i):
			i += 2
		case template[i] == byte(CharFieldOpen):
			i += opaqueFieldWidth(template[i:])
		case template[i] == byte(CharSectionOpen):
			depth++
			i++
		case template[i] == byte(CharSectionClose):
			depth--
			if depth == 0 {
				return i, true
			}
			i++
		default:
			i++
		}
	}
	return 0, false
}

// opaqueFieldWidth returns the byte width of the {field} region starting
// at s[0] == '{'. Doubled braces are two-character literals; quoted runs
// inside a field may contain anything. An unbalanced region extends to the
// end of s and is reported later by the field formatter.
func opaqueFieldWidth(s string) int {
	if len(s) >= 2 && s[1] == byte(CharFieldOpen) {
		return 2
	}
	lvl := 0
	i := 0
	for i < len(s) {
		c := s[i]
		if lvl > 0 && (c == '\'' || c == '"') {
			if _, width, ok := matchQuotedRun(s[i:]); ok {
				i += width
				continue
			}
		}
		switch c {
		case byte(CharFieldOpen):
			lvl++
		case byte(CharFieldClose):
			lvl--
			if lvl == 0 {
				return i + 1
			}
		}
		i++
	}
	return len(s)
}
