package labelfmt

import (
	"strings"
)

// FieldToken is one parsed unit of a template: literal text followed by an
// optional field with its conversion and format spec. HasField is false only
// for the pure-literal tail token of a template that ends in literal text.
type FieldToken struct {
	Literal string
	Field   string
	Spec    string
	Conv    byte // 0 when absent
	HasField bool
}

// output selector for the scanner; mirrors the order of FieldToken parts.
type tokenPart int

const (
	partLiteral tokenPart = iota
	partField
	partConv
	partSpec
)

// TokenizeOption configures a FieldScanner.
type TokenizeOption func(*FieldScanner)

// WithEOLEscapeOption rewrites newlines inside quoted runs to the escaped
// form so multi-line string literals survive single-line renderings.
func WithEOLEscapeOption() TokenizeOption {
	return func(s *FieldScanner) { s.eolEscape = true }
}

// FieldScanner walks a template and produces FieldTokens one at a time, in
// the bufio.Scanner idiom:
//
//	sc := labelfmt.NewFieldScanner(tmpl)
//	for sc.Scan() {
//	    tok := sc.Token()
//	    ...
//	}
//	if err := sc.Err(); err != nil { ... }
//
// A scanner holds no state beyond its own position; create a new one per
// template.
type FieldScanner struct {
	source    string
	pos       int
	eolEscape bool
	token     FieldToken
	err       error
	done      bool
}

// NewFieldScanner creates a scanner over template.
func NewFieldScanner(template string, opts ...TokenizeOption) *FieldScanner {
	s := &FieldScanner{source: template}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenizeFields parses the whole template into a token slice.
func TokenizeFields(template string, opts ...TokenizeOption) ([]FieldToken, error) {
	sc := NewFieldScanner(template, opts...)
	var tokens []FieldToken
	for sc.Scan() {
		tokens = append(tokens, sc.Token())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Token returns the token produced by the last successful Scan.
func (s *FieldScanner) Token() FieldToken { return s.token }

// Err returns the first error encountered, or nil.
func (s *FieldScanner) Err() error { return s.err }

// Scan advances to the next token. It returns false at end of input or on
// error; distinguish via Err.
func (s *FieldScanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}

	var tok FieldToken
	part := partLiteral
	lvl := 0

	appendTo := func(text string) {
		switch part {
		case partLiteral:
			tok.Literal += text
		case partField:
			tok.Field += text
		case partSpec:
			tok.Spec += text
		case partConv:
			// single character slot; keep the first
			if tok.Conv == 0 && len(text) > 0 {
				tok.Conv = text[0]
			}
		}
	}

	for s.pos < len(s.source) {
		c := s.source[s.pos]
		var nc byte
		if s.pos+1 < len(s.source) {
			nc = s.source[s.pos+1]
		}

		switch {
		case lvl == 0 && (c == CharFieldOpen || c == CharFieldClose) && c == nc:
			// doubled brace escapes a literal brace
			appendTo(string(c))
			s.pos += 2

		case c == CharFieldOpen:
			if lvl == 0 {
				part = partField
				tok.HasField = true
			} else {
				appendTo(string(c))
			}
			lvl++
			s.pos++

		case c == CharFieldClose:
			lvl--
			if lvl < 0 {
				s.err = NewParseError(ErrMsgSingleCloseBrace, s.pos)
				return false
			}
			s.pos++
			if lvl == 0 {
				s.token = tok
				return true
			}
			appendTo(string(c))

		case lvl == 1 && c == CharConversion && part == partField:
			part = partConv
			s.pos++

		case lvl == 1 && c == CharSpecSep && (part == partField || part == partConv):
			part = partSpec
			s.pos++

		default:
			if lvl > 0 && (c == '\'' || c == '"') {
				if quoted, width, ok := matchQuotedRun(s.source[s.pos:]); ok {
					if s.eolEscape {
						quoted = strings.ReplaceAll(quoted, "\n", `\n`)
					}
					appendTo(quoted)
					s.pos += width
					break
				}
			}
			appendTo(string(c))
			s.pos++
		}
	}

	if lvl != 0 {
		s.err = NewParseError(ErrMsgSingleOpenBrace, s.pos)
		return false
	}

	s.done = true
	if tok.Literal != "" || tok.HasField {
		s.token = tok
		return true
	}
	return false
}

// matchQuotedRun matches a quoted string at the start of s: single, double
// or triple quotes, with backslash-escaped interior characters, possibly
// spanning lines. It returns the matched text verbatim (quotes included),
// its byte width, and whether a complete run was found.
func matchQuotedRun(s string) (string, int, bool) {
	for _, delim := range []string{`"""`, `'''`, `"`, `'`} {
		if !strings.HasPrefix(s, delim) {
			continue
		}
		i := len(delim)
		for i < len(s) {
			if s[i] == CharBackslash && i+1 < len(s) {
				i += 2
				continue
			}
			if strings.HasPrefix(s[i:], delim) {
				end := i + len(delim)
				return s[:end], end, true
			}
			i++
		}
		// unterminated run for this delimiter; a shorter delimiter may
		// still match (e.g. `"""x` opens a `"` run on character 3)
		if len(delim) > 1 {
			continue
		}
		return "", 0, false
	}
	return "", 0, false
}
