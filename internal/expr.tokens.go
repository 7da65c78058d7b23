package internal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExprTokenType represents the type of an expression token
type ExprTokenType string

// Expression token type constants
const (
	ExprTokenTypeIdentifier ExprTokenType = "IDENT"
	ExprTokenTypeString     ExprTokenType = "STRING"
	ExprTokenTypeNumber     ExprTokenType = "NUMBER"
	ExprTokenTypeBool       ExprTokenType = "BOOL"
	ExprTokenTypeNil        ExprTokenType = "NIL"
	ExprTokenTypeLParen     ExprTokenType = "LPAREN"
	ExprTokenTypeRParen     ExprTokenType = "RPAREN"
	ExprTokenTypeLBracket   ExprTokenType = "LBRACKET"
	ExprTokenTypeRBracket   ExprTokenType = "RBRACKET"
	ExprTokenTypeComma      ExprTokenType = "COMMA"
	ExprTokenTypeDot        ExprTokenType = "DOT"

	// Operators
	ExprTokenTypeAnd     ExprTokenType = "AND"
	ExprTokenTypeOr      ExprTokenType = "OR"
	ExprTokenTypeNot     ExprTokenType = "NOT"
	ExprTokenTypeEq      ExprTokenType = "EQ"
	ExprTokenTypeNeq     ExprTokenType = "NEQ"
	ExprTokenTypeLt      ExprTokenType = "LT"
	ExprTokenTypeGt      ExprTokenType = "GT"
	ExprTokenTypeLte     ExprTokenType = "LTE"
	ExprTokenTypeGte     ExprTokenType = "GTE"
	ExprTokenTypePlus    ExprTokenType = "PLUS"
	ExprTokenTypeMinus   ExprTokenType = "MINUS"
	ExprTokenTypeStar    ExprTokenType = "STAR"
	ExprTokenTypeSlash   ExprTokenType = "SLASH"
	ExprTokenTypePercent ExprTokenType = "PERCENT"

	ExprTokenTypeEOF ExprTokenType = "EOF"
)

// Expression keyword constants. The word forms of the boolean operators are
// accepted alongside the symbol forms so expressions read naturally inside
// label templates.
const (
	ExprKeywordTrue  = "true"
	ExprKeywordFalse = "false"
	ExprKeywordNil   = "nil"
	ExprKeywordNone  = "None"
	ExprKeywordAnd   = "and"
	ExprKeywordOr    = "or"
	ExprKeywordNot   = "not"
)

// ExprToken represents a token in an expression
type ExprToken struct {
	Type    ExprTokenType
	Value   string
	Pos     int
	Literal any // Parsed value for literals (string, float64, bool, nil)
}

// String returns the string representation of the token
func (t ExprToken) String() string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return string(t.Type)
}

// ExprTokenizer tokenizes expression strings
type ExprTokenizer struct {
	input string
	pos   int
	len   int
}

// NewExprTokenizer creates a new expression tokenizer
func NewExprTokenizer(input string) *ExprTokenizer {
	return &ExprTokenizer{
		input: input,
		pos:   0,
		len:   len(input),
	}
}

// Tokenize converts the input string into a slice of tokens
func (t *ExprTokenizer) Tokenize() ([]ExprToken, error) {
	var tokens []ExprToken

	for {
		t.skipWhitespace()

		if t.pos >= t.len {
			tokens = append(tokens, ExprToken{Type: ExprTokenTypeEOF, Pos: t.pos})
			break
		}

		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}

	return tokens, nil
}

func (t *ExprTokenizer) next() (ExprToken, error) {
	start := t.pos
	c := t.input[t.pos]

	switch c {
	case '(':
		t.pos++
		return ExprToken{Type: ExprTokenTypeLParen, Pos: start}, nil
	case ')':
		t.pos++
		return ExprToken{Type: ExprTokenTypeRParen, Pos: start}, nil
	case '[':
		t.pos++
		return ExprToken{Type: ExprTokenTypeLBracket, Pos: start}, nil
	case ']':
		t.pos++
		return ExprToken{Type: ExprTokenTypeRBracket, Pos: start}, nil
	case ',':
		t.pos++
		return ExprToken{Type: ExprTokenTypeComma, Pos: start}, nil
	case '.':
		t.pos++
		return ExprToken{Type: ExprTokenTypeDot, Pos: start}, nil
	case '+':
		t.pos++
		return ExprToken{Type: ExprTokenTypePlus, Pos: start}, nil
	case '-':
		t.pos++
		return ExprToken{Type: ExprTokenTypeMinus, Pos: start}, nil
	case '*':
		t.pos++
		return ExprToken{Type: ExprTokenTypeStar, Pos: start}, nil
	case '/':
		t.pos++
		return ExprToken{Type: ExprTokenTypeSlash, Pos: start}, nil
	case '%':
		t.pos++
		return ExprToken{Type: ExprTokenTypePercent, Pos: start}, nil
	case '&':
		if t.peekAt(1) == '&' {
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeAnd, Pos: start}, nil
		}
	case '|':
		if t.peekAt(1) == '|' {
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeOr, Pos: start}, nil
		}
	case '=':
		if t.peekAt(1) == '=' {
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeEq, Pos: start}, nil
		}
	case '!':
		if t.peekAt(1) == '=' {
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeNeq, Pos: start}, nil
		}
		t.pos++
		return ExprToken{Type: ExprTokenTypeNot, Pos: start}, nil
	case '<':
		if t.peekAt(1) == '=' {
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeLte, Pos: start}, nil
		}
		t.pos++
		return ExprToken{Type: ExprTokenTypeLt, Pos: start}, nil
	case '>':
		if t.peekAt(1) == '=' {
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeGte, Pos: start}, nil
		}
		t.pos++
		return ExprToken{Type: ExprTokenTypeGt, Pos: start}, nil
	case '\'', '"':
		return t.scanString()
	}

	if c >= '0' && c <= '9' {
		return t.scanNumber()
	}
	if r, _ := utf8.DecodeRuneInString(t.input[t.pos:]); r == '_' || unicode.IsLetter(r) {
		return t.scanIdentifier()
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnexpectedChar, start, string(c))
}

func (t *ExprTokenizer) peekAt(offset int) byte {
	if t.pos+offset >= t.len {
		return 0
	}
	return t.input[t.pos+offset]
}

func (t *ExprTokenizer) skipWhitespace() {
	for t.pos < t.len {
		switch t.input[t.pos] {
		case ' ', '\t', '\n', '\r':
			t.pos++
		default:
			return
		}
	}
}

// scanString scans a quoted string literal with backslash escapes.
func (t *ExprTokenizer) scanString() (ExprToken, error) {
	start := t.pos
	quote := t.input[t.pos]
	t.pos++

	var sb strings.Builder
	for t.pos < t.len {
		c := t.input[t.pos]
		if c == quote {
			t.pos++
			return ExprToken{
				Type:    ExprTokenTypeString,
				Value:   sb.String(),
				Pos:     start,
				Literal: sb.String(),
			}, nil
		}
		if c == '\\' && t.pos+1 < t.len {
			t.pos++
			switch t.input[t.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(t.input[t.pos])
			}
			t.pos++
			continue
		}
		sb.WriteByte(c)
		t.pos++
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnterminatedString, start, "")
}

// scanNumber scans an integer or decimal literal.
func (t *ExprTokenizer) scanNumber() (ExprToken, error) {
	start := t.pos
	sawDot := false
	for t.pos < t.len {
		c := t.input[t.pos]
		if c >= '0' && c <= '9' {
			t.pos++
			continue
		}
		// a dot is part of the number only when followed by a digit;
		// otherwise it is attribute access on the value
		if c == '.' && !sawDot && t.pos+1 < t.len && t.input[t.pos+1] >= '0' && t.input[t.pos+1] <= '9' {
			sawDot = true
			t.pos++
			continue
		}
		break
	}

	text := t.input[start:t.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return ExprToken{}, NewExprTokenError(ErrMsgExprBadNumber, start, text)
	}
	return ExprToken{Type: ExprTokenTypeNumber, Value: text, Pos: start, Literal: f}, nil
}

// scanIdentifier scans an identifier or keyword.
func (t *ExprTokenizer) scanIdentifier() (ExprToken, error) {
	start := t.pos
	for t.pos < t.len {
		r, width := utf8.DecodeRuneInString(t.input[t.pos:])
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			t.pos += width
			continue
		}
		break
	}

	word := t.input[start:t.pos]
	switch word {
	case ExprKeywordTrue, "True":
		return ExprToken{Type: ExprTokenTypeBool, Value: word, Pos: start, Literal: true}, nil
	case ExprKeywordFalse, "False":
		return ExprToken{Type: ExprTokenTypeBool, Value: word, Pos: start, Literal: false}, nil
	case ExprKeywordNil, ExprKeywordNone:
		return ExprToken{Type: ExprTokenTypeNil, Value: word, Pos: start}, nil
	case ExprKeywordAnd:
		return ExprToken{Type: ExprTokenTypeAnd, Value: word, Pos: start}, nil
	case ExprKeywordOr:
		return ExprToken{Type: ExprTokenTypeOr, Value: word, Pos: start}, nil
	case ExprKeywordNot:
		return ExprToken{Type: ExprTokenTypeNot, Value: word, Pos: start}, nil
	}
	return ExprToken{Type: ExprTokenTypeIdentifier, Value: word, Pos: start}, nil
}

// Expression tokenizer error messages
const (
	ErrMsgExprUnexpectedChar     = "unexpected character in expression"
	ErrMsgExprUnterminatedString = "unterminated string literal in expression"
	ErrMsgExprBadNumber          = "malformed number in expression"
)

// ExprTokenError represents a tokenizer error; it marks the expression as
// invalid rather than failed.
type ExprTokenError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprTokenError creates a new expression tokenizer error
func NewExprTokenError(message string, pos int, detail string) *ExprTokenError {
	return &ExprTokenError{Message: message, Pos: pos, Detail: detail}
}

// Error implements the error interface
func (e *ExprTokenError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}
