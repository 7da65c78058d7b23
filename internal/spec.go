package internal

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Spec is a parsed format spec: [[fill]align][sign][#][0][width][,][.prec][type].
type Spec struct {
	Fill      rune
	Align     byte // '<', '>', '^', '=' or 0
	Sign      byte // '+', '-', ' ' or 0
	Alt       bool
	ZeroPad   bool
	Width     int // -1 when absent
	Comma     bool
	Precision int // -1 when absent
	Type      byte // verb character or 0
}

// Spec error messages
const (
	ErrMsgSpecBadWidth     = "invalid width in format spec"
	ErrMsgSpecBadPrecision = "invalid precision in format spec"
	ErrMsgSpecBadType      = "unknown format type"
	ErrMsgSpecIntValue     = "integer format applied to non-integer value"
	ErrMsgSpecFloatValue   = "float format applied to non-numeric value"
	ErrMsgSpecSignString   = "sign not allowed with string format"
)

// SpecError reports an unusable format spec or a spec/value mismatch.
type SpecError struct {
	Message string
	Spec    string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("%s: %q", e.Message, e.Spec)
}

const (
	intTypes   = "bcdoxX"
	floatTypes = "eEfFgG%"
)

// IsIntType reports whether c is an integer-typed spec character.
func IsIntType(c byte) bool { return c != 0 && strings.IndexByte(intTypes, c) >= 0 }

// IsFloatType reports whether c is a float-typed spec character.
func IsFloatType(c byte) bool { return c != 0 && strings.IndexByte(floatTypes, c) >= 0 }

// ParseSpec parses a format spec string.
func ParseSpec(spec string) (*Spec, error) {
	s := &Spec{Fill: ' ', Width: -1, Precision: -1}
	rest := spec

	// fill+align: align may be preceded by any fill rune
	if r, width := utf8.DecodeRuneInString(rest); width > 0 {
		if len(rest) > width && isAlign(rest[width]) {
			s.Fill = r
			s.Align = rest[width]
			rest = rest[width+1:]
		} else if isAlign(rest[0]) {
			s.Align = rest[0]
			rest = rest[1:]
		}
	}

	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-' || rest[0] == ' ') {
		s.Sign = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0] == '#' {
		s.Alt = true
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0] == '0' {
		s.ZeroPad = true
		if s.Align == 0 {
			s.Align = '='
			s.Fill = '0'
		}
		rest = rest[1:]
	}

	digits := takeDigits(rest)
	if digits != "" {
		w, err := strconv.Atoi(digits)
		if err != nil {
			return nil, &SpecError{Message: ErrMsgSpecBadWidth, Spec: spec}
		}
		s.Width = w
		rest = rest[len(digits):]
	}

	if len(rest) > 0 && rest[0] == ',' {
		s.Comma = true
		rest = rest[1:]
	}

	if len(rest) > 0 && rest[0] == '.' {
		rest = rest[1:]
		digits = takeDigits(rest)
		if digits == "" {
			return nil, &SpecError{Message: ErrMsgSpecBadPrecision, Spec: spec}
		}
		p, err := strconv.Atoi(digits)
		if err != nil {
			return nil, &SpecError{Message: ErrMsgSpecBadPrecision, Spec: spec}
		}
		s.Precision = p
		rest = rest[len(digits):]
	}

	if len(rest) > 1 {
		return nil, &SpecError{Message: ErrMsgSpecBadType, Spec: spec}
	}
	if len(rest) == 1 {
		c := rest[0]
		if c != 's' && !IsIntType(c) && !IsFloatType(c) {
			return nil, &SpecError{Message: ErrMsgSpecBadType, Spec: spec}
		}
		s.Type = c
	}
	return s, nil
}

func isAlign(c byte) bool { return c == '<' || c == '>' || c == '^' || c == '=' }

func takeDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// ApplySpec renders value according to spec.
func ApplySpec(value any, spec string) (string, error) {
	s, err := ParseSpec(spec)
	if err != nil {
		return "", err
	}

	switch {
	case IsIntType(s.Type):
		n, ok := asInt(value)
		if !ok {
			return "", &SpecError{Message: ErrMsgSpecIntValue, Spec: spec}
		}
		return s.renderInt(n), nil

	case IsFloatType(s.Type):
		f, ok := asFloat(value)
		if !ok {
			return "", &SpecError{Message: ErrMsgSpecFloatValue, Spec: spec}
		}
		return s.renderFloat(f), nil

	default:
		// string rendering; numbers still honor sign/zero-pad when they
		// arrive without an explicit type
		if s.Type == 0 {
			if n, ok := asInt(value); ok {
				return s.renderInt(n), nil
			}
			if f, ok := asFloat(value); ok {
				return s.renderFloat(f), nil
			}
		}
		if s.Sign != 0 {
			return "", &SpecError{Message: ErrMsgSpecSignString, Spec: spec}
		}
		text := ValueToString(value)
		if s.Precision >= 0 && utf8.RuneCountInString(text) > s.Precision {
			text = string([]rune(text)[:s.Precision])
		}
		if s.Align == 0 || s.Align == '=' {
			s.Align = '<'
		}
		return s.pad(text, false), nil
	}
}

// renderInt renders an integer per the parsed spec.
func (s *Spec) renderInt(n int64) string {
	if s.Type == 'c' {
		return s.pad(string(rune(n)), false)
	}

	base := 10
	switch s.Type {
	case 'b':
		base = 2
	case 'o':
		base = 8
	case 'x', 'X':
		base = 16
	}

	neg := n < 0
	mag := n
	if neg {
		mag = -mag
	}
	digits := strconv.FormatInt(mag, base)
	if s.Type == 'X' {
		digits = strings.ToUpper(digits)
	}
	if s.Comma && base == 10 {
		digits = groupThousands(digits)
	}

	prefix := signPrefix(neg, s.Sign)
	if s.Alt {
		switch s.Type {
		case 'b':
			prefix += "0b"
		case 'o':
			prefix += "0o"
		case 'x':
			prefix += "0x"
		case 'X':
			prefix += "0X"
		}
	}
	return s.padNumber(prefix, digits)
}

// renderFloat renders a float per the parsed spec.
func (s *Spec) renderFloat(f float64) string {
	prec := s.Precision
	if prec < 0 {
		prec = 6
	}

	var digits string
	neg := math.Signbit(f) && !math.IsNaN(f)
	mag := math.Abs(f)

	switch s.Type {
	case 'e', 'E':
		digits = strconv.FormatFloat(mag, byte(s.Type), prec, 64)
	case 'f', 'F':
		digits = strconv.FormatFloat(mag, 'f', prec, 64)
		if s.Type == 'F' {
			digits = strings.ToUpper(digits)
		}
	case 'g', 'G':
		if prec == 0 {
			prec = 1
		}
		digits = strconv.FormatFloat(mag, 'g', prec, 64)
		if s.Type == 'G' {
			digits = strings.ToUpper(digits)
		}
	case '%':
		digits = strconv.FormatFloat(mag*100, 'f', prec, 64) + "%"
	default:
		// untyped numeric rendering
		digits = strconv.FormatFloat(mag, 'g', -1, 64)
		if s.Precision >= 0 {
			digits = strconv.FormatFloat(mag, 'g', s.Precision, 64)
		}
	}

	if s.Comma {
		if dot := strings.IndexByte(digits, '.'); dot >= 0 {
			digits = groupThousands(digits[:dot]) + digits[dot:]
		} else {
			digits = groupThousands(digits)
		}
	}

	return s.padNumber(signPrefix(neg, s.Sign), digits)
}

// padNumber applies '=' aware padding: fill goes between sign and digits.
func (s *Spec) padNumber(prefix, digits string) string {
	text := prefix + digits
	if s.Width < 0 || utf8.RuneCountInString(text) >= s.Width {
		return text
	}
	if s.Align == '=' {
		pad := s.Width - utf8.RuneCountInString(text)
		return prefix + strings.Repeat(string(s.Fill), pad) + digits
	}
	if s.Align == 0 {
		s.Align = '>'
	}
	return s.pad(text, true)
}

// pad aligns text within Width using Fill.
func (s *Spec) pad(text string, number bool) string {
	if s.Width < 0 {
		return text
	}
	gap := s.Width - utf8.RuneCountInString(text)
	if gap <= 0 {
		return text
	}
	fill := string(s.Fill)
	align := s.Align
	if align == 0 {
		if number {
			align = '>'
		} else {
			align = '<'
		}
	}
	switch align {
	case '>':
		return strings.Repeat(fill, gap) + text
	case '^':
		left := gap / 2
		return strings.Repeat(fill, left) + text + strings.Repeat(fill, gap-left)
	default:
		return text + strings.Repeat(fill, gap)
	}
}

func signPrefix(neg bool, sign byte) string {
	if neg {
		return "-"
	}
	switch sign {
	case '+':
		return "+"
	case ' ':
		return " "
	}
	return ""
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// asInt coerces integer-kinded values (including bools) to int64.
func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		// JSON decoding yields float64 for every number; integral values
		// still qualify for the integer verbs
		f := rv.Float()
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return int64(f), true
		}
	}
	return 0, false
}

// asFloat coerces numeric values to float64.
func asFloat(value any) (float64, bool) {
	if n, ok := asInt(value); ok {
		return float64(n), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// IsEmptyCollection reports whether value is a slice, array or map with no
// elements.
func IsEmptyCollection(value any) bool {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

// IsEmptyValue reports whether value counts as empty for raise-empty mode:
// nil, an empty string, or an empty collection. Numeric zero is not empty
// (season 0 is valid data).
func IsEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return IsEmptyCollection(value)
}

// ValueToString renders a value the way the formatter does for untyped
// substitutions.
func ValueToString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	if err, ok := value.(error); ok {
		return err.Error()
	}
	if str, ok := value.(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprint(value)
}
