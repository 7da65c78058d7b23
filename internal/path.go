package internal

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PathPartKind distinguishes attribute access from index access.
type PathPartKind int

const (
	PartAttr PathPartKind = iota
	PartIndex
)

// WildcardKind is the optional wildcard tail of a field path.
type WildcardKind int

const (
	WildcardNone WildcardKind = iota
	WildcardAttr              // ".*"
	WildcardIndex             // "[*]"
)

// PathPart is one step of a field path after the root.
type PathPart struct {
	Kind  PathPartKind
	Value string
}

// FieldPath is a parsed field path: root ('.' attr | '[' index ']')* tail?.
// It covers the restricted grammar used by the style cascade, not arbitrary
// field expressions.
type FieldPath struct {
	Root     string
	Parts    []PathPart
	Wildcard WildcardKind
}

// String renders the path in normalized form: index whitespace trimmed and
// quotes around index keys removed.
func (p *FieldPath) String() string {
	var sb strings.Builder
	sb.WriteString(p.Root)
	for _, part := range p.Parts {
		if part.Kind == PartAttr {
			sb.WriteByte('.')
			sb.WriteString(part.Value)
		} else {
			sb.WriteByte('[')
			sb.WriteString(part.Value)
			sb.WriteByte(']')
		}
	}
	switch p.Wildcard {
	case WildcardAttr:
		sb.WriteString(".*")
	case WildcardIndex:
		sb.WriteString("[*]")
	}
	return sb.String()
}

// Generalize returns the next, less specific path form of the cascade:
// the wildcard tail (if any) and the last concrete part collapse into a
// wildcard over that part; a bare root becomes "*". Returns "" when the
// path cannot be generalized further.
func (p *FieldPath) Generalize() string {
	if len(p.Parts) == 0 {
		return "*"
	}
	last := p.Parts[len(p.Parts)-1]
	head := &FieldPath{Root: p.Root, Parts: p.Parts[:len(p.Parts)-1]}
	if last.Kind == PartIndex {
		return head.String() + "[*]"
	}
	return head.String() + ".*"
}

// ParseFieldPath parses s against the field-path grammar. It returns nil
// and false for anything that is not a plain path (expressions, operators,
// calls), which ends the style cascade.
func ParseFieldPath(s string) (*FieldPath, bool) {
	p := &pathParser{src: s}
	root, ok := p.ident()
	if !ok {
		return nil, false
	}
	path := &FieldPath{Root: root}
	for !p.atEnd() {
		switch {
		case p.accept(".*"):
			path.Wildcard = WildcardAttr
			if !p.atEnd() {
				return nil, false
			}
			return path, true
		case p.accept("[*]"):
			path.Wildcard = WildcardIndex
			if !p.atEnd() {
				return nil, false
			}
			return path, true
		case p.accept("."):
			attr, ok := p.ident()
			if !ok {
				return nil, false
			}
			path.Parts = append(path.Parts, PathPart{Kind: PartAttr, Value: attr})
		case p.accept("["):
			index, ok := p.index()
			if !ok {
				return nil, false
			}
			path.Parts = append(path.Parts, PathPart{Kind: PartIndex, Value: index})
		default:
			return nil, false
		}
	}
	return path, true
}

type pathParser struct {
	src string
	pos int
}

func (p *pathParser) atEnd() bool { return p.pos >= len(p.src) }

func (p *pathParser) accept(prefix string) bool {
	if strings.HasPrefix(p.src[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

// ident consumes an identifier (unicode letters, digits, underscore; not
// starting with a digit) or a purely numeric positional root.
func (p *pathParser) ident() (string, bool) {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		// positional root: a bare digit run
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		return p.src[start:p.pos], true
	}
	for p.pos < len(p.src) {
		r, width := utf8.DecodeRuneInString(p.src[p.pos:])
		if r == '_' || unicode.IsLetter(r) || (p.pos > start && unicode.IsDigit(r)) {
			p.pos += width
			continue
		}
		break
	}
	if p.pos == start {
		return "", false
	}
	return p.src[start:p.pos], true
}

// index consumes everything up to the closing bracket: a bare word, digits,
// or a quoted string (quotes are stripped in the normalized form).
// Surrounding whitespace is permitted.
func (p *pathParser) index() (string, bool) {
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return "", false
	}
	raw := strings.TrimSpace(p.src[p.pos : p.pos+end])
	p.pos += end + 1
	if raw == "" {
		return "", false
	}
	if unquoted, ok := unquoteIndex(raw); ok {
		return unquoted, true
	}
	for _, r := range raw {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", false
		}
	}
	return raw, true
}

// unquoteIndex strips matching single or double quotes (including triple
// quotes) from an index key.
func unquoteIndex(s string) (string, bool) {
	for _, delim := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(delim) && strings.HasPrefix(s, delim) && strings.HasSuffix(s, delim) {
			return s[len(delim) : len(s)-len(delim)], true
		}
	}
	return "", false
}

// Lookup error messages
const (
	ErrMsgLookupRoot     = "name not found"
	ErrMsgLookupIndex    = "index out of range"
	ErrMsgLookupKey      = "key not found"
	ErrMsgLookupTraverse = "cannot traverse value"
)

// LookupError reports a failed structured lookup.
type LookupError struct {
	Message string
	Path    string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Path)
}

// PositionalRoot reports whether expr is a purely numeric field (a bare
// positional argument reference) and its index.
func PositionalRoot(expr string) (int, bool) {
	if expr == "" {
		return 0, false
	}
	for i := 0; i < len(expr); i++ {
		if expr[i] < '0' || expr[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(expr)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ResolveValue performs the direct structured lookup of a field path
// against positional and named arguments. Expressions that do not parse as
// a plain path fail with a LookupError (the caller may then fall back to
// expression evaluation).
func ResolveValue(expr string, positional []any, named map[string]any) (any, error) {
	path, ok := ParseFieldPath(expr)
	if !ok || path.Wildcard != WildcardNone {
		return nil, &LookupError{Message: ErrMsgLookupTraverse, Path: expr}
	}

	var current any
	if idx, isNum := PositionalRoot(path.Root); isNum {
		if idx < 0 || idx >= len(positional) {
			return nil, &LookupError{Message: ErrMsgLookupIndex, Path: path.Root}
		}
		current = positional[idx]
	} else {
		val, found := named[path.Root]
		if !found {
			return nil, &LookupError{Message: ErrMsgLookupRoot, Path: path.Root}
		}
		current = val
	}

	for _, part := range path.Parts {
		next, err := Traverse(current, part.Value)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// Traverse applies one attribute/index step to a value: map key, slice or
// array index, or exported struct field, through pointers and interfaces.
func Traverse(value any, key string) (any, error) {
	if value == nil {
		return nil, &LookupError{Message: ErrMsgLookupTraverse, Path: key}
	}

	// fast path for the common argument shape
	if m, ok := value.(map[string]any); ok {
		val, found := m[key]
		if !found {
			return nil, &LookupError{Message: ErrMsgLookupKey, Path: key}
		}
		return val, nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, &LookupError{Message: ErrMsgLookupTraverse, Path: key}
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		var kv reflect.Value
		switch kt.Kind() {
		case reflect.String:
			kv = reflect.ValueOf(key)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, &LookupError{Message: ErrMsgLookupKey, Path: key}
			}
			kv = reflect.ValueOf(n).Convert(kt)
		default:
			return nil, &LookupError{Message: ErrMsgLookupTraverse, Path: key}
		}
		val := rv.MapIndex(kv)
		if !val.IsValid() {
			return nil, &LookupError{Message: ErrMsgLookupKey, Path: key}
		}
		return val.Interface(), nil

	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, &LookupError{Message: ErrMsgLookupKey, Path: key}
		}
		if idx < 0 || idx >= rv.Len() {
			return nil, &LookupError{Message: ErrMsgLookupIndex, Path: key}
		}
		return rv.Index(idx).Interface(), nil

	case reflect.Struct:
		field := rv.FieldByName(key)
		if !field.IsValid() || !field.CanInterface() {
			return nil, &LookupError{Message: ErrMsgLookupKey, Path: key}
		}
		return field.Interface(), nil

	default:
		return nil, &LookupError{Message: ErrMsgLookupTraverse, Path: key}
	}
}
