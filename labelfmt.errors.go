package labelfmt

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Parse errors
	ErrMsgSingleOpenBrace  = "single '{' encountered in format string"
	ErrMsgSingleCloseBrace = "single '}' encountered in format string"
	ErrMsgBadConversion    = "unknown conversion character"

	// Resolution errors
	ErrMsgFieldUnresolved   = "field could not be resolved"
	ErrMsgMissingPositional = "missing positional argument"
	ErrMsgEmptyValue        = "value is empty"
	ErrMsgInvalidExpression = "invalid expression"
	ErrMsgEvaluatorFailed   = "expression evaluation failed"
	ErrMsgSpecApplyFailed   = "format spec could not be applied"
	ErrMsgStyleApplyFailed  = "style could not be applied"
	ErrMsgStylesheetInvalid = "stylesheet is invalid"
)

// Error code constants for categorization
const (
	ErrCodeParse      = "LABELFMT_PARSE"
	ErrCodeResolve    = "LABELFMT_RESOLVE"
	ErrCodePositional = "LABELFMT_POSITIONAL"
	ErrCodeEmpty      = "LABELFMT_EMPTY"
	ErrCodeExpr       = "LABELFMT_EXPR"
	ErrCodeSpec       = "LABELFMT_SPEC"
	ErrCodeStyle      = "LABELFMT_STYLE"
	ErrCodeStylesheet = "LABELFMT_STYLESHEET"
)

// Metadata keys attached to errors
const (
	MetaKeyKind   = "kind"
	MetaKeyField  = "field"
	MetaKeyIndex  = "index"
	MetaKeySpec   = "spec"
	MetaKeyOffset = "offset"
	MetaKeyStyle  = "style"
)

// Error kind values stored under MetaKeyKind; used by the Is* helpers.
const (
	errKindParse      = "parse"
	errKindUnresolved = "unresolved"
	errKindPositional = "positional"
	errKindEmpty      = "empty"
	errKindExpr       = "expr"
	errKindSpec       = "spec"
	errKindStyle      = "style"
)

// NewParseError reports unbalanced delimiters. Parse errors are fatal and
// are never absorbed by safe mode.
func NewParseError(msg string, offset int) error {
	return cuserr.NewValidationError(ErrCodeParse, msg).
		WithMetadata(MetaKeyKind, errKindParse).
		WithMetadata(MetaKeyOffset, strconv.Itoa(offset))
}

// NewUnresolvedFieldError reports that lookup and evaluation both failed.
func NewUnresolvedFieldError(field string) error {
	return cuserr.NewNotFoundError(ErrCodeResolve, ErrMsgFieldUnresolved).
		WithMetadata(MetaKeyKind, errKindUnresolved).
		WithMetadata(MetaKeyField, field)
}

// NewMissingPositionalError reports a numeric field outside the positional
// argument range. Fatal even in safe mode.
func NewMissingPositionalError(index int) error {
	return cuserr.NewValidationError(ErrCodePositional, ErrMsgMissingPositional).
		WithMetadata(MetaKeyKind, errKindPositional).
		WithMetadata(MetaKeyIndex, strconv.Itoa(index))
}

// NewEmptyValueError reports a resolved but empty value under raise-empty.
func NewEmptyValueError(field string) error {
	return cuserr.NewValidationError(ErrCodeEmpty, ErrMsgEmptyValue).
		WithMetadata(MetaKeyKind, errKindEmpty).
		WithMetadata(MetaKeyField, field)
}

// NewInvalidExpressionError marks an expression the evaluator cannot parse.
// The formatter treats it as an unresolved field, not a hard failure.
func NewInvalidExpressionError(expr string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeExpr, ErrMsgInvalidExpression)
	} else {
		err = cuserr.NewValidationError(ErrCodeExpr, ErrMsgInvalidExpression)
	}
	return err.
		WithMetadata(MetaKeyKind, errKindExpr).
		WithMetadata(MetaKeyField, expr)
}

// NewSpecError reports a format spec that cannot be applied to a value.
func NewSpecError(msg string, spec string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeSpec, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeSpec, msg)
	}
	return err.
		WithMetadata(MetaKeyKind, errKindSpec).
		WithMetadata(MetaKeySpec, spec)
}

// NewStyleError reports a failed style application. Logged and returned,
// never silently swallowed: it indicates a broken style table upstream.
func NewStyleError(style string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeStyle, ErrMsgStyleApplyFailed)
	} else {
		err = cuserr.NewValidationError(ErrCodeStyle, ErrMsgStyleApplyFailed)
	}
	return err.
		WithMetadata(MetaKeyKind, errKindStyle).
		WithMetadata(MetaKeyStyle, style)
}

// NewStylesheetError reports an unparseable stylesheet document.
func NewStylesheetError(msg string, cause error) error {
	if cause != nil {
		return cuserr.WrapStdError(cause, ErrCodeStylesheet, msg)
	}
	return cuserr.NewValidationError(ErrCodeStylesheet, msg)
}

// errorKind extracts the kind metadata from an error chain.
func errorKind(err error) string {
	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return ""
	}
	kind, _ := customErr.GetMetadata(MetaKeyKind)
	return kind
}

// IsParseError reports whether err is an unbalanced-delimiter error.
func IsParseError(err error) bool { return errorKind(err) == errKindParse }

// IsUnresolvedField reports whether err marks a field that failed both
// lookup and evaluation.
func IsUnresolvedField(err error) bool { return errorKind(err) == errKindUnresolved }

// IsMissingPositional reports whether err marks a numeric field out of range.
func IsMissingPositional(err error) bool { return errorKind(err) == errKindPositional }

// IsEmptyValue reports whether err marks a resolved-but-empty value.
func IsEmptyValue(err error) bool { return errorKind(err) == errKindEmpty }

// IsInvalidExpression reports whether err marks an expression the evaluator
// rejected as unparseable.
func IsInvalidExpression(err error) bool { return errorKind(err) == errKindExpr }

// IsStyleError reports whether err marks a failed style application.
func IsStyleError(err error) bool { return errorKind(err) == errKindStyle }

// isSectionFailure reports whether err should drop the enclosing section
// rather than abort section composition.
func isSectionFailure(err error) bool {
	switch errorKind(err) {
	case errKindUnresolved, errKindEmpty, errKindSpec:
		return true
	}
	return false
}
