package labelfmt

import (
	"strings"

	"github.com/itsatony/go-cuserr"

	"github.com/itsatony/go-labelfmt/internal"
)

// EvalFunc is a function exposed to field expressions.
type EvalFunc func(args ...any) (any, error)

// Evaluator evaluates a field expression against a name and function
// environment. It is consulted only when direct structured lookup of a
// non-positional field fails. Implementations signal an unparseable or
// undefined-name expression with an error for which IsInvalidExpression
// returns true; the formatter then degrades to a placeholder instead of
// failing the field.
type Evaluator interface {
	Eval(expr string, names map[string]any, functions map[string]EvalFunc) (any, error)
}

// NewEvaluator returns the built-in expression evaluator: arithmetic,
// comparisons, boolean logic (&&/|| or and/or/not), string concatenation,
// attribute and index access, and calls into the function environment.
func NewEvaluator() Evaluator {
	return &builtinEvaluator{}
}

type builtinEvaluator struct{}

func (e *builtinEvaluator) Eval(expr string, names map[string]any, functions map[string]EvalFunc) (any, error) {
	funcs := make(map[string]internal.Func, len(functions))
	for name, fn := range functions {
		funcs[name] = internal.Func(fn)
	}
	result, err := internal.EvalExpression(expr, names, funcs)
	if err != nil {
		if internal.IsInvalidExpr(err) {
			return nil, NewInvalidExpressionError(expr, err)
		}
		return nil, cuserr.WrapStdError(err, ErrCodeExpr, ErrMsgEvaluatorFailed).
			WithMetadata(MetaKeyField, expr)
	}
	return result, nil
}

// DefaultEvalFunctions returns the function environment bound by EvalFormat:
// small string and collection helpers.
func DefaultEvalFunctions() map[string]EvalFunc {
	return map[string]EvalFunc{
		"str": func(args ...any) (any, error) {
			if len(args) == 0 {
				return "", nil
			}
			return internal.ValueToString(args[0]), nil
		},
		"len": func(args ...any) (any, error) {
			if len(args) == 0 {
				return float64(0), nil
			}
			switch v := args[0].(type) {
			case string:
				return float64(len(v)), nil
			case []any:
				return float64(len(v)), nil
			case map[string]any:
				return float64(len(v)), nil
			default:
				return float64(len(internal.ValueToString(v))), nil
			}
		},
		"upper": func(args ...any) (any, error) {
			if len(args) == 0 {
				return "", nil
			}
			return strings.ToUpper(internal.ValueToString(args[0])), nil
		},
		"lower": func(args ...any) (any, error) {
			if len(args) == 0 {
				return "", nil
			}
			return strings.ToLower(internal.ValueToString(args[0])), nil
		},
		"trim": func(args ...any) (any, error) {
			if len(args) == 0 {
				return "", nil
			}
			return strings.TrimSpace(internal.ValueToString(args[0])), nil
		},
	}
}
