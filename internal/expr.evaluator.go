package internal

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Func is a function exposed to expressions.
type Func func(args ...any) (any, error)

// ExprEvaluator evaluates expression AST nodes against a name and function
// environment.
type ExprEvaluator struct {
	names     map[string]any
	functions map[string]Func
}

// NewExprEvaluator creates a new expression evaluator
func NewExprEvaluator(names map[string]any, functions map[string]Func) *ExprEvaluator {
	return &ExprEvaluator{names: names, functions: functions}
}

// EvalExpression parses and evaluates expr in one step.
func EvalExpression(expr string, names map[string]any, functions map[string]Func) (any, error) {
	node, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	return NewExprEvaluator(names, functions).Evaluate(node)
}

// IsInvalidExpr reports whether err marks an expression that is malformed
// or references an undefined name/function, as opposed to one that failed
// during evaluation (division by zero, bad operand types).
func IsInvalidExpr(err error) bool {
	var tokErr *ExprTokenError
	var parseErr *ExprParseError
	var nameErr *ExprNameError
	return errors.As(err, &tokErr) || errors.As(err, &parseErr) || errors.As(err, &nameErr)
}

// Evaluate evaluates an expression and returns the result
func (e *ExprEvaluator) Evaluate(node ExprNode) (any, error) {
	if node == nil {
		return nil, NewExprEvalError(ErrMsgExprNilNode, "")
	}

	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil

	case *IdentifierNode:
		val, found := e.names[n.Name]
		if !found {
			return nil, NewExprNameError(n.Name)
		}
		return val, nil

	case *UnaryNode:
		return e.evaluateUnary(n)

	case *BinaryNode:
		return e.evaluateBinary(n)

	case *AttrNode:
		target, err := e.Evaluate(n.Target)
		if err != nil {
			return nil, err
		}
		val, err := Traverse(target, n.Name)
		if err != nil {
			return nil, NewExprEvalError(ErrMsgExprBadAccess, n.Name)
		}
		return val, nil

	case *IndexNode:
		return e.evaluateIndex(n)

	case *CallNode:
		return e.evaluateCall(n)

	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownNodeType, fmt.Sprintf("%T", node))
	}
}

// EvaluateBool evaluates an expression and coerces the result to a boolean
func (e *ExprEvaluator) EvaluateBool(node ExprNode) (bool, error) {
	result, err := e.Evaluate(node)
	if err != nil {
		return false, err
	}
	return IsTruthy(result), nil
}

// evaluateUnary evaluates a unary operation
func (e *ExprEvaluator) evaluateUnary(node *UnaryNode) (any, error) {
	right, err := e.Evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case ExprTokenTypeNot:
		return !IsTruthy(right), nil
	case ExprTokenTypeMinus:
		f, ok := asFloat(right)
		if !ok {
			return nil, NewExprEvalError(ErrMsgExprBadOperand, "-")
		}
		return -f, nil
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

// evaluateBinary evaluates a binary operation
func (e *ExprEvaluator) evaluateBinary(node *BinaryNode) (any, error) {
	// Short-circuit evaluation for logical operators
	if node.Op == ExprTokenTypeAnd || node.Op == ExprTokenTypeOr {
		left, err := e.Evaluate(node.Left)
		if err != nil {
			return nil, err
		}
		if node.Op == ExprTokenTypeAnd && !IsTruthy(left) {
			return false, nil
		}
		if node.Op == ExprTokenTypeOr && IsTruthy(left) {
			return true, nil
		}
		right, err := e.Evaluate(node.Right)
		if err != nil {
			return nil, err
		}
		return IsTruthy(right), nil
	}

	left, err := e.Evaluate(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.Evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case ExprTokenTypeEq:
		return looseEqual(left, right), nil
	case ExprTokenTypeNeq:
		return !looseEqual(left, right), nil
	case ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte:
		return compare(left, right, node.Op)
	case ExprTokenTypePlus:
		// strings concatenate, numbers add
		ls, lok := left.(string)
		rs, rok := right.(string)
		if lok && rok {
			return ls + rs, nil
		}
		return arith(left, right, node.Op)
	case ExprTokenTypeMinus, ExprTokenTypeStar, ExprTokenTypeSlash, ExprTokenTypePercent:
		return arith(left, right, node.Op)
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

// evaluateIndex evaluates an index access
func (e *ExprEvaluator) evaluateIndex(node *IndexNode) (any, error) {
	target, err := e.Evaluate(node.Target)
	if err != nil {
		return nil, err
	}
	index, err := e.Evaluate(node.Index)
	if err != nil {
		return nil, err
	}

	var key string
	switch v := index.(type) {
	case string:
		key = v
	case float64:
		key = fmt.Sprintf("%d", int64(v))
	default:
		key = ValueToString(index)
	}

	val, err := Traverse(target, key)
	if err != nil {
		return nil, NewExprEvalError(ErrMsgExprBadAccess, key)
	}
	return val, nil
}

// evaluateCall evaluates a function call
func (e *ExprEvaluator) evaluateCall(node *CallNode) (any, error) {
	fn, found := e.functions[node.Name]
	if !found {
		return nil, NewExprNameError(node.Name)
	}

	args := make([]any, len(node.Args))
	for i, argNode := range node.Args {
		arg, err := e.Evaluate(argNode)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	result, err := fn(args...)
	if err != nil {
		return nil, NewExprEvalError(ErrMsgExprCallFailed, node.Name)
	}
	return result, nil
}

// arith applies a numeric operator.
func arith(left, right any, op ExprTokenType) (any, error) {
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, NewExprEvalError(ErrMsgExprBadOperand, string(op))
	}

	switch op {
	case ExprTokenTypePlus:
		return lf + rf, nil
	case ExprTokenTypeMinus:
		return lf - rf, nil
	case ExprTokenTypeStar:
		return lf * rf, nil
	case ExprTokenTypeSlash:
		if rf == 0 {
			return nil, NewExprEvalError(ErrMsgExprDivByZero, "")
		}
		return lf / rf, nil
	case ExprTokenTypePercent:
		if rf == 0 {
			return nil, NewExprEvalError(ErrMsgExprDivByZero, "")
		}
		return math.Mod(lf, rf), nil
	}
	return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(op))
}

// compare applies an ordering operator on numbers or strings.
func compare(left, right any, op ExprTokenType) (any, error) {
	if lf, lok := asFloat(left); lok {
		rf, rok := asFloat(right)
		if !rok {
			return nil, NewExprEvalError(ErrMsgExprBadOperand, string(op))
		}
		return orderResult(cmpFloat(lf, rf), op), nil
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		return orderResult(strings.Compare(ls, rs), op), nil
	}
	return nil, NewExprEvalError(ErrMsgExprBadOperand, string(op))
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func orderResult(cmp int, op ExprTokenType) bool {
	switch op {
	case ExprTokenTypeLt:
		return cmp < 0
	case ExprTokenTypeGt:
		return cmp > 0
	case ExprTokenTypeLte:
		return cmp <= 0
	default:
		return cmp >= 0
	}
}

// looseEqual compares values with numeric normalization so 2 == 2.0.
func looseEqual(left, right any) bool {
	if lf, lok := asFloat(left); lok {
		if rf, rok := asFloat(right); rok {
			return lf == rf
		}
		return false
	}
	return left == right
}

// IsTruthy reports the truthiness of a value: nil, false, zero numbers and
// empty strings/collections are false.
func IsTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	if f, ok := asFloat(value); ok {
		return f != 0
	}
	return !IsEmptyCollection(value)
}

// ExprNameError reports an undefined name or function; it marks the
// expression as invalid rather than failed.
type ExprNameError struct {
	Name string
}

// NewExprNameError creates a new undefined-name error
func NewExprNameError(name string) *ExprNameError {
	return &ExprNameError{Name: name}
}

// Error implements the error interface
func (e *ExprNameError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMsgExprUndefinedName, e.Name)
}

// ExprEvalError represents an error during expression evaluation
type ExprEvalError struct {
	Message string
	Detail  string
}

// NewExprEvalError creates a new expression evaluation error
func NewExprEvalError(message, detail string) *ExprEvalError {
	return &ExprEvalError{Message: message, Detail: detail}
}

// Error implements the error interface
func (e *ExprEvalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Expression evaluation error messages
const (
	ErrMsgExprNilNode         = "cannot evaluate nil node"
	ErrMsgExprUnknownNodeType = "unknown expression node type"
	ErrMsgExprUnknownOperator = "unknown operator"
	ErrMsgExprUndefinedName   = "undefined name"
	ErrMsgExprBadOperand      = "invalid operand type"
	ErrMsgExprBadAccess       = "cannot access member"
	ErrMsgExprDivByZero       = "division by zero"
	ErrMsgExprCallFailed      = "function call failed"
)
