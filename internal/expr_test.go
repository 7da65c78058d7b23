package internal

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalOK(t *testing.T, expr string, names map[string]any, functions map[string]Func) any {
	t.Helper()
	result, err := EvalExpression(expr, names, functions)
	require.NoError(t, err, "expr %q", expr)
	return result
}

func TestEvalExpression_Arithmetic(t *testing.T) {
	names := map[string]any{"a": 10, "b": 3, "half": 0.5}

	tests := []struct {
		expr string
		want float64
	}{
		{"a + b", 13},
		{"a - b", 7},
		{"a * b", 30},
		{"a / 4", 2.5},
		{"a % b", 1},
		{"-b", -3},
		{"a + b * 2", 16},
		{"(a + b) * 2", 26},
		{"half * a", 5},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.InDelta(t, tt.want, evalOK(t, tt.expr, names, nil), 1e-9)
		})
	}
}

func TestEvalExpression_StringConcat(t *testing.T) {
	names := map[string]any{"first": "Ellen", "last": "Ripley"}

	result := evalOK(t, `first + " " + last`, names, nil)
	assert.Equal(t, "Ellen Ripley", result)

	// string + number is not concatenation
	_, err := EvalExpression(`first + 1`, names, nil)
	require.Error(t, err)
	assert.False(t, IsInvalidExpr(err))
}

func TestEvalExpression_Comparison(t *testing.T) {
	names := map[string]any{"year": 1979, "title": "Alien"}

	tests := []struct {
		expr string
		want bool
	}{
		{"year > 1970", true},
		{"year < 1970", false},
		{"year >= 1979", true},
		{"year <= 1978", false},
		{"year == 1979", true},
		{"year != 1979", false},
		{`title == "Alien"`, true},
		{`title != "Aliens"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, evalOK(t, tt.expr, names, nil))
		})
	}

	t.Run("mixed int width equality", func(t *testing.T) {
		assert.Equal(t, true, evalOK(t, "n == 3", map[string]any{"n": int64(3)}, nil))
	})
}

func TestEvalExpression_Logic(t *testing.T) {
	names := map[string]any{"title": "Alien", "empty": "", "year": 1979}

	assert.Equal(t, true, evalOK(t, "title and year", names, nil))
	assert.Equal(t, false, evalOK(t, "empty and year", names, nil))
	assert.Equal(t, true, evalOK(t, "empty or title", names, nil))
	assert.Equal(t, false, evalOK(t, "not title", names, nil))
	assert.Equal(t, true, evalOK(t, "not empty", names, nil))

	t.Run("short circuit skips right side", func(t *testing.T) {
		// boom is undefined; and must not reach it
		assert.Equal(t, false, evalOK(t, "empty and boom", names, nil))
		assert.Equal(t, true, evalOK(t, "title or boom", names, nil))
	})
}

func TestEvalExpression_Access(t *testing.T) {
	names := map[string]any{
		"info": map[string]any{
			"title": "Alien",
			"cast":  []any{"Weaver", "Skerritt"},
		},
		"idx": 1,
	}

	assert.Equal(t, "Alien", evalOK(t, "info.title", names, nil))
	assert.Equal(t, "Weaver", evalOK(t, "info.cast[0]", names, nil))
	assert.Equal(t, "Alien", evalOK(t, `info["title"]`, names, nil))
	assert.Equal(t, "Skerritt", evalOK(t, "info.cast[idx]", names, nil))

	t.Run("missing member is an eval error", func(t *testing.T) {
		_, err := EvalExpression("info.nope", names, nil)
		require.Error(t, err)
		assert.False(t, IsInvalidExpr(err))
		var evalErr *ExprEvalError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, ErrMsgExprBadAccess, evalErr.Message)
	})
}

func TestEvalExpression_Calls(t *testing.T) {
	functions := map[string]Func{
		"upper": func(args ...any) (any, error) {
			return strings.ToUpper(ValueToString(args[0])), nil
		},
		"fail": func(args ...any) (any, error) {
			return nil, errors.New("boom")
		},
	}
	names := map[string]any{"name": "ripley"}

	assert.Equal(t, "RIPLEY", evalOK(t, "upper(name)", names, functions))

	t.Run("unknown function is a name error", func(t *testing.T) {
		_, err := EvalExpression("nothere(name)", names, functions)
		require.Error(t, err)
		assert.True(t, IsInvalidExpr(err))
	})

	t.Run("function error is an eval error", func(t *testing.T) {
		_, err := EvalExpression("fail()", names, functions)
		require.Error(t, err)
		assert.False(t, IsInvalidExpr(err))
		var evalErr *ExprEvalError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, ErrMsgExprCallFailed, evalErr.Message)
	})
}

func TestIsInvalidExpr(t *testing.T) {
	names := map[string]any{"a": 1}

	t.Run("syntax error", func(t *testing.T) {
		_, err := EvalExpression("a +* 2", names, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidExpr(err))
	})

	t.Run("empty expression", func(t *testing.T) {
		_, err := EvalExpression("", names, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidExpr(err))
	})

	t.Run("bad character", func(t *testing.T) {
		_, err := EvalExpression("a § 2", names, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidExpr(err))
	})

	t.Run("undefined name", func(t *testing.T) {
		_, err := EvalExpression("a + missing", names, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidExpr(err))
	})

	t.Run("division by zero is not invalid", func(t *testing.T) {
		_, err := EvalExpression("a / 0", names, nil)
		require.Error(t, err)
		assert.False(t, IsInvalidExpr(err))
		var evalErr *ExprEvalError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, ErrMsgExprDivByZero, evalErr.Message)
	})

	t.Run("bad operand is not invalid", func(t *testing.T) {
		_, err := EvalExpression("-name", map[string]any{"name": "Alien"}, nil)
		require.Error(t, err)
		assert.False(t, IsInvalidExpr(err))
	})

	assert.False(t, IsInvalidExpr(nil))
	assert.False(t, IsInvalidExpr(errors.New("plain")))
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, IsTruthy(nil))
	assert.False(t, IsTruthy(false))
	assert.False(t, IsTruthy(""))
	assert.False(t, IsTruthy(0))
	assert.False(t, IsTruthy(0.0))
	assert.False(t, IsTruthy([]any{}))

	assert.True(t, IsTruthy(true))
	assert.True(t, IsTruthy("x"))
	assert.True(t, IsTruthy(-1))
	assert.True(t, IsTruthy([]any{nil}))
	assert.True(t, IsTruthy(struct{}{}))
}

func TestParseExpression_Literals(t *testing.T) {
	assert.InDelta(t, 3.5, evalOK(t, "3.5", nil, nil), 1e-9)
	assert.InDelta(t, 7, evalOK(t, "7", nil, nil), 1e-9)
	assert.Equal(t, "plain", evalOK(t, `"plain"`, nil, nil))
	assert.Equal(t, "single", evalOK(t, "'single'", nil, nil))
	assert.Equal(t, true, evalOK(t, "true", nil, nil))
	assert.Equal(t, false, evalOK(t, "false", nil, nil))
	assert.Nil(t, evalOK(t, "nil", nil, nil))
	assert.Nil(t, evalOK(t, "None", nil, nil))
}
