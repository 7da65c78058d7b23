package labelfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyleToken(t *testing.T) {
	tests := []struct {
		raw  string
		kind StyleTokenKind
	}{
		{"[]", StyleZeroWidthBracket},
		{"B", StyleMarkupTag},
		{"COLOR :red", StyleMarkupTag},
		{"_private", StyleMarkupTag},
		{"()", StyleBracketPair},
		{"<>", StyleBracketPair},
		{"{} ({year})", StyleNestedTemplate},
		{"<< {} >>", StyleNestedTemplate},
	}

	for _, tt := range tests {
		tok := ParseStyleToken(tt.raw)
		assert.Equal(t, tt.kind, tok.Kind, "token %q", tt.raw)
		assert.Equal(t, tt.raw, tok.Value)
	}
}

func TestStyleToken_Apply(t *testing.T) {
	t.Run("markup tag", func(t *testing.T) {
		out := StyleToken{Kind: StyleMarkupTag, Value: "B"}.Apply("text")
		assert.Equal(t, "[B]text[/B]", out)
	})

	t.Run("markup tag closes with first word", func(t *testing.T) {
		out := StyleToken{Kind: StyleMarkupTag, Value: "COLOR red"}.Apply("text")
		assert.Equal(t, "[COLOR red]text[/COLOR]", out)
	})

	t.Run("zero width bracket", func(t *testing.T) {
		out := StyleToken{Kind: StyleZeroWidthBracket, Value: "[]"}.Apply("text")
		assert.Equal(t, "["+ZeroWidthSpace+"text"+ZeroWidthSpace+"]", out)
	})

	t.Run("bracket pair", func(t *testing.T) {
		out := StyleToken{Kind: StyleBracketPair, Value: "()"}.Apply("text")
		assert.Equal(t, "(text)", out)
	})

	t.Run("nested template", func(t *testing.T) {
		out := StyleToken{Kind: StyleNestedTemplate, Value: "<{}>"}.Apply("text")
		assert.Equal(t, "<text>", out)
	})
}

func TestStyle_ApplyOrder(t *testing.T) {
	// the last token wraps innermost, the first ends up outermost
	style := Style{
		ParseStyleToken("B"),
		ParseStyleToken("()"),
	}
	assert.Equal(t, "[B](x)[/B]", style.Apply("x"))
}

func TestParseStyle(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		style, err := ParseStyle(nil)
		require.NoError(t, err)
		assert.Nil(t, style)
	})

	t.Run("single token string", func(t *testing.T) {
		style, err := ParseStyle("B")
		require.NoError(t, err)
		require.Len(t, style, 1)
		assert.Equal(t, StyleMarkupTag, style[0].Kind)
	})

	t.Run("string list", func(t *testing.T) {
		style, err := ParseStyle([]string{"B", "()"})
		require.NoError(t, err)
		assert.Len(t, style, 2)
	})

	t.Run("any list from yaml", func(t *testing.T) {
		style, err := ParseStyle([]any{"COLOR :meta", "[]"})
		require.NoError(t, err)
		require.Len(t, style, 2)
		assert.Equal(t, StyleZeroWidthBracket, style[1].Kind)
	})

	t.Run("non-string list item fails", func(t *testing.T) {
		_, err := ParseStyle([]any{"B", 7})
		require.Error(t, err)
		assert.True(t, IsStyleError(err))
	})

	t.Run("unsupported type fails", func(t *testing.T) {
		_, err := ParseStyle(42)
		require.Error(t, err)
		assert.True(t, IsStyleError(err))
	})
}

func TestStyleRules_Resolve(t *testing.T) {
	rules, err := ParseStyleRules(map[string]any{
		"info.title": "B",
		"info.*":     "I",
		"votes[*]":   "U",
		"*":          "COLOR :text",
	})
	require.NoError(t, err)

	t.Run("exact match wins", func(t *testing.T) {
		style := rules.Resolve("info.title")
		require.Len(t, style, 1)
		assert.Equal(t, "B", style[0].Value)
	})

	t.Run("attribute wildcard", func(t *testing.T) {
		style := rules.Resolve("info.year")
		require.Len(t, style, 1)
		assert.Equal(t, "I", style[0].Value)
	})

	t.Run("index wildcard", func(t *testing.T) {
		style := rules.Resolve("votes[2]")
		require.Len(t, style, 1)
		assert.Equal(t, "U", style[0].Value)
	})

	t.Run("catch-all", func(t *testing.T) {
		style := rules.Resolve("other")
		require.Len(t, style, 1)
		assert.Equal(t, "COLOR :text", style[0].Value)
	})

	t.Run("quoted key normalizes to the unquoted rule", func(t *testing.T) {
		keyed, err := ParseStyleRules(map[string]any{"info[title]": "B"})
		require.NoError(t, err)
		style := keyed.Resolve("info['title']")
		require.Len(t, style, 1)
		assert.Equal(t, "B", style[0].Value)
	})

	t.Run("expression never reaches the catch-all", func(t *testing.T) {
		assert.Nil(t, rules.Resolve("a + b"))
		assert.Nil(t, rules.Resolve("a+2"))
	})

	t.Run("expression still matches its exact key", func(t *testing.T) {
		keyed, err := ParseStyleRules(map[string]any{"a + b": "B"})
		require.NoError(t, err)
		style := keyed.Resolve("a + b")
		require.Len(t, style, 1)
		assert.Equal(t, "B", style[0].Value)
	})

	t.Run("deep path generalizes step by step", func(t *testing.T) {
		deep, err := ParseStyleRules(map[string]any{"a.*": "B"})
		require.NoError(t, err)
		style := deep.Resolve("a.b.c")
		require.NotNil(t, style)
		assert.Equal(t, "B", style[0].Value)
	})

	t.Run("no match", func(t *testing.T) {
		sparse, err := ParseStyleRules(map[string]any{"x": "B"})
		require.NoError(t, err)
		assert.Nil(t, sparse.Resolve("y"))
	})
}

func TestStyleRules_ResolveEmpty(t *testing.T) {
	var rules StyleRules
	assert.Nil(t, rules.Resolve("anything"))
}
