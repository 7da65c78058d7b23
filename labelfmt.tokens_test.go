package labelfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeFields_LiteralOnly(t *testing.T) {
	tokens, err := TokenizeFields("just text")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, "just text", tokens[0].Literal)
	assert.False(t, tokens[0].HasField)
}

func TestTokenizeFields_LiteralAndFields(t *testing.T) {
	tokens, err := TokenizeFields("{series} S{season:02d}E{episode:02d} end")
	require.NoError(t, err)
	require.Len(t, tokens, 4)

	assert.Equal(t, "", tokens[0].Literal)
	assert.Equal(t, "series", tokens[0].Field)
	assert.True(t, tokens[0].HasField)

	assert.Equal(t, " S", tokens[1].Literal)
	assert.Equal(t, "season", tokens[1].Field)
	assert.Equal(t, "02d", tokens[1].Spec)

	assert.Equal(t, "E", tokens[2].Literal)
	assert.Equal(t, "episode", tokens[2].Field)
	assert.Equal(t, "02d", tokens[2].Spec)

	assert.Equal(t, " end", tokens[3].Literal)
	assert.False(t, tokens[3].HasField)
}

func TestTokenizeFields_EmptyField(t *testing.T) {
	tokens, err := TokenizeFields("{} and {}")
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.True(t, tokens[0].HasField)
	assert.Equal(t, "", tokens[0].Field)
	assert.Equal(t, " and ", tokens[1].Literal)
	assert.True(t, tokens[1].HasField)
}

func TestTokenizeFields_DoubledBraces(t *testing.T) {
	tokens, err := TokenizeFields("a {{b}} {c}")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, "a {b} ", tokens[0].Literal)
	assert.Equal(t, "c", tokens[0].Field)
}

func TestTokenizeFields_ConversionAndSpec(t *testing.T) {
	tokens, err := TokenizeFields("{title!r:>10}")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, "title", tokens[0].Field)
	assert.Equal(t, byte('r'), tokens[0].Conv)
	assert.Equal(t, ">10", tokens[0].Spec)
}

func TestTokenizeFields_ConversionWithoutSpec(t *testing.T) {
	tokens, err := TokenizeFields("{path!e}")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, "path", tokens[0].Field)
	assert.Equal(t, byte('e'), tokens[0].Conv)
	assert.Equal(t, "", tokens[0].Spec)
}

func TestTokenizeFields_DefaultSpecStaysInSpec(t *testing.T) {
	tokens, err := TokenizeFields("{episode:02d!!7}")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, "episode", tokens[0].Field)
	assert.Equal(t, byte(0), tokens[0].Conv)
	assert.Equal(t, "02d!!7", tokens[0].Spec)
}

func TestTokenizeFields_NestedBracesInSpec(t *testing.T) {
	tokens, err := TokenizeFields("{value:{width}}")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, "value", tokens[0].Field)
	assert.Equal(t, "{width}", tokens[0].Spec)
}

func TestTokenizeFields_QuotedRunProtectsDelimiters(t *testing.T) {
	tokens, err := TokenizeFields(`{info['a:b']}`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	// the colon inside the quoted key is not a spec separator
	assert.Equal(t, `info['a:b']`, tokens[0].Field)
	assert.Equal(t, "", tokens[0].Spec)
}

func TestTokenizeFields_TripleQuotedRun(t *testing.T) {
	tokens, err := TokenizeFields(`{m["""it's: fine"""]}`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, `m["""it's: fine"""]`, tokens[0].Field)
}

func TestTokenizeFields_EOLEscape(t *testing.T) {
	tokens, err := TokenizeFields("{m['a\nb']}", WithEOLEscapeOption())
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.Equal(t, `m['a\nb']`, tokens[0].Field)
}

func TestTokenizeFields_UnbalancedOpen(t *testing.T) {
	_, err := TokenizeFields("{title")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestTokenizeFields_StrayClose(t *testing.T) {
	_, err := TokenizeFields("title}")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestTokenizeFields_Empty(t *testing.T) {
	tokens, err := TokenizeFields("")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestFieldScanner_StreamsTokens(t *testing.T) {
	sc := NewFieldScanner("{a}-{b}")

	require.True(t, sc.Scan())
	assert.Equal(t, "a", sc.Token().Field)

	require.True(t, sc.Scan())
	assert.Equal(t, "-", sc.Token().Literal)
	assert.Equal(t, "b", sc.Token().Field)

	assert.False(t, sc.Scan())
	assert.NoError(t, sc.Err())
}

func TestFieldScanner_ErrStopsIteration(t *testing.T) {
	sc := NewFieldScanner("{a} }")

	require.True(t, sc.Scan())
	assert.False(t, sc.Scan())
	require.Error(t, sc.Err())
	assert.True(t, IsParseError(sc.Err()))
	assert.False(t, sc.Scan())
}

func TestMatchQuotedRun(t *testing.T) {
	t.Run("double quotes", func(t *testing.T) {
		text, width, ok := matchQuotedRun(`"abc" tail`)
		require.True(t, ok)
		assert.Equal(t, `"abc"`, text)
		assert.Equal(t, 5, width)
	})

	t.Run("escaped interior quote", func(t *testing.T) {
		text, _, ok := matchQuotedRun(`'a\'b'`)
		require.True(t, ok)
		assert.Equal(t, `'a\'b'`, text)
	})

	t.Run("triple quotes may contain single delimiters", func(t *testing.T) {
		text, _, ok := matchQuotedRun(`"""a "quoted" b"""`)
		require.True(t, ok)
		assert.Equal(t, `"""a "quoted" b"""`, text)
	})

	t.Run("unterminated", func(t *testing.T) {
		_, _, ok := matchQuotedRun(`"abc`)
		assert.False(t, ok)
	})
}
