package labelfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStylize_MarkupAndColors(t *testing.T) {
	colors := ColorMap{"meta": "FF808080"}

	t.Run("markup tag", func(t *testing.T) {
		style := Style{ParseStyleToken("B")}
		out := Stylize("Alien", style, nil)
		assert.Equal(t, "[B]Alien[/B]", out)
	})

	t.Run("color reference resolved", func(t *testing.T) {
		style := Style{ParseStyleToken("COLOR :meta")}
		out := Stylize("1979", style, &StylizeSettings{Colors: colors})
		assert.Equal(t, "[COLOR FF808080]1979[/COLOR]", out)
	})

	t.Run("unknown color falls back", func(t *testing.T) {
		style := Style{ParseStyleToken("COLOR :nope")}
		out := Stylize("x", style, &StylizeSettings{Colors: colors})
		assert.Equal(t, "[COLOR "+DefaultColor+"]x[/COLOR]", out)
	})

	t.Run("no color table falls back", func(t *testing.T) {
		style := Style{ParseStyleToken("COLOR :meta")}
		out := Stylize("x", style, nil)
		assert.Equal(t, "[COLOR "+DefaultColor+"]x[/COLOR]", out)
	})
}

func TestStylize_DefaultStyleFromSettings(t *testing.T) {
	settings := &StylizeSettings{Style: Style{ParseStyleToken("I")}}

	out := Stylize("text", nil, settings)
	assert.Equal(t, "[I]text[/I]", out)
}

func TestStylize_NestedTemplate(t *testing.T) {
	t.Run("plain substitution", func(t *testing.T) {
		style := Style{ParseStyleToken("<< {} >>")}
		out := Stylize("x", style, nil)
		assert.Equal(t, "<< x >>", out)
	})

	t.Run("info values available", func(t *testing.T) {
		style := Style{ParseStyleToken("{} ({year})")}
		settings := &StylizeSettings{Info: map[string]any{"year": 1979}}
		out := Stylize("Alien", style, settings)
		assert.Equal(t, "Alien (1979)", out)
	})

	t.Run("extra values overlay info", func(t *testing.T) {
		style := Style{ParseStyleToken("{} ({year})")}
		settings := &StylizeSettings{
			Info:  map[string]any{"year": 1979},
			Extra: map[string]any{"year": 1986},
		}
		out := Stylize("Aliens", style, settings)
		assert.Equal(t, "Aliens (1986)", out)
	})
}

func TestStylize_TokenOrderWithColors(t *testing.T) {
	// the last token wraps innermost, so COLOR ends up inside B
	style := Style{
		ParseStyleToken("B"),
		ParseStyleToken("COLOR :hot"),
	}
	settings := &StylizeSettings{Colors: ColorMap{"hot": "red"}}

	out := Stylize("x", style, settings)
	assert.Equal(t, "[B][COLOR red]x[/COLOR][/B]", out)
}

func TestStylize_TextAndInfoBindings(t *testing.T) {
	style := Style{ParseStyleToken("{text} ({info[year]})")}
	settings := &StylizeSettings{Info: map[string]any{"year": 1979}}

	out := Stylize("Alien", style, settings)
	assert.Equal(t, "Alien (1979)", out)
}

func TestStylize_DiagnosticLogging(t *testing.T) {
	t.Run("color reference without a table", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		settings := &StylizeSettings{Logger: zap.New(core)}

		out := Stylize("x", Style{ParseStyleToken("COLOR :meta")}, settings)
		assert.Equal(t, "[COLOR "+DefaultColor+"]x[/COLOR]", out)
		assert.Equal(t, 1, logs.FilterMessage(LogMsgMissingColors).Len())
	})

	t.Run("nested template failure falls back and logs", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		settings := &StylizeSettings{Logger: zap.New(core)}

		out := Stylize("x", Style{ParseStyleToken("{} {broken")}, settings)
		assert.Equal(t, "x {broken", out)
		assert.Equal(t, 1, logs.FilterMessage(LogMsgStyleFailed).Len())
	})
}

func TestResolveColors(t *testing.T) {
	t.Run("multiple references", func(t *testing.T) {
		colors := ColorMap{"a": "red", "b": "blue"}
		out := ResolveColors("[COLOR :a]x[/COLOR] [COLOR :b]y[/COLOR]", colors)
		assert.Equal(t, "[COLOR red]x[/COLOR] [COLOR blue]y[/COLOR]", out)
	})

	t.Run("extra spaces in tag", func(t *testing.T) {
		out := ResolveColors("[COLOR   :a]x", ColorMap{"a": "red"})
		assert.Equal(t, "[COLOR red]x", out)
	})

	t.Run("concrete tags untouched", func(t *testing.T) {
		out := ResolveColors("[COLOR red]x[/COLOR]", nil)
		assert.Equal(t, "[COLOR red]x[/COLOR]", out)
	})

	t.Run("empty mapping falls back", func(t *testing.T) {
		out := ResolveColors("[COLOR :a]", ColorMap{"a": ""})
		assert.Equal(t, "[COLOR "+DefaultColor+"]", out)
	})
}

func TestColorFunc(t *testing.T) {
	f := ColorFunc(func(name string) string {
		if name == "known" {
			return "green"
		}
		return ""
	})

	color, ok := f.ResolveColor("known")
	assert.True(t, ok)
	assert.Equal(t, "green", color)

	_, ok = f.ResolveColor("unknown")
	assert.False(t, ok)

	var nilFunc ColorFunc
	_, ok = nilFunc.ResolveColor("known")
	assert.False(t, ok)
}

func TestStylizeSettings_Merge(t *testing.T) {
	base := &StylizeSettings{
		Style:  Style{ParseStyleToken("B")},
		Info:   map[string]any{"a": 1, "b": 2},
		Colors: ColorMap{"x": "red"},
	}

	t.Run("nil other keeps base", func(t *testing.T) {
		merged := base.Merge(nil)
		assert.Equal(t, base.Style, merged.Style)
		assert.Equal(t, base.Info, merged.Info)
	})

	t.Run("nil receiver takes other", func(t *testing.T) {
		var none *StylizeSettings
		merged := none.Merge(&StylizeSettings{Info: map[string]any{"a": 1}})
		require.NotNil(t, merged)
		assert.Equal(t, map[string]any{"a": 1}, merged.Info)
	})

	t.Run("info merges key-wise", func(t *testing.T) {
		merged := base.Merge(&StylizeSettings{Info: map[string]any{"b": 20, "c": 3}})
		assert.Equal(t, map[string]any{"a": 1, "b": 20, "c": 3}, merged.Info)
		// base is untouched
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, base.Info)
	})

	t.Run("style and colors replaced only when set", func(t *testing.T) {
		merged := base.Merge(&StylizeSettings{})
		assert.Equal(t, base.Style, merged.Style)
		assert.NotNil(t, merged.Colors)

		italic := Style{ParseStyleToken("I")}
		merged = base.Merge(&StylizeSettings{Style: italic})
		assert.Equal(t, italic, merged.Style)
	})
}

func TestFormatter_StylesApplied(t *testing.T) {
	rules, err := ParseStyleRules(map[string]any{
		"title": "B",
		"year":  []any{"COLOR :meta", "()"},
	})
	require.NoError(t, err)

	f := New(
		WithStyles(rules),
		WithStylizeSettings(&StylizeSettings{Colors: ColorMap{"meta": "gray60"}}),
	)

	out, err := f.Format("{title} {year}", nil, map[string]any{"title": "Alien", "year": 1979})
	require.NoError(t, err)
	assert.Equal(t, "[B]Alien[/B] [COLOR gray60](1979)[/COLOR]", out)
}

func TestFormatter_NestedStyleSeesNamedValues(t *testing.T) {
	rules, err := ParseStyleRules(map[string]any{"title": "{} ({year})"})
	require.NoError(t, err)

	f := New(WithStyles(rules))

	out, err := f.Format("{title}", nil, map[string]any{"title": "Alien", "year": 1979})
	require.NoError(t, err)
	assert.Equal(t, "Alien (1979)", out)
}

func TestFormatter_StylizeDirect(t *testing.T) {
	rules, err := ParseStyleRules(map[string]any{
		"title": "B",
		"*":     "COLOR :meta",
	})
	require.NoError(t, err)

	f := New(
		WithStyles(rules),
		WithStylizeSettings(&StylizeSettings{Colors: ColorMap{"meta": "gray60"}}),
	)

	assert.Equal(t, "[B]Alien[/B]", f.Stylize("title", "Alien"))
	assert.Equal(t, "[COLOR gray60]1979[/COLOR]", f.Stylize("year", "1979"))

	plain := New()
	assert.Equal(t, "Alien", plain.Stylize("title", "Alien"))
}
