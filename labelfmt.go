// Package labelfmt renders display labels from partial media metadata.
//
// Templates use the familiar placeholder syntax {field[!conv][:spec]} with
// three extensions: field expressions may contain nested braces and quoted
// strings, format specs support a "!!default" fallback for unresolved
// fields, and templates can be split into droppable [sections].
//
// # Basic Usage
//
// Format a template without ever failing on missing data:
//
//	out, _ := labelfmt.SafeFormat("{title} ({year})", nil, map[string]any{
//	    "title": "Serial",
//	})
//	// out: "Serial ({year})"
//
// # Sections
//
// Bracketed fragments vanish when their data is missing or empty, together
// with the literal text that follows them:
//
//	out := labelfmt.SectionFormat(
//	    "[{series} - ][S{season:02d}][E{episode:02d}][: {title}]",
//	    nil,
//	    map[string]any{"series": "Serial", "season": 2, "episode": 3, "title": ""},
//	)
//	// out: "Serial - S02E03"
//
// Use %[ , %] and %% (or backslash escapes) for literal brackets and
// percent signs inside section templates.
//
// # Default Values
//
// A format spec may carry a fallback used only when the field does not
// resolve; the fallback is coerced to match the spec's type character:
//
//	labelfmt.SafeFormat("{episode:02d!!7}", nil, nil)  // "07"
//
// # Expressions
//
// With an evaluator configured, a field that is not a plain lookup path is
// evaluated as an expression against the named arguments:
//
//	f := labelfmt.New(labelfmt.WithEvaluator(labelfmt.NewEvaluator()))
//	out, _ := f.Format("{a + 2}", nil, map[string]any{"a": 42})
//	// out: "44"
//
// # Styles
//
// Rendered field values can be decorated per field path with a cascade from
// exact paths to wildcard paths ("c.x" → "c.*" → "*"), wrapping the text in
// markup tags, bracket pairs or nested templates, and resolving custom
// color tags of the form [COLOR :name]:
//
//	f := labelfmt.New(labelfmt.WithStyles(labelfmt.StyleRules{
//	    "title": {labelfmt.ParseStyleToken("B")},
//	}))
//	out, _ := f.Format("{title}", nil, map[string]any{"title": "x"})
//	// out: "[B]x[/B]"
//
// # Configuration
//
// Formatters are configured with functional options:
//
//	f := labelfmt.New(
//	    labelfmt.WithStrict(),
//	    labelfmt.WithRaiseEmpty(),
//	    labelfmt.WithLogger(logger),
//	)
package labelfmt
