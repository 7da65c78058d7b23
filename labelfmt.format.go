package labelfmt

// SafeFormat renders template in safe mode: unresolvable fields stay in
// the output as their placeholder text, "!!" defaults step in for fields
// they cover, and a value a spec cannot take is shown as a {value:"spec"}
// diagnostic. Only unbalanced braces and out-of-range numeric fields
// return an error.
func SafeFormat(template string, positional []any, named map[string]any) (string, error) {
	return New().Format(template, positional, named)
}

// EvalFormat renders template like SafeFormat but with the built-in
// expression evaluator: fields that fail direct lookup are evaluated as
// expressions over the named arguments plus the ambient values, with the
// default function environment available.
func EvalFormat(template string, positional []any, named map[string]any, ambient map[string]any) (string, error) {
	f := New(
		WithEvaluator(NewEvaluator()),
		WithFunctions(DefaultEvalFunctions()),
		WithNames(ambient),
	)
	return f.Format(template, positional, named)
}

// SectionFormat renders a template with optional bracketed sections and
// never fails: sections with missing or empty data are dropped, and a
// composition that cannot render at all (a broken template, or a failing
// field outside every section) yields the empty string.
func SectionFormat(template string, positional []any, named map[string]any) string {
	out, err := New().FormatSections(template, positional, named)
	if err != nil {
		return ""
	}
	return out
}
