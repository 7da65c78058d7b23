package labelfmt

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring a Formatter.
type Option func(*formatterConfig)

// formatterConfig holds the internal configuration for a Formatter.
type formatterConfig struct {
	strict     bool
	raiseEmpty bool
	eolEscape  bool
	evaluator  Evaluator
	names      map[string]any
	functions  map[string]EvalFunc
	styles     StyleRules
	stylize    *StylizeSettings
	logger     *zap.Logger
}

// defaultFormatterConfig returns the default formatter configuration:
// safe mode, no evaluator, no styles, no logging.
func defaultFormatterConfig() *formatterConfig {
	return &formatterConfig{
		logger: zap.NewNop(),
	}
}

// WithStrict makes every field failure an error instead of leaving the
// placeholder in the output.
// Default: safe mode.
func WithStrict() Option {
	return func(c *formatterConfig) {
		c.strict = true
	}
}

// WithRaiseEmpty treats a resolved but empty value (nil, empty string,
// empty collection) as a field failure. Zero numbers are not empty.
// Default: off.
func WithRaiseEmpty() Option {
	return func(c *formatterConfig) {
		c.raiseEmpty = true
	}
}

// WithEOLEscape rewrites newlines inside quoted field literals to the
// escaped form, keeping the rendered label on a single line.
// Default: off.
func WithEOLEscape() Option {
	return func(c *formatterConfig) {
		c.eolEscape = true
	}
}

// WithEvaluator sets the evaluator consulted for fields that do not
// resolve by direct lookup.
// Default: nil (no expression fallback).
func WithEvaluator(evaluator Evaluator) Option {
	return func(c *formatterConfig) {
		c.evaluator = evaluator
	}
}

// WithNames adds ambient named values available to every Format call, on
// top of the per-call arguments.
func WithNames(names map[string]any) Option {
	return func(c *formatterConfig) {
		c.names = overlayValueMap(c.names, names)
	}
}

// WithFunctions adds functions to the expression environment.
func WithFunctions(functions map[string]EvalFunc) Option {
	return func(c *formatterConfig) {
		if c.functions == nil {
			c.functions = make(map[string]EvalFunc, len(functions))
		}
		for name, fn := range functions {
			c.functions[name] = fn
		}
	}
}

// WithStyles sets the per-field style rules applied to formatted values.
// Default: no styling.
func WithStyles(styles StyleRules) Option {
	return func(c *formatterConfig) {
		c.styles = styles
	}
}

// WithStylizeSettings sets the ambient styling environment (default style,
// info values for nested style templates, color table).
func WithStylizeSettings(settings *StylizeSettings) Option {
	return func(c *formatterConfig) {
		c.stylize = settings
	}
}

// WithLogger sets the logger for the formatter.
// Default: no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *formatterConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}
