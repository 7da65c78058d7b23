package labelfmt

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Stylesheet is a declarative styling document: per-field style rules, a
// color table for [COLOR :name] references and an optional default style.
//
//	styles:
//	  title: B
//	  info.year: ["COLOR :meta", "()"]
//	  "*": "COLOR :text"
//	colors:
//	  meta: gray
//	  text: white
//	default: []
type Stylesheet struct {
	Styles  map[string]any    `yaml:"styles"`
	Colors  map[string]string `yaml:"colors"`
	Default any               `yaml:"default"`
}

// ParseStylesheet decodes a YAML stylesheet document.
func ParseStylesheet(data []byte) (*Stylesheet, error) {
	var sheet Stylesheet
	if err := yaml.Unmarshal(data, &sheet); err != nil {
		return nil, NewStylesheetError(ErrMsgStylesheetInvalid, err)
	}
	return &sheet, nil
}

// LoadStylesheet reads and decodes a stylesheet file.
func LoadStylesheet(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewStylesheetError(ErrMsgStylesheetInvalid, err)
	}
	return ParseStylesheet(data)
}

// Rules converts the style definitions to resolved StyleRules.
func (s *Stylesheet) Rules() (StyleRules, error) {
	if s.Styles == nil {
		return nil, nil
	}
	return ParseStyleRules(s.Styles)
}

// Settings builds the ambient styling environment of the sheet: its color
// table and default style.
func (s *Stylesheet) Settings() (*StylizeSettings, error) {
	settings := &StylizeSettings{}
	if s.Colors != nil {
		settings.Colors = ColorMap(s.Colors)
	}
	if s.Default != nil {
		style, err := ParseStyle(s.Default)
		if err != nil {
			return nil, err
		}
		settings.Style = style
	}
	return settings, nil
}

// Options expands the sheet into formatter options.
func (s *Stylesheet) Options() ([]Option, error) {
	rules, err := s.Rules()
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}
	return []Option{WithStyles(rules), WithStylizeSettings(settings)}, nil
}
