package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/itsatony/go-labelfmt"
	"gopkg.in/yaml.v3"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	templatePath   string
	dataJSON       string
	dataFilePath   string
	stylesheetPath string
	outputPath     string
	sections       bool
	strict         bool
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMissingTemplate, err)
		return ExitCodeUsageError
	}

	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	data, err := loadData(cfg.dataJSON, cfg.dataFilePath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidData, err)
		return ExitCodeInputError
	}

	opts := []labelfmt.Option{
		labelfmt.WithEvaluator(labelfmt.NewEvaluator()),
		labelfmt.WithFunctions(labelfmt.DefaultEvalFunctions()),
	}
	if cfg.strict {
		opts = append(opts, labelfmt.WithStrict())
	}
	if cfg.stylesheetPath != "" {
		sheet, err := labelfmt.LoadStylesheet(cfg.stylesheetPath)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgStylesheetFailed, err)
			return ExitCodeInputError
		}
		sheetOpts, err := sheet.Options()
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgStylesheetFailed, err)
			return ExitCodeInputError
		}
		opts = append(opts, sheetOpts...)
	}

	formatter := labelfmt.New(opts...)
	template := strings.TrimRight(string(templateSource), "\n")

	var result string
	if cfg.sections {
		result, err = formatter.FormatSections(template, nil, data)
	} else {
		result, err = formatter.Format(template, nil, data)
	}
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRenderFailed, err)
		return ExitCodeError
	}

	if err := writeOutput(cfg.outputPath, []byte(result+FmtNewline), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &renderConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.dataJSON, FlagData, "", "")
	fs.StringVar(&cfg.dataJSON, FlagDataShort, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFile, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFileShort, "", "")
	fs.StringVar(&cfg.stylesheetPath, FlagStylesheet, "", "")
	fs.StringVar(&cfg.stylesheetPath, FlagStylesheetShort, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVar(&cfg.sections, FlagSections, false, "")
	fs.BoolVar(&cfg.strict, FlagStrict, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}
	return cfg, nil
}

// loadData decodes field data from an inline JSON string or a JSON/YAML
// file. yaml.v3 accepts JSON input, so file data goes through one decoder.
func loadData(jsonStr, filePath string) (map[string]any, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		var result map[string]any
		if err := yaml.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return result, nil
	}

	if jsonStr == "" {
		return make(map[string]any), nil
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, err
	}
	return result, nil
}
