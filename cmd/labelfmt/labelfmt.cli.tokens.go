package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/itsatony/go-labelfmt"
)

// tokensConfig holds parsed tokens command configuration
type tokensConfig struct {
	templatePath string
	format       string
}

// tokenOutput is the JSON shape of one parsed token
type tokenOutput struct {
	Literal string `json:"literal,omitempty"`
	Field   string `json:"field,omitempty"`
	Conv    string `json:"conv,omitempty"`
	Spec    string `json:"spec,omitempty"`
}

func runTokens(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseTokensFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMissingTemplate, err)
		return ExitCodeUsageError
	}

	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}
	template := strings.TrimRight(string(templateSource), "\n")

	tokens, err := labelfmt.TokenizeFields(template)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgTokenizeFailed, err)
		return ExitCodeError
	}

	if cfg.format == OutputFormatJSON {
		return outputTokensJSON(tokens, stdout)
	}
	return outputTokensText(tokens, stdout)
}

func parseTokensFlags(args []string) (*tokensConfig, error) {
	fs := flag.NewFlagSet(CmdNameTokens, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &tokensConfig{}
	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}
	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}
	return cfg, nil
}

func outputTokensText(tokens []labelfmt.FieldToken, stdout io.Writer) int {
	for i, tok := range tokens {
		fmt.Fprintf(stdout, "%d: literal=%q", i, tok.Literal)
		if tok.HasField {
			fmt.Fprintf(stdout, " field=%q", tok.Field)
			if tok.Conv != 0 {
				fmt.Fprintf(stdout, " conv=%c", tok.Conv)
			}
			if tok.Spec != "" {
				fmt.Fprintf(stdout, " spec=%q", tok.Spec)
			}
		}
		fmt.Fprint(stdout, FmtNewline)
	}
	return ExitCodeSuccess
}

func outputTokensJSON(tokens []labelfmt.FieldToken, stdout io.Writer) int {
	output := make([]tokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		out := tokenOutput{Literal: tok.Literal}
		if tok.HasField {
			out.Field = tok.Field
			out.Spec = tok.Spec
			if tok.Conv != 0 {
				out.Conv = string(tok.Conv)
			}
		}
		output = append(output, out)
	}

	jsonBytes, _ := json.MarshalIndent(output, "", "  ")
	fmt.Fprintln(stdout, string(jsonBytes))
	return ExitCodeSuccess
}
