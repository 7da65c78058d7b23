package main

// Command names
const (
	CmdNameRender  = "render"
	CmdNameTokens  = "tokens"
	CmdNameVersion = "version"
	CmdNameHelp    = "help"
)

// Flag names - long form
const (
	FlagTemplate   = "template"
	FlagData       = "data"
	FlagDataFile   = "data-file"
	FlagStylesheet = "stylesheet"
	FlagOutput     = "output"
	FlagSections   = "sections"
	FlagStrict     = "strict"
	FlagFormat     = "format"
)

// Flag names - short form
const (
	FlagTemplateShort   = "t"
	FlagDataShort       = "d"
	FlagDataFileShort   = "f"
	FlagStylesheetShort = "s"
	FlagOutputShort     = "o"
	FlagFormatShort     = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
	ExitCodeInputError = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand    = "unknown command"
	ErrMsgMissingTemplate   = "template source required"
	ErrMsgInvalidData       = "invalid data document"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgRenderFailed      = "template rendering failed"
	ErrMsgTokenizeFailed    = "template tokenizing failed"
	ErrMsgStylesheetFailed  = "stylesheet loading failed"
	ErrMsgInvalidFormat     = "invalid output format"
)

// Help text templates
const (
	HelpMainUsage = `go-labelfmt - media display label formatting CLI

Usage:
    labelfmt <command> [options]

Commands:
    render      Render a label template with data
    tokens      Show the parsed tokens of a template
    version     Show version information
    help        Show help for a command

Use "labelfmt help <command>" for more information about a command.`

	HelpRenderUsage = `Render a label template with data

Usage:
    labelfmt render [options]

Options:
    -t, --template <file>    Template file (use "-" for stdin)
    -d, --data <json>        JSON data string
    -f, --data-file <file>   JSON or YAML data file
    -s, --stylesheet <file>  YAML stylesheet file
    -o, --output <file>      Output file (default: stdout)
    --sections               Enable [optional section] composition
    --strict                 Fail on unresolvable fields

Examples:
    labelfmt render -t label.txt -d '{"title": "Alien"}'
    labelfmt render -t label.txt -f episode.yaml --sections
    echo '{title} ({year})' | labelfmt render -t - -d '{"title": "Alien", "year": 1979}'`

	HelpTokensUsage = `Show the parsed tokens of a template

Usage:
    labelfmt tokens [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -F, --format <format>   Output format: text, json (default: text)

Examples:
    labelfmt tokens -t label.txt
    echo '{season:02d}x{episode:02d}' | labelfmt tokens -t - -F json`

	HelpVersionUsage = `Show version information

Usage:
    labelfmt version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    labelfmt help [command]

Commands:
    render      Show help for render command
    tokens      Show help for tokens command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "go-labelfmt version %s\nCommit: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
