package labelfmt

// Placeholder delimiter characters.
const (
	CharFieldOpen  = '{'
	CharFieldClose = '}'
	CharConversion = '!'
	CharSpecSep    = ':'
)

// Section template characters. Sections are bracketed fragments; percent
// (or backslash) escapes produce literal brackets and percent signs.
const (
	CharSectionOpen  = '['
	CharSectionClose = ']'
	CharEscape       = '%'
	CharBackslash    = '\\'
)

// DefaultSpecMarker separates a format spec from its fallback default,
// e.g. "{episode:02d!!7}".
const DefaultSpecMarker = "!!"

// NestedSpecMarker separates value and spec inside a fallback default,
// e.g. "{x:d!!n/a::>5}".
const NestedSpecMarker = "::"

// WildcardPath is the catch-all key of the style cascade.
const WildcardPath = "*"

// ZeroWidthSpace keeps literal brackets produced by the "[]" style token
// from being read back as markup.
const ZeroWidthSpace = "​"

// DefaultColor substitutes [COLOR :name] tags that cannot be resolved.
const DefaultColor = "gray"

// Named bindings available to nested-template style tokens besides the
// positional text argument.
const (
	StyleNameText = "text"
	StyleNameInfo = "info"
)

// Conversion characters accepted by Formatter.convert.
const (
	ConvNone   byte = 0
	ConvString byte = 's'
	ConvRepr   byte = 'r'
	ConvQuote  byte = 'q'
	ConvEscape byte = 'e'
)

// escapeTable maps characters to their two-character escape form for the
// !e conversion.
var escapeTable = map[rune]string{
	'\\':   `\\`,
	'\'':   `\'`,
	'"':    `\"`,
	'\a':   `\a`,
	'\b':   `\b`,
	'\f':   `\f`,
	'\n':   `\n`,
	'\r':   `\r`,
	'\t':   `\t`,
	'\v':   `\v`,
	'\000': `\000`,
}

// Log messages - ALL log messages must be constants (NO MAGIC STRINGS)
const (
	LogMsgFormatFailed     = "format failed, returning partial result"
	LogMsgFieldUnresolved  = "field did not resolve, using placeholder"
	LogMsgSpecFailed       = "format spec failed, using diagnostic placeholder"
	LogMsgSectionDropped   = "section dropped"
	LogMsgMissingColors    = "custom color tag used without a color table"
	LogMsgStyleFailed      = "style application failed"
	LogMsgCatalogRender    = "catalog template rendered"
	LogMsgTemplateInvalid  = "stored template failed to render"
	LogMsgPositionalFailed = "missing positional argument in section template"
)

// Log field names
const (
	LogFieldTemplate = "template"
	LogFieldField    = "field"
	LogFieldSpec     = "spec"
	LogFieldSection  = "section"
	LogFieldStyle    = "style"
	LogFieldName     = "name"
	LogFieldVersion  = "version"
)
