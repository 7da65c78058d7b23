package labelfmt

import (
	"regexp"
)

// FindString searches text with a regular expression and returns the
// captured content, or fallback when nothing matches or the pattern does
// not compile. A pattern without capture groups yields the whole match; a
// pattern with groups yields the first capturing group.
func FindString(pattern, text, fallback string) string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fallback
	}
	return FindStringRe(re, text, fallback)
}

// FindStringRe is FindString over a pre-compiled pattern.
func FindStringRe(re *regexp.Regexp, text, fallback string) string {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return fallback
	}
	if len(match) > 1 {
		return match[1]
	}
	return match[0]
}

// FindAllStrings returns every capturing group of the first match, or nil
// when nothing matches.
func FindAllStrings(pattern, text string) []string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	match := re.FindStringSubmatch(text)
	if len(match) <= 1 {
		return nil
	}
	return match[1:]
}
