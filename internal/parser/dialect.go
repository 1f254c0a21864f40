package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect selects the quoting and comment rules used while splitting a script
type Dialect int

const (
	// Standard covers MySQL-style dumps: backtick identifiers, '#' line
	// comments and backslash escapes inside quotes.
	Standard Dialect = iota
	// PostgresStyle adds dollar-quoted blocks and treats any "--" as a line
	// comment. Backticks and '#' are ordinary characters.
	PostgresStyle
)

// String returns a string representation of Dialect
func (d Dialect) String() string {
	switch d {
	case Standard:
		return "standard"
	case PostgresStyle:
		return "postgres"
	default:
		return "unknown"
	}
}

// ParseDialect maps a user supplied dialect name to a Dialect
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "mysql", "mariadb":
		return Standard, nil
	case "postgres", "postgresql", "pg", "pgsql":
		return PostgresStyle, nil
	default:
		return Standard, fmt.Errorf("unknown dialect %q (supported: %s)", name, strings.Join(SupportedDialects(), ", "))
	}
}

// SupportedDialects returns the canonical dialect names
func SupportedDialects() []string {
	return []string{Standard.String(), PostgresStyle.String()}
}

// dollarTag matches a PostgreSQL dollar-quote delimiter such as $$ or $body$.
// Positional parameters ($1) never match because a tag cannot start with a digit.
const dollarTag = `\$(?:[A-Za-z_\x{80}-\x{10FFFF}][A-Za-z0-9_\x{80}-\x{10FFFF}]*)?\$`

// patternSet holds every regular expression one Splitter needs. It is built
// once per Splitter; boundary patterns are cached per active delimiter.
type patternSet struct {
	dialect Dialect

	// openers is the alternation of quote and comment openers plus \z, in
	// tie-break order. The active delimiter is prepended by boundaryFor.
	openers string

	// directive matches a DELIMITER directive anchored at the cursor.
	directive *regexp.Regexp
	// leading matches whitespace and comments anchored at the cursor.
	leading *regexp.Regexp
	// trailing matches a remainder made only of whitespace and comments.
	trailing *regexp.Regexp

	closers  map[Mode]*regexp.Regexp
	dollars  map[string]*regexp.Regexp
	boundary map[string]*regexp.Regexp
}

func newPatternSet(d Dialect) *patternSet {
	var space, openers string
	switch d {
	case PostgresStyle:
		space = `(?:\s|/\*(?s:.*?)(?:\*/|\z)|--[^\n]*(?:\n|\z))`
		openers = `'|"|/\*|--|` + dollarTag + `|\z`
	default:
		space = `(?:\s|/\*(?s:.*?)(?:\*/|\z)|(?:#|--[ \t])[^\n]*(?:\n|\z)|--(?:\r?\n|\z))`
		openers = "'|\"|`|#|/\\*|--(?:[ \\t]|\\r?\\n|\\z)|\\z"
	}

	return &patternSet{
		dialect:   d,
		openers:   openers,
		directive: regexp.MustCompile(`(?i)^` + space + `*DELIMITER\s+(\S+)`),
		leading:   regexp.MustCompile(`^` + space + `*`),
		trailing:  regexp.MustCompile(`^` + space + `*\z`),
		closers: map[Mode]*regexp.Regexp{
			InSingleQuote:       regexp.MustCompile(`(?s)'|\\.|\z`),
			InDoubleQuote:       regexp.MustCompile(`(?s)"|\\.|\z`),
			InBacktickOrBracket: regexp.MustCompile("(?s)`|\\\\.|\\z"),
			InBlockComment:      regexp.MustCompile(`\*/|\z`),
			InLineComment:       regexp.MustCompile(`\n|\z`),
		},
		dollars:  make(map[string]*regexp.Regexp),
		boundary: make(map[string]*regexp.Regexp),
	}
}

// boundaryFor returns the pattern that finds the nearest delimiter, opener or
// end of input. The delimiter comes first in the alternation, so on an exact
// offset tie it wins over an opener of the same text.
func (p *patternSet) boundaryFor(delimiter string) *regexp.Regexp {
	if re, ok := p.boundary[delimiter]; ok {
		return re
	}
	re := regexp.MustCompile(`(?:` + regexp.QuoteMeta(delimiter) + `|` + p.openers + `)`)
	p.boundary[delimiter] = re
	return re
}

// dollarCloser returns the closer for a dollar-quoted block opened with tag.
// Backslashes carry no meaning inside dollar quotes.
func (p *patternSet) dollarCloser(tag string) *regexp.Regexp {
	if re, ok := p.dollars[tag]; ok {
		return re
	}
	re := regexp.MustCompile(regexp.QuoteMeta(tag) + `|\z`)
	p.dollars[tag] = re
	return re
}

// modeFor classifies an opener found by the boundary pattern.
func (p *patternSet) modeFor(opener string) Mode {
	switch {
	case opener == "'":
		return InSingleQuote
	case opener == `"`:
		return InDoubleQuote
	case opener == "`":
		return InBacktickOrBracket
	case opener == "/*":
		return InBlockComment
	case opener == "#", strings.HasPrefix(opener, "--"):
		return InLineComment
	case strings.HasPrefix(opener, "$"):
		return InDollarQuote
	default:
		return Normal
	}
}
