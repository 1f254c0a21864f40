package parser

import (
	"regexp"
	"slices"
	"strings"
)

const identifier = "(?:`[^`]+`|\"[^\"]+\"|[\\w$]+)"

var (
	alterTableStart = regexp.MustCompile(`(?i)^ALTER\s+TABLE\b`)

	// alterTablePrefix captures optional modifiers and the table reference,
	// keeping whatever quoting the script used.
	alterTablePrefix = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+((?:(?:IF\s+EXISTS|ONLY)\s+)*)(` +
		identifier + `(?:\.` + identifier + `)?)`)

	foreignKeyAdd = regexp.MustCompile(`(?i)\bADD\s+FOREIGN\s+KEY\b`)

	dollarTagStart = regexp.MustCompile(`^` + dollarTag)
)

// IsAlterTable reports whether sql starts with ALTER TABLE
func IsAlterTable(sql string) bool {
	return alterTableStart.MatchString(strings.TrimSpace(sql))
}

// ClassifyClause returns the kind of an ALTER TABLE sub-clause
func ClassifyClause(clause string) ClauseKind {
	if foreignKeyAdd.MatchString(clause) {
		return ClauseForeignKeyAdd
	}
	return ClauseOther
}

// TableName extracts the table reference following ALTER TABLE, quotes kept.
// It returns "" when clause does not start with a usable ALTER TABLE prefix.
func TableName(clause string) string {
	m := alterTablePrefix.FindStringSubmatch(strings.TrimSpace(clause))
	if m == nil {
		return ""
	}
	return m[2]
}

/*
 * Decompose rewrites one raw statement into an ordered list of statements.
 *
 * The statement is cut on top-level semicolons, since a statement read behind
 * a custom delimiter may hold several. When none of the parts starts with
 * ALTER TABLE the statement is returned unchanged, so ALTER TABLE text inside
 * a procedure body or a literal is never rewritten. Otherwise every ALTER
 * TABLE part is cut on top-level commas and every sub-clause becomes a
 * standalone ALTER TABLE statement for the last table named. The output lists
 * the other parts first, then column/constraint changes, then ADD FOREIGN KEY
 * clauses, each group in its original order. Foreign keys go last because
 * they may reference columns added by the same script.
 *
 * A sub-clause that cannot be attributed to a table is dropped and reported
 * as a Warning.
 */
func Decompose(sql string) ([]string, []Warning) {
	parts := splitTopLevel(sql, ';')
	if len(parts) == 0 {
		return nil, nil
	}
	if !slices.ContainsFunc(parts, IsAlterTable) {
		return []string{strings.TrimSpace(sql)}, nil
	}

	var plain, columns, foreignKeys []string
	var warnings []Warning
	prefix := ""

	for _, part := range parts {
		if !IsAlterTable(part) {
			plain = append(plain, part)
			continue
		}

		for _, clause := range splitTopLevel(part, ',') {
			var stmt string
			if alterTableStart.MatchString(clause) {
				prefix = prefixOf(clause)
				stmt = clause + ";"
			} else if prefix == "" {
				warnings = append(warnings, Warning{
					Clause: clause,
					Reason: "no table name for ALTER TABLE sub-clause",
				})
				continue
			} else {
				stmt = prefix + " " + clause + ";"
			}

			if ClassifyClause(clause) == ClauseForeignKeyAdd {
				foreignKeys = append(foreignKeys, stmt)
			} else {
				columns = append(columns, stmt)
			}
		}
	}

	out := make([]string, 0, len(plain)+len(columns)+len(foreignKeys))
	out = append(out, plain...)
	out = append(out, columns...)
	out = append(out, foreignKeys...)
	return out, warnings
}

// prefixOf rebuilds "ALTER TABLE [modifiers] name" from a clause, or "".
func prefixOf(clause string) string {
	m := alterTablePrefix.FindStringSubmatch(clause)
	if m == nil {
		return ""
	}
	return "ALTER TABLE " + strings.Join(append(strings.Fields(m[1]), m[2]), " ")
}

// splitTopLevel cuts s on sep where sep is outside parentheses, quotes, dollar
// quotes and comments. Each part comes back without surrounding whitespace and
// comments; parts left empty are dropped. Backslash escapes inside quotes are
// honoured.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	first, last := -1, 0 // significant span of the current part

	mark := func(from, to int) {
		if first < 0 {
			first = from
		}
		last = to
	}
	flush := func() {
		if first >= 0 {
			parts = append(parts, s[first:last])
		}
		first = -1
	}

	for i := 0; i < len(s); {
		ch := s[i]
		switch {
		case isSpace(rune(ch)):
			i++
		case ch == '#' || strings.HasPrefix(s[i:], "--"):
			i = skipPast(s, i, "\n")
		case strings.HasPrefix(s[i:], "/*"):
			i = skipPast(s, i+2, "*/")
		case ch == '\'' || ch == '"' || ch == '`':
			end := skipQuote(s, i)
			mark(i, end)
			i = end
		case ch == '$' && dollarTagAt(s, i) != "":
			tag := dollarTagAt(s, i)
			end := skipPast(s, i+len(tag), tag)
			mark(i, end)
			i = end
		case ch == sep && depth == 0:
			flush()
			i++
		default:
			switch ch {
			case '(':
				depth++
			case ')':
				if depth > 0 {
					depth--
				}
			}
			mark(i, i+1)
			i++
		}
	}
	flush()
	return parts
}

// skipPast returns the offset just past the first closer at or after from, or
// len(s) when there is none.
func skipPast(s string, from int, closer string) int {
	idx := strings.Index(s[from:], closer)
	if idx < 0 {
		return len(s)
	}
	return from + idx + len(closer)
}

// skipQuote returns the offset just past the quote opened at s[i]
func skipQuote(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(s)
}

// dollarTagAt returns the dollar-quote tag starting at s[i], or "". A "$"
// continuing an identifier never opens a tag.
func dollarTagAt(s string, i int) string {
	if i > 0 && isIdentByte(s[i-1]) {
		return ""
	}
	return dollarTagStart.FindString(s[i:])
}
