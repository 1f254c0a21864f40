// Package fixer rewrites composite MySQL ALTER TABLE statements that add
// columns and a foreign key in one go into two separate statements, so the
// foreign key can be applied after the columns exist.
package fixer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
)

// Pattern matches ALTER TABLE <t> ADD <col> ..., [ADD <col> ...,] ADD FOREIGN KEY (...) REFERENCES <u> (...);
// Column definitions may not contain ';' so a match never spans two statements.
var Pattern = regexp.MustCompile("(?i)ALTER TABLE\\s+`?(\\w+)`?\\s+" +
	"((?:ADD\\s+`?\\w+`?\\s+[^,;]+,\\s*)+)\\s*" +
	"(ADD FOREIGN KEY\\s*\\([^)]+\\)\\s+REFERENCES\\s+`?\\w+`?\\s*\\([^)]+\\)[^;]*);")

// Fixer checks and rewrites script files
type Fixer struct {
	fs afero.Fs
}

// New creates a Fixer working on fs
func New(fs afero.Fs) *Fixer {
	return &Fixer{fs: fs}
}

// CheckContent reports whether sql contains no composite ALTER TABLE statement
func CheckContent(sql string) bool {
	return !Pattern.MatchString(sql)
}

// FixContent rewrites every composite statement in sql until none is left.
// It returns the new content and the number of rewrites.
func FixContent(sql string) (string, int) {
	rewrites := 0
	// every rewrite removes one match, so the number of passes is bounded
	// by the number of ALTER TABLE occurrences in the input
	limit := len(sql) + 1
	for pass := 0; ; pass++ {
		matches := Pattern.FindAllStringSubmatchIndex(sql, -1)
		if len(matches) == 0 {
			return sql, rewrites
		}
		if pass > limit {
			panic(fmt.Sprintf("fixer: rewrite did not converge after %d passes", pass))
		}

		var b strings.Builder
		last := 0
		for _, m := range matches {
			b.WriteString(sql[last:m[0]])
			b.WriteString(split(sql[m[2]:m[3]], sql[m[4]:m[5]], sql[m[6]:m[7]]))
			last = m[1]
			rewrites++
		}
		b.WriteString(sql[last:])
		sql = b.String()
	}
}

// split builds the two replacement statements for one match
func split(table, columns, foreignKey string) string {
	columns = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(columns), ","))
	foreignKey = strings.TrimSpace(foreignKey)

	return fmt.Sprintf("ALTER TABLE `%s` %s;\nALTER TABLE `%s` %s;", table, columns, table, foreignKey)
}

// Check reports whether the file at path is free of composite statements
func (f *Fixer) Check(path string) (bool, error) {
	sql, err := f.read(path)
	if err != nil {
		return false, err
	}
	return CheckContent(sql), nil
}

// Fix rewrites the file at path in place. A file that already passes Check is
// not written. It returns whether the file was changed.
func (f *Fixer) Fix(path string) (bool, error) {
	sql, err := f.read(path)
	if err != nil {
		return false, err
	}
	if CheckContent(sql) {
		return false, nil
	}

	fixed, _ := FixContent(sql)

	info, err := f.fs.Stat(path)
	if err != nil {
		return false, errors.NewFileUnreadableError(path, err)
	}
	if err := afero.WriteFile(f.fs, path, []byte(fixed), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// CheckInFolder checks every script under path and returns those that fail
func (f *Fixer) CheckInFolder(path string) ([]discovery.ScriptFile, error) {
	files, err := discovery.Discover(f.fs, path)
	if err != nil {
		return nil, err
	}

	var failing []discovery.ScriptFile
	for _, file := range files {
		ok, err := f.Check(file.Path)
		if err != nil {
			return failing, err
		}
		if !ok {
			failing = append(failing, file)
		}
	}
	return failing, nil
}

// FixInFolder fixes every script under path and returns those it rewrote
func (f *Fixer) FixInFolder(path string) ([]discovery.ScriptFile, error) {
	files, err := discovery.Discover(f.fs, path)
	if err != nil {
		return nil, err
	}

	var fixed []discovery.ScriptFile
	for _, file := range files {
		changed, err := f.Fix(file.Path)
		if err != nil {
			return fixed, err
		}
		if changed {
			fixed = append(fixed, file)
		}
	}
	return fixed, nil
}

func (f *Fixer) read(path string) (string, error) {
	content, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return "", errors.NewFileUnreadableError(path, err)
	}
	return string(content), nil
}
