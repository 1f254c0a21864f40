package parser

import (
	"os"

	"github.com/cybertec-postgresql/sqlsplit/internal/errors"
)

// Script is an immutable SQL script loaded into memory
type Script struct {
	Path string // File identifier; empty for in-memory scripts
	Text string
}

// LoadScript reads the whole file at path
func LoadScript(path string) (*Script, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFileUnreadableError(path, err)
	}
	return &Script{Path: path, Text: string(content)}, nil
}

// NewScript wraps text that did not come from a file
func NewScript(name, text string) *Script {
	return &Script{Path: name, Text: text}
}

// Split splits text with the given dialect and returns every statement
func Split(text string, dialect Dialect) []Statement {
	var stmts []Statement
	for stmt := range NewSplitter(NewScript("", text), dialect).All() {
		stmts = append(stmts, stmt)
	}
	return stmts
}
