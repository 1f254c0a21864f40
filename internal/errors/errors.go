package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// FileUnreadableError represents a script that could not be opened or read
type FileUnreadableError struct {
	Path string
	Err  error
}

func (e *FileUnreadableError) Error() string {
	return fmt.Sprintf("cannot open file '%s': %v", e.Path, e.Err)
}

func (e *FileUnreadableError) Unwrap() error {
	return e.Err
}

// NewFileUnreadableError creates a new FileUnreadableError
func NewFileUnreadableError(path string, err error) *FileUnreadableError {
	return &FileUnreadableError{
		Path: path,
		Err:  err,
	}
}

// StatementError represents a statement the executor rejected
type StatementError struct {
	File string
	Line int
	SQL  string
	Err  error
}

func (e *StatementError) Error() string {
	var pgErr *pgconn.PgError
	if stderrors.As(e.Err, &pgErr) {
		return fmt.Sprintf("%s:%d: statement failed: [%s] %s", e.File, e.Line, pgErr.Code, pgErr.Message)
	}
	return fmt.Sprintf("%s:%d: statement failed: %v", e.File, e.Line, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// NewStatementError creates a new StatementError
func NewStatementError(file string, line int, sql string, err error) *StatementError {
	return &StatementError{
		File: file,
		Line: line,
		SQL:  sql,
		Err:  err,
	}
}

// ConnectionError represents database connection failure
type ConnectionError struct {
	Message    string
	Suggestion string
}

func (e *ConnectionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s\nSuggestion: %s", e.Message, e.Suggestion)
	}
	return e.Message
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(message, suggestion string) *ConnectionError {
	return &ConnectionError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// SyntaxError represents a statement PostgreSQL's parser rejects
type SyntaxError struct {
	File string
	Line int
	SQL  string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: syntax error: %v", e.File, e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// NewSyntaxError creates a new SyntaxError
func NewSyntaxError(file string, line int, sql string, err error) *SyntaxError {
	return &SyntaxError{
		File: file,
		Line: line,
		SQL:  sql,
		Err:  err,
	}
}
