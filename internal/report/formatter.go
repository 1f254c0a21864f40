package report

import (
	"fmt"
	"io"
)

// Formatter is an interface for check/fix report formatters
type Formatter interface {
	// Format formats a result and writes to the writer
	Format(res *Result, writer io.Writer) error

	// FormatString returns a result as a string
	FormatString(res *Result) (string, error)

	// Name returns the name of this formatter
	Name() string
}

// FormatType represents supported report formats
type FormatType string

const (
	FormatText FormatType = "text"
	FormatJSON FormatType = "json"
)

// GetFormatter returns a formatter for the specified format type
func GetFormatter(format FormatType) (Formatter, error) {
	switch format {
	case FormatText:
		return NewTextReporter(), nil
	case FormatJSON:
		return NewJSONReporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: text, json)", format)
	}
}

// FormatToWriter formats a result to a writer using the specified format
func FormatToWriter(res *Result, format FormatType, writer io.Writer) error {
	formatter, err := GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(res, writer)
}

// ValidFormat checks if a format string is valid
func ValidFormat(format string) bool {
	switch FormatType(format) {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// SupportedFormats returns a list of supported format names
func SupportedFormats() []string {
	return []string{string(FormatText), string(FormatJSON)}
}
