package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONReporter formats results as JSON
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// Format formats a result as JSON and writes to the writer
func (r *JSONReporter) Format(res *Result, writer io.Writer) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	if _, err := writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// FormatString returns a result as a JSON string
func (r *JSONReporter) FormatString(res *Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return string(data), nil
}

// Name returns the name of this reporter
func (r *JSONReporter) Name() string {
	return "json"
}
