package report

import (
	"fmt"
	"io"
	"strings"
)

// TextReporter formats results for a terminal
type TextReporter struct{}

// NewTextReporter creates a new text reporter
func NewTextReporter() *TextReporter {
	return &TextReporter{}
}

// Format writes one line per file that is not clean, followed by a summary
func (r *TextReporter) Format(res *Result, writer io.Writer) error {
	s, _ := r.FormatString(res)
	if _, err := io.WriteString(writer, s); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}
	return nil
}

// FormatString returns the text report
func (r *TextReporter) FormatString(res *Result) (string, error) {
	var b strings.Builder

	for _, f := range res.Files {
		switch f.Status {
		case "clean":
			continue
		case "failed":
			fmt.Fprintf(&b, "%-10s %s: %s\n", strings.ToUpper(f.Status), f.Path, f.Error)
		default:
			fmt.Fprintf(&b, "%-10s %s\n", strings.ToUpper(f.Status), f.Path)
		}
	}

	s := res.Summary
	fmt.Fprintf(&b, "%s: %d files, %d clean, %d violations, %d fixed, %d failed\n",
		res.Command, s.Total, s.Clean, s.Violations, s.Fixed, s.Failed)
	return b.String(), nil
}

// Name returns the name of this reporter
func (r *TextReporter) Name() string {
	return "text"
}
