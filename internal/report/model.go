package report

import (
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/runner"
)

// Result is the outcome of a check or fix batch
type Result struct {
	Command   string       `json:"command"`
	Root      string       `json:"root"`
	Timestamp time.Time    `json:"timestamp"`
	Files     []FileResult `json:"files"`
	Summary   Summary      `json:"summary"`
	OK        bool         `json:"ok"`
}

// FileResult is the outcome for one script
type FileResult struct {
	Path       string `json:"path"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Summary counts files per status
type Summary struct {
	Total      int `json:"total"`
	Clean      int `json:"clean"`
	Violations int `json:"violations"`
	Fixed      int `json:"fixed"`
	Failed     int `json:"failed"`
}

// NewResult builds a Result from the runs of a batch
func NewResult(command, root string, runs []*runner.FileRun) *Result {
	s := runner.SummarizeRuns(runs)
	res := &Result{
		Command:   command,
		Root:      root,
		Timestamp: time.Now(),
		Files:     make([]FileResult, 0, len(runs)),
		Summary: Summary{
			Total:      s.TotalFiles,
			Clean:      s.CleanFiles,
			Violations: s.ViolationFiles,
			Fixed:      s.FixedFiles,
			Failed:     s.FailedFiles,
		},
		OK: s.OK(),
	}

	for _, run := range runs {
		fr := FileResult{
			Path:       run.File.String(),
			Status:     run.Status.String(),
			DurationMs: run.Duration().Milliseconds(),
		}
		if run.Error != nil {
			fr.Error = run.Error.Error()
		}
		res.Files = append(res.Files, fr)
	}
	return res
}
