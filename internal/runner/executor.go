package runner

import (
	"context"
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/fixer"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
)

// Executor checks or fixes one file at a time
type Executor struct {
	fixer *fixer.Fixer
	task  Task
}

// NewExecutor creates a new executor for task
func NewExecutor(f *fixer.Fixer, task Task) *Executor {
	return &Executor{
		fixer: f,
		task:  task,
	}
}

// Execute processes a single file
func (e *Executor) Execute(ctx context.Context, file *discovery.ScriptFile) *FileRun {
	run := &FileRun{
		File:      file,
		Task:      e.task,
		StartTime: time.Now(),
		Status:    FilePending,
	}
	defer func() { run.EndTime = time.Now() }()

	if err := ctx.Err(); err != nil {
		run.Status = FileFailed
		run.Error = err
		return run
	}

	switch e.task {
	case TaskFix:
		changed, err := e.fixer.Fix(file.Path)
		switch {
		case err != nil:
			run.Status = FileFailed
			run.Error = err
		case changed:
			run.Status = FileFixed
		default:
			run.Status = FileClean
		}
	default:
		ok, err := e.fixer.Check(file.Path)
		switch {
		case err != nil:
			run.Status = FileFailed
			run.Error = err
		case ok:
			run.Status = FileClean
		default:
			run.Status = FileViolation
		}
	}

	if run.Error != nil {
		logger.Error("%s: %v", file.RelativePath, run.Error)
	}
	return run
}

// ExecuteBatch processes files sequentially
func (e *Executor) ExecuteBatch(ctx context.Context, files []discovery.ScriptFile) []*FileRun {
	runs := make([]*FileRun, 0, len(files))

	for i := range files {
		logger.Debug("%s %s", e.task, files[i].RelativePath)
		runs = append(runs, e.Execute(ctx, &files[i]))
	}

	return runs
}

// SummarizeRuns creates a summary of a batch
func SummarizeRuns(runs []*FileRun) *Summary {
	summary := &Summary{
		TotalFiles: len(runs),
	}

	for _, run := range runs {
		summary.TotalDuration += run.Duration()

		switch run.Status {
		case FileClean:
			summary.CleanFiles++
		case FileViolation:
			summary.ViolationFiles++
		case FileFixed:
			summary.FixedFiles++
		case FileFailed:
			summary.FailedFiles++
		}
	}

	return summary
}
