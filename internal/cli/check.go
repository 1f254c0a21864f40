package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/fixer"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/report"
	"github.com/cybertec-postgresql/sqlsplit/internal/runner"
)

// Check reports scripts under path that contain composite ALTER TABLE
// statements. It returns exit code 1 when any are found.
func Check(ctx context.Context, config *Config, fs afero.Fs, path string) (int, error) {
	return batch(ctx, config, fs, runner.TaskCheck, path)
}

// Fix rewrites scripts under path in place and reports the files it changed
func Fix(ctx context.Context, config *Config, fs afero.Fs, path string) (int, error) {
	return batch(ctx, config, fs, runner.TaskFix, path)
}

func batch(ctx context.Context, config *Config, fs afero.Fs, task runner.Task, path string) (int, error) {
	files, err := discovery.Discover(fs, path)
	if err != nil {
		return 1, fmt.Errorf("failed to discover scripts: %w", err)
	}
	logger.Debug("Found %d script(s) in %s", len(files), path)

	f := fixer.New(fs)
	pool := runner.NewWorkerPool(f, config.Parallelism)

	var runs []*runner.FileRun
	if task == runner.TaskFix {
		runs = pool.FixFiles(ctx, files)
	} else {
		runs = pool.CheckFiles(ctx, files)
	}

	res := report.NewResult(task.String(), path, runs)
	if err := writeReport(res, config.Format, config.Output); err != nil {
		return 1, err
	}

	code := runner.SummarizeRuns(runs).ExitCode()
	if task == runner.TaskFix && code == 0 {
		remaining, err := f.CheckInFolder(path)
		if err != nil {
			return 1, fmt.Errorf("failed to re-check scripts: %w", err)
		}
		for _, file := range remaining {
			logger.Error("%s: composite ALTER TABLE statements remain after fix", file.RelativePath)
		}
		if len(remaining) > 0 {
			return 1, nil
		}
	}
	return code, nil
}

// writeReport writes res to outputPath, or stdout when outputPath is "-"
func writeReport(res *report.Result, format, outputPath string) error {
	var writer io.Writer
	if outputPath == "-" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	if err := report.FormatToWriter(res, report.FormatType(format), writer); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if outputPath != "-" {
		logger.Info("Report written to %s", outputPath)
	}
	return nil
}
