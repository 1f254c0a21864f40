package runner_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/goleak"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/fixer"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
	"github.com/cybertec-postgresql/sqlsplit/internal/runner"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const composite = "ALTER TABLE t ADD a INT, ADD FOREIGN KEY (a) REFERENCES u (id);\n"

// setupFiles writes n scripts; every odd one needs fixing
func setupFiles(t *testing.T, n int) (afero.Fs, []discovery.ScriptFile) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for i := range n {
		content := "SELECT 1;\n"
		if i%2 == 1 {
			content = composite
		}
		path := fmt.Sprintf("/scripts/%03d.sql", i)
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := discovery.Discover(fs, "/scripts")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != n {
		t.Fatalf("Discover() found %d files, want %d", len(files), n)
	}
	return fs, files
}

func TestCheckFilesParallel(t *testing.T) {
	fs, files := setupFiles(t, 20)
	pool := runner.NewWorkerPool(fixer.New(fs), 4)

	runs := pool.CheckFiles(context.Background(), files)
	if len(runs) != len(files) {
		t.Fatalf("CheckFiles() returned %d runs, want %d", len(runs), len(files))
	}

	for i, run := range runs {
		if run.File.Path != files[i].Path {
			t.Errorf("run %d is for %s, want %s (results out of order)", i, run.File.Path, files[i].Path)
		}
		want := runner.FileClean
		if i%2 == 1 {
			want = runner.FileViolation
		}
		if run.Status != want {
			t.Errorf("%s: status = %s, want %s", run.File.Path, run.Status, want)
		}
	}

	summary := runner.SummarizeRuns(runs)
	if summary.ViolationFiles != 10 || summary.CleanFiles != 10 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", summary.ExitCode())
	}
}

func TestFixFilesParallel(t *testing.T) {
	fs, files := setupFiles(t, 12)
	pool := runner.NewWorkerPool(fixer.New(fs), 3)

	runs := pool.FixFiles(context.Background(), files)
	summary := runner.SummarizeRuns(runs)
	if summary.FixedFiles != 6 || summary.CleanFiles != 6 || summary.FailedFiles != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", summary.ExitCode())
	}

	// Everything is clean afterwards
	runs = pool.CheckFiles(context.Background(), files)
	if s := runner.SummarizeRuns(runs); s.CleanFiles != 12 {
		t.Errorf("after fix summary = %+v", s)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	fs, files := setupFiles(t, 9)

	sequential := runner.NewWorkerPool(fixer.New(fs), 1).CheckFiles(context.Background(), files)
	parallel := runner.NewWorkerPool(fixer.New(fs), 8).CheckFiles(context.Background(), files)

	if len(sequential) != len(parallel) {
		t.Fatalf("sequential=%d runs, parallel=%d runs", len(sequential), len(parallel))
	}
	for i := range sequential {
		if sequential[i].Status != parallel[i].Status || sequential[i].File.Path != parallel[i].File.Path {
			t.Errorf("run %d differs: sequential %s %s, parallel %s %s", i,
				sequential[i].File.Path, sequential[i].Status, parallel[i].File.Path, parallel[i].Status)
		}
	}
}

func TestFixFilesDeduplicatesPaths(t *testing.T) {
	fs, files := setupFiles(t, 2)
	doubled := append(append([]discovery.ScriptFile{}, files...), files...)

	runs := runner.NewWorkerPool(fixer.New(fs), 4).FixFiles(context.Background(), doubled)
	if len(runs) != 2 {
		t.Fatalf("FixFiles() returned %d runs, want 2", len(runs))
	}
	if runs[1].Status != runner.FileFixed {
		t.Errorf("status = %s, want fixed", runs[1].Status)
	}
}

func TestMissingFileFails(t *testing.T) {
	fs, files := setupFiles(t, 3)
	files = append(files, discovery.ScriptFile{Path: "/scripts/gone.sql", RelativePath: "gone.sql"})

	runs := runner.NewWorkerPool(fixer.New(fs), 2).CheckFiles(context.Background(), files)
	last := runs[len(runs)-1]
	if last.Status != runner.FileFailed || last.Error == nil {
		t.Errorf("missing file run = %s, %v; want failed with error", last.Status, last.Error)
	}
	if runner.SummarizeRuns(runs).ExitCode() != 1 {
		t.Error("ExitCode() = 0 with a failed file")
	}
}

func TestFailureLogsRelativePath(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Default()
	logger.SetDefault(logger.New(false, &buf))
	t.Cleanup(func() { logger.SetDefault(prev) })

	file := &discovery.ScriptFile{Path: "/scripts/gone.sql", RelativePath: "sub/gone.sql"}
	run := runner.NewExecutor(fixer.New(afero.NewMemMapFs()), runner.TaskCheck).Execute(context.Background(), file)
	if run.Status != runner.FileFailed {
		t.Fatalf("status = %s, want failed", run.Status)
	}
	if !strings.Contains(buf.String(), "[ERROR] ") || !strings.Contains(buf.String(), " sub/gone.sql: ") {
		t.Errorf("log output = %q, want an error line for sub/gone.sql", buf.String())
	}
}

func TestCancelledContext(t *testing.T) {
	fs, files := setupFiles(t, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runs := runner.NewWorkerPool(fixer.New(fs), 3).FixFiles(ctx, files)
	for _, run := range runs {
		if run.Status != runner.FileFailed {
			t.Errorf("%s: status = %s, want failed", run.File.Path, run.Status)
		}
	}

	// Nothing was written
	content, _ := afero.ReadFile(fs, files[1].Path)
	if string(content) != composite {
		t.Error("file was modified after cancellation")
	}
}

func TestEmptyBatch(t *testing.T) {
	if runs := runner.NewWorkerPool(fixer.New(afero.NewMemMapFs()), 4).CheckFiles(context.Background(), nil); runs != nil {
		t.Errorf("CheckFiles(nil) = %v, want nil", runs)
	}
}

func TestStatusStrings(t *testing.T) {
	tests := []struct {
		status runner.FileStatus
		want   string
	}{
		{runner.FilePending, "pending"},
		{runner.FileClean, "clean"},
		{runner.FileViolation, "violation"},
		{runner.FileFixed, "fixed"},
		{runner.FileFailed, "failed"},
		{runner.FileStatus(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("FileStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
