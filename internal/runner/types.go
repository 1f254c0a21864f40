package runner

import (
	"time"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
)

// Task selects what a run does with a file
type Task int

const (
	TaskCheck Task = iota
	TaskFix
)

// String returns a string representation of Task
func (t Task) String() string {
	switch t {
	case TaskCheck:
		return "check"
	case TaskFix:
		return "fix"
	default:
		return "unknown"
	}
}

// FileRun represents the processing of a single script
type FileRun struct {
	File      *discovery.ScriptFile
	Task      Task
	StartTime time.Time
	EndTime   time.Time
	Status    FileStatus
	Error     error // Non-nil if the file could not be processed
}

// FileStatus represents the outcome of a run
type FileStatus int

const (
	FilePending   FileStatus = iota
	FileClean                // no composite statement found
	FileViolation            // check found a composite statement
	FileFixed                // fix rewrote the file
	FileFailed               // read or write failed
)

// String returns a string representation of FileStatus
func (fs FileStatus) String() string {
	switch fs {
	case FilePending:
		return "pending"
	case FileClean:
		return "clean"
	case FileViolation:
		return "violation"
	case FileFixed:
		return "fixed"
	case FileFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Duration returns the processing duration
func (fr *FileRun) Duration() time.Duration {
	if fr.EndTime.IsZero() {
		return time.Since(fr.StartTime)
	}
	return fr.EndTime.Sub(fr.StartTime)
}

// Summary summarizes all runs of a batch
type Summary struct {
	TotalFiles     int
	CleanFiles     int
	ViolationFiles int
	FixedFiles     int
	FailedFiles    int
	TotalDuration  time.Duration
}

// OK returns true if no file failed and no violation is left
func (s *Summary) OK() bool {
	return s.FailedFiles == 0 && s.ViolationFiles == 0
}

// ExitCode returns the appropriate exit code based on the runs
func (s *Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}
