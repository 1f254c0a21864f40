package runner

import (
	"context"
	"sync"

	"github.com/cybertec-postgresql/sqlsplit/internal/discovery"
	"github.com/cybertec-postgresql/sqlsplit/internal/fixer"
	"github.com/cybertec-postgresql/sqlsplit/internal/logger"
)

// WorkerPool checks or fixes distinct files concurrently
type WorkerPool struct {
	fixer      *fixer.Fixer
	maxWorkers int
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(f *fixer.Fixer, maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		fixer:      f,
		maxWorkers: maxWorkers,
	}
}

// CheckFiles checks files and returns one run per distinct path, in input order
func (wp *WorkerPool) CheckFiles(ctx context.Context, files []discovery.ScriptFile) []*FileRun {
	return wp.executeParallel(ctx, NewExecutor(wp.fixer, TaskCheck), files)
}

// FixFiles fixes files and returns one run per distinct path, in input order.
// A path listed twice is fixed once.
func (wp *WorkerPool) FixFiles(ctx context.Context, files []discovery.ScriptFile) []*FileRun {
	return wp.executeParallel(ctx, NewExecutor(wp.fixer, TaskFix), files)
}

func (wp *WorkerPool) executeParallel(ctx context.Context, executor *Executor, files []discovery.ScriptFile) []*FileRun {
	files = distinct(files)
	numFiles := len(files)
	if numFiles == 0 {
		return nil
	}

	// If only one worker or one file, fall back to sequential execution
	if wp.maxWorkers == 1 || numFiles == 1 {
		return executor.ExecuteBatch(ctx, files)
	}

	workers := min(wp.maxWorkers, numFiles)
	logger.Debug("Starting %s with %d workers for %d files", executor.task, workers, numFiles)

	jobs := make(chan *fileJob, numFiles)
	results := make(chan *fileResult, numFiles)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go wp.worker(ctx, i, executor, jobs, results, &wg)
	}

	for i := range files {
		jobs <- &fileJob{
			file:  &files[i],
			index: i,
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	runs := make([]*FileRun, numFiles)
	for result := range results {
		runs[result.index] = result.run
		logger.Debug("[%s] %s (worker %d)", result.run.Status, result.run.File.RelativePath, result.workerID)
	}

	return runs
}

// fileJob represents a single file to process
type fileJob struct {
	file  *discovery.ScriptFile
	index int
}

// fileResult represents the result of processing one file
type fileResult struct {
	run      *FileRun
	index    int
	workerID int
}

// worker is the goroutine that processes file jobs
func (wp *WorkerPool) worker(ctx context.Context, workerID int, executor *Executor, jobs <-chan *fileJob, results chan<- *fileResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		results <- &fileResult{
			run:      executor.Execute(ctx, job.file),
			index:    job.index,
			workerID: workerID,
		}
	}
}

// distinct drops repeated paths, keeping the first occurrence
func distinct(files []discovery.ScriptFile) []discovery.ScriptFile {
	seen := make(map[string]bool, len(files))
	out := make([]discovery.ScriptFile, 0, len(files))
	for _, f := range files {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		out = append(out, f)
	}
	return out
}
