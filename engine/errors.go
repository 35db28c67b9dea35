package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrWorkerFailed matches any *WorkerError.
	ErrWorkerFailed = errors.New("worker failed")

	// ErrInvalidRun is returned for task sizes or worker counts out of range.
	ErrInvalidRun = errors.New("invalid run configuration")
)

// WorkerError reports a worker that failed while evaluating its chunk.
// One failed worker fails the whole run.
type WorkerError struct {
	Strategy Strategy
	Worker   int
	Chunk    Chunk
	Err      error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s worker %d (chunk %d+%d): %v",
		e.Strategy, e.Worker, e.Chunk.Start, e.Chunk.Size, e.Err)
}

func (e *WorkerError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrWorkerFailed) true for every WorkerError.
func (e *WorkerError) Is(target error) bool {
	return target == ErrWorkerFailed
}

func validateRun(taskSize, workers int) error {
	if taskSize <= 0 {
		return fmt.Errorf("%w: task size %d must be positive", ErrInvalidRun, taskSize)
	}
	if workers < 1 {
		return fmt.Errorf("%w: worker count %d must be at least 1", ErrInvalidRun, workers)
	}

	return nil
}
