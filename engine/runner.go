package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weiihann/parbench/workload"
)

// Runner executes the workload for one configuration under a single
// strategy. The timed interval spans worker setup, evaluation and result
// collection, so parallel runs pay for spinning up their workers.
type Runner interface {
	Strategy() Strategy
	Run(ctx context.Context, taskSize, workers int) (RunRecord, error)
}

// SequentialRunner evaluates the whole task on the calling goroutine.
type SequentialRunner struct {
	workload workload.Workload
}

// NewSequentialRunner creates a SequentialRunner.
func NewSequentialRunner(w workload.Workload) *SequentialRunner {
	return &SequentialRunner{workload: w}
}

// Strategy implements Runner.
func (r *SequentialRunner) Strategy() Strategy { return StrategySequential }

// Run implements Runner. The worker count is ignored and recorded as 1.
func (r *SequentialRunner) Run(_ context.Context, taskSize, _ int) (RunRecord, error) {
	if err := validateRun(taskSize, 1); err != nil {
		return RunRecord{}, err
	}

	start := time.Now()
	result, err := evaluate(r.workload, Chunk{Size: taskSize})
	elapsed := ClampSeconds(time.Since(start))

	if err != nil {
		return RunRecord{}, &WorkerError{
			Strategy: StrategySequential,
			Chunk:    Chunk{Size: taskSize},
			Err:      err,
		}
	}

	return newRecord(StrategySequential, taskSize, 1, elapsed, result.Count), nil
}

// ThreadedRunner evaluates one chunk per goroutine in a shared address
// space.
type ThreadedRunner struct {
	workload workload.Workload
}

// NewThreadedRunner creates a ThreadedRunner.
func NewThreadedRunner(w workload.Workload) *ThreadedRunner {
	return &ThreadedRunner{workload: w}
}

// Strategy implements Runner.
func (r *ThreadedRunner) Strategy() Strategy { return StrategyThreaded }

// Run implements Runner. Counts are summed only after every goroutine
// has returned, even when one of them failed.
func (r *ThreadedRunner) Run(_ context.Context, taskSize, workers int) (RunRecord, error) {
	if err := validateRun(taskSize, workers); err != nil {
		return RunRecord{}, err
	}

	chunks := Chunks(taskSize, workers)
	results := make([]workload.Result, len(chunks))

	start := time.Now()

	// A plain Group has no shared context: a failing worker cannot cut the
	// others short, and Wait is the barrier.
	var g errgroup.Group
	for i, c := range chunks {
		g.Go(func() error {
			res, err := evaluate(r.workload, c)
			if err != nil {
				return &WorkerError{Strategy: StrategyThreaded, Worker: i, Chunk: c, Err: err}
			}
			results[i] = res

			return nil
		})
	}

	err := g.Wait()
	total := sumCounts(results)
	elapsed := ClampSeconds(time.Since(start))

	if err != nil {
		return RunRecord{}, err
	}

	return newRecord(StrategyThreaded, taskSize, workers, elapsed, total), nil
}

// evaluate runs the workload on one chunk, turning a panic into an error.
func evaluate(w workload.Workload, c Chunk) (res workload.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	return w.EvaluateRange(c.Start, c.Size), nil
}

func sumCounts(results []workload.Result) int {
	total := 0
	for _, r := range results {
		total += r.Count
	}

	return total
}
