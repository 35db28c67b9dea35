package engine

import (
	"context"
	"time"

	"github.com/weiihann/parbench/harness"
)

// ProcessRunner evaluates one chunk per OS process. Workers share no
// memory; each receives its chunk and returns its count as JSON.
type ProcessRunner struct {
	workload string
	launcher *harness.Launcher
}

// NewProcessRunner creates a ProcessRunner for the named workload. The
// launcher's command must speak the harness protocol.
func NewProcessRunner(workloadName string, launcher *harness.Launcher) *ProcessRunner {
	return &ProcessRunner{
		workload: workloadName,
		launcher: launcher,
	}
}

// Strategy implements Runner.
func (r *ProcessRunner) Strategy() Strategy { return StrategyMultiProcess }

// Run implements Runner. Every started worker is waited for before Run
// returns. If a worker cannot be started, those already running are
// killed and reaped.
func (r *ProcessRunner) Run(ctx context.Context, taskSize, workers int) (RunRecord, error) {
	if err := validateRun(taskSize, workers); err != nil {
		return RunRecord{}, err
	}

	chunks := Chunks(taskSize, workers)

	start := time.Now()

	procs := make([]*harness.Process, 0, len(chunks))
	for i, c := range chunks {
		p, err := r.launcher.Start(ctx, i, harness.Request{
			Workload: r.workload,
			Start:    c.Start,
			Size:     c.Size,
		})
		if err != nil {
			for _, started := range procs {
				started.Kill()
				_, _ = started.Wait()
			}

			return RunRecord{}, &WorkerError{Strategy: StrategyMultiProcess, Worker: i, Chunk: c, Err: err}
		}

		procs = append(procs, p)
	}

	var (
		total    int
		firstErr error
	)

	for i, p := range procs {
		res, err := p.Wait()
		if err != nil {
			if firstErr == nil {
				firstErr = &WorkerError{Strategy: StrategyMultiProcess, Worker: i, Chunk: chunks[i], Err: err}
			}

			continue
		}

		total += res.Count
	}

	elapsed := ClampSeconds(time.Since(start))

	if firstErr != nil {
		return RunRecord{}, firstErr
	}

	return newRecord(StrategyMultiProcess, taskSize, workers, elapsed, total), nil
}
