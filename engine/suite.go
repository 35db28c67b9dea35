package engine

import (
	"context"
	"fmt"
	"log/slog"
)

// ProgressFunc is called after each configuration finishes. err is the
// run's error, nil on success.
type ProgressFunc func(done, total int, c Configuration, err error)

// Runners holds one Runner per strategy. A nil runner removes its
// strategy from the suite.
type Runners struct {
	Sequential   Runner
	Threaded     Runner
	MultiProcess Runner
}

func (r Runners) forStrategy(s Strategy) Runner {
	switch s {
	case StrategySequential:
		return r.Sequential
	case StrategyThreaded:
		return r.Threaded
	case StrategyMultiProcess:
		return r.MultiProcess
	default:
		return nil
	}
}

// Suite runs every configured combination, one run at a time.
type Suite struct {
	runners  Runners
	logger   *slog.Logger
	progress ProgressFunc
}

// Option configures a Suite.
type Option func(*Suite)

// WithProgress registers a callback invoked after every configuration.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Suite) {
		s.progress = fn
	}
}

// NewSuite creates a Suite over the given runners.
func NewSuite(runners Runners, logger *slog.Logger, opts ...Option) *Suite {
	s := &Suite{
		runners: runners,
		logger:  logger.With(slog.String("component", "suite")),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Plan returns the configurations Run executes, in order: every
// sequential run, then threaded runs (task size outer, worker count
// inner), then multi-process runs with the same nesting.
func (s *Suite) Plan(taskSizes, workerCounts []int) []Configuration {
	var plan []Configuration

	for _, strategy := range Strategies {
		if s.runners.forStrategy(strategy) == nil {
			continue
		}

		for _, size := range taskSizes {
			if strategy == StrategySequential {
				plan = append(plan, Configuration{Strategy: strategy, TaskSize: size, WorkerCount: 1})

				continue
			}

			for _, workers := range workerCounts {
				plan = append(plan, Configuration{Strategy: strategy, TaskSize: size, WorkerCount: workers})
			}
		}
	}

	return plan
}

// Run executes each configuration exactly once. A failed configuration
// is logged and recorded in SuiteResult.Failures; the suite continues.
// Run returns an error only for invalid inputs or when ctx is done
// before the suite completes, together with the records gathered so far.
func (s *Suite) Run(ctx context.Context, taskSizes, workerCounts []int) (SuiteResult, error) {
	if err := validateSuite(taskSizes, workerCounts); err != nil {
		return SuiteResult{}, err
	}

	plan := s.Plan(taskSizes, workerCounts)
	result := SuiteResult{Records: make([]RunRecord, 0, len(plan))}

	s.logger.InfoContext(ctx, "starting suite",
		slog.Any("task_sizes", taskSizes),
		slog.Any("worker_counts", workerCounts),
		slog.Int("configurations", len(plan)),
	)

	for i, c := range plan {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("suite interrupted after %d of %d configurations: %w", i, len(plan), err)
		}

		logger := s.logger.With(
			slog.String("strategy", c.Strategy.String()),
			slog.Int("task_size", c.TaskSize),
			slog.Int("workers", c.WorkerCount),
		)

		rec, err := s.runners.forStrategy(c.Strategy).Run(ctx, c.TaskSize, c.WorkerCount)
		if err != nil {
			logger.WarnContext(ctx, "configuration failed", slog.String("error", err.Error()))
			result.Failures = append(result.Failures, Failure{Configuration: c, Error: err.Error()})
		} else {
			logger.InfoContext(ctx, "configuration finished",
				slog.Float64("elapsed_seconds", rec.ElapsedSeconds),
				slog.Int("total_count", rec.TotalCount),
			)
			result.Records = append(result.Records, rec)
		}

		if s.progress != nil {
			s.progress(i+1, len(plan), c, err)
		}
	}

	s.logger.InfoContext(ctx, "suite finished",
		slog.Int("records", len(result.Records)),
		slog.Int("failures", len(result.Failures)),
	)

	return result, nil
}

func validateSuite(taskSizes, workerCounts []int) error {
	if len(taskSizes) == 0 {
		return fmt.Errorf("%w: no task sizes", ErrInvalidRun)
	}

	for _, size := range taskSizes {
		if size <= 0 {
			return fmt.Errorf("%w: task size %d must be positive", ErrInvalidRun, size)
		}
	}

	for _, workers := range workerCounts {
		if workers < 1 {
			return fmt.Errorf("%w: worker count %d must be at least 1", ErrInvalidRun, workers)
		}
	}

	return nil
}
