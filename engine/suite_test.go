package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRunner wraps a Runner and fails one configuration.
type failingRunner struct {
	Runner
	taskSize int
	workers  int
}

func (f failingRunner) Run(ctx context.Context, taskSize, workers int) (RunRecord, error) {
	if taskSize == f.taskSize && workers == f.workers {
		return RunRecord{}, &WorkerError{
			Strategy: f.Strategy(),
			Err:      errors.New("injected"),
		}
	}

	return f.Runner.Run(ctx, taskSize, workers)
}

func keys(plan []Configuration) []string {
	out := make([]string, len(plan))
	for i, c := range plan {
		out[i] = c.Key()
	}

	return out
}

func TestPlanOrder(t *testing.T) {
	s := NewSuite(newTestRunners(), discardLogger())

	got := keys(s.Plan([]int{500, 2000}, []int{2, 4}))
	want := []string{
		"sequential_500",
		"sequential_2000",
		"threading_500_2",
		"threading_500_4",
		"threading_2000_2",
		"threading_2000_4",
		"multiprocessing_500_2",
		"multiprocessing_500_4",
		"multiprocessing_2000_2",
		"multiprocessing_2000_4",
	}

	assert.Equal(t, want, got)
}

func TestPlanSkipsMissingRunner(t *testing.T) {
	runners := newTestRunners()
	runners.MultiProcess = nil

	plan := NewSuite(runners, discardLogger()).Plan([]int{500}, []int{2})
	assert.Equal(t, []string{"sequential_500", "threading_500_2"}, keys(plan))
}

func TestRunSuiteEndToEnd(t *testing.T) {
	s := NewSuite(newTestRunners(), discardLogger())

	result, err := s.Run(context.Background(), []int{500}, []int{2})
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	assert.Empty(t, result.Failures)

	for i, want := range Strategies {
		rec := result.Records[i]
		assert.Equal(t, want, rec.Strategy)
		assert.Equal(t, 500, rec.TaskSize)
		assert.Greater(t, rec.ElapsedSeconds, 0.0)
	}

	assert.Equal(t, 95, result.Records[0].TotalCount)
	assert.Equal(t, 2, result.Records[1].WorkerCount)
	assert.Equal(t, 2, result.Records[2].WorkerCount)

	keyed := result.Keyed()
	assert.Contains(t, keyed, "sequential_500")
	assert.Contains(t, keyed, "threading_500_2")
	assert.Contains(t, keyed, "multiprocessing_500_2")
}

func TestRunSuiteContinuesAfterFailure(t *testing.T) {
	runners := newTestRunners()
	runners.Threaded = failingRunner{Runner: runners.Threaded, taskSize: 500, workers: 2}

	var calls int
	s := NewSuite(runners, discardLogger(), WithProgress(func(done, total int, _ Configuration, _ error) {
		calls++
		assert.Equal(t, calls, done)
		assert.Equal(t, 6, total)
	}))

	result, err := s.Run(context.Background(), []int{500, 1000}, []int{2})
	require.NoError(t, err)

	assert.Len(t, result.Records, 5)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 6, calls, "progress must fire for every configuration")

	failed := Configuration{Strategy: StrategyThreaded, TaskSize: 500, WorkerCount: 2}
	assert.Equal(t, failed, result.Failures[0].Configuration)
	assert.Contains(t, result.Failures[0].Error, "injected")
	assert.True(t, result.Failed(failed))

	_, found := result.Find(StrategyThreaded, 500, 2)
	assert.False(t, found, "failed configuration must be absent, not zero-valued")
	assert.NotContains(t, result.Keyed(), "threading_500_2")

	_, found = result.Find(StrategyThreaded, 1000, 2)
	assert.True(t, found)
	_, found = result.Find(StrategyMultiProcess, 500, 2)
	assert.True(t, found)
}

func TestRunSuiteInvalidInput(t *testing.T) {
	s := NewSuite(newTestRunners(), discardLogger())

	_, err := s.Run(context.Background(), nil, []int{2})
	assert.ErrorIs(t, err, ErrInvalidRun)

	_, err = s.Run(context.Background(), []int{500, 0}, []int{2})
	assert.ErrorIs(t, err, ErrInvalidRun)

	_, err = s.Run(context.Background(), []int{500}, []int{0})
	assert.ErrorIs(t, err, ErrInvalidRun)
}

func TestRunSuiteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewSuite(newTestRunners(), discardLogger()).Run(ctx, []int{500}, []int{2})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Records)
}
