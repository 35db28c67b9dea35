package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/parbench/engine"
	"github.com/weiihann/parbench/sysinfo"
)

func sampleResult() engine.SuiteResult {
	return engine.SuiteResult{
		Records: []engine.RunRecord{
			{Strategy: engine.StrategySequential, TaskSize: 500, WorkerCount: 1, ElapsedSeconds: 0.02, Throughput: 25000, TotalCount: 95},
			{Strategy: engine.StrategyThreaded, TaskSize: 500, WorkerCount: 2, ElapsedSeconds: 0.01, Throughput: 50000, TotalCount: 95},
			{Strategy: engine.StrategyMultiProcess, TaskSize: 500, WorkerCount: 2, ElapsedSeconds: 0.005, Throughput: 100000, TotalCount: 95},
		},
		Failures: []engine.Failure{{
			Configuration: engine.Configuration{Strategy: engine.StrategyMultiProcess, TaskSize: 500, WorkerCount: 4},
			Error:         "multiprocessing worker 3 (chunk 375+125): exit status 1",
		}},
	}
}

func TestNewRun(t *testing.T) {
	results := sampleResult()
	summary := engine.Summarize(results, 0)

	run := NewRun(sysinfo.Info{OS: "linux", CPUCores: 8}, results, summary)

	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), run.Timestamp, time.Minute)
	assert.Len(t, run.Parallel, 3)
	assert.Contains(t, run.Parallel, "multiprocessing_500_2")
	assert.Equal(t, "4.00x", run.Summary.SpeedupLabel())
	assert.Equal(t, results, run.SuiteResult())

	other := NewRun(sysinfo.Info{}, results, summary)
	assert.NotEqual(t, run.ID, other.ID)
}

func TestSaveJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

	path, err := saveJSONAt(dir, "parallel_benchmark", at, sampleResult().Keyed())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "parallel_benchmark_20240309_140507.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]engine.KeyedRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded["threading_500_2"].ThreadCount)
	assert.Equal(t, 95, decoded["sequential_500"].TotalPrimes)
}

func TestSaveJSONUsesCurrentTime(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveJSON(dir, "run", map[string]int{"a": 1})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "run_*.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, matches)
}

func TestSaveJSONErrors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := SaveJSON(filepath.Join(blocker, "sub"), "run", 1)
	assert.ErrorContains(t, err, "create output directory")

	_, err = SaveJSON(t.TempDir(), "run", func() {})
	assert.ErrorContains(t, err, "encode run")
}

func runAt(id string, at time.Time) Run {
	return Run{
		ID:        id,
		Timestamp: at,
		Records:   sampleResult().Records,
		Summary:   engine.Summarize(sampleResult(), 0),
	}
}

func TestHistoryListNewestFirst(t *testing.T) {
	h, err := OpenMemoryHistory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, h.Save(runAt(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := h.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].ID)
	assert.Equal(t, "second", runs[1].ID)
	assert.Equal(t, "first", runs[2].ID)

	runs, err = h.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].ID)

	assert.Equal(t, engine.StrategyMultiProcess, runs[0].Records[2].Strategy)
	assert.Equal(t, "4.00x", runs[0].Summary.SpeedupLabel())
}

func TestHistoryEmpty(t *testing.T) {
	h, err := OpenMemoryHistory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	runs, err := h.List(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestHistoryPersists(t *testing.T) {
	dir := t.TempDir()

	h, err := OpenHistory(dir, nil)
	require.NoError(t, err)
	require.NoError(t, h.Save(runAt("kept", time.Now().UTC())))
	require.NoError(t, h.Close())

	h, err = OpenHistory(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	runs, err := h.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "kept", runs[0].ID)
}

func TestOpenHistoryRequiresDir(t *testing.T) {
	_, err := OpenHistory("", nil)
	assert.Error(t, err)
}
