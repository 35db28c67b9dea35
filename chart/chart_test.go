package chart

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/parbench/engine"
	"github.com/weiihann/parbench/micro"
)

func rec(s engine.Strategy, size, workers int, secs float64) engine.RunRecord {
	return engine.RunRecord{Strategy: s, TaskSize: size, WorkerCount: workers, ElapsedSeconds: secs}
}

func sampleResult() engine.SuiteResult {
	return engine.SuiteResult{Records: []engine.RunRecord{
		rec(engine.StrategySequential, 500, 1, 0.1),
		rec(engine.StrategySequential, 2000, 1, 1.0),
		rec(engine.StrategyThreaded, 500, 2, 0.05),
		rec(engine.StrategyThreaded, 2000, 4, 0.4),
		rec(engine.StrategyThreaded, 2000, 2, 0.6),
		rec(engine.StrategyMultiProcess, 2000, 2, 0.5),
		rec(engine.StrategyMultiProcess, 2000, 4, 0.3),
	}}
}

func TestRenderIsWellFormedSVG(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Render(&sb, sampleResult()))

	svg := sb.String()
	requireWellFormed(t, svg)

	assert.Contains(t, svg, "Task Size: 2000 primes")
	assert.Equal(t, 1, strings.Count(svg, `class="baseline"`))
	assert.Equal(t, 2, strings.Count(svg, `class="series"`))
	assert.Equal(t, 3, strings.Count(svg, `class="legend"`))
	assert.Equal(t, 2, strings.Count(svg, `class="xtick"`))
	assert.Equal(t, 2, strings.Count(svg, "<circle"), "threaded points at the largest size")
	assert.Equal(t, 2, strings.Count(svg, "<rect x="), "multi-process points")
}

func TestBuildPlotScaling(t *testing.T) {
	p, err := buildPlot(sampleResult())
	require.NoError(t, err)

	assert.Equal(t, 2000, p.TaskSize)
	require.NotNil(t, p.Baseline)

	// yMax is 1.1s, so the 1.0s baseline sits 1/1.1 of the way up.
	want := p.Bottom - (1.0/1.1)*(p.Bottom-p.Top)
	assert.InDelta(t, want, *p.Baseline, 1e-9)

	require.Len(t, p.Series, 2)
	threaded := p.Series[0]
	require.Len(t, threaded.Points, 2)
	assert.Equal(t, 2, threaded.Points[0].Workers, "points are ordered by workers")
	assert.InDelta(t, p.Left, threaded.Points[0].X, 1e-9)
	assert.InDelta(t, p.Right, threaded.Points[1].X, 1e-9)
	assert.True(t, strings.HasPrefix(threaded.Path, "M"))
	assert.Contains(t, threaded.Path, " L")
}

func TestBuildPlotWithoutBaseline(t *testing.T) {
	results := engine.SuiteResult{Records: []engine.RunRecord{
		rec(engine.StrategyMultiProcess, 100, 3, 0.2),
	}}

	p, err := buildPlot(results)
	require.NoError(t, err)

	assert.Nil(t, p.Baseline)
	require.Len(t, p.Series, 1)
	assert.True(t, p.Series[0].Square)
	assert.InDelta(t, (p.Left+p.Right)/2, p.Series[0].Points[0].X, 1e-9, "a single worker count is centred")
	require.Len(t, p.Legend, 1)
}

func TestRenderNoData(t *testing.T) {
	var sb strings.Builder

	err := Render(&sb, engine.SuiteResult{})
	assert.True(t, errors.Is(err, ErrNoData))
	assert.Empty(t, sb.String())
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")

	path, err := WriteFile(dir, sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<svg"))

	_, err = WriteFile(t.TempDir(), engine.SuiteResult{})
	assert.ErrorIs(t, err, ErrNoData)
}

func cpuResult() micro.Result {
	return micro.Result{
		Keys: []string{micro.KeyIntegerOps, micro.KeyMatrixSmall, micro.KeyMatrixMedium, micro.KeyPrimes},
		Measurements: map[string]micro.Measurement{
			micro.KeyIntegerOps:   {Operation: "integer_arithmetic", Value: 500000, Rate: 2e8},
			micro.KeyMatrixSmall:  {Operation: "matrix_multiplication", Value: 50, Rate: 1e9},
			micro.KeyMatrixMedium: {Operation: "matrix_multiplication", Value: 150, Rate: 2e9},
			micro.KeyPrimes:       {Operation: "prime_calculation", Value: 5000, Rate: 1e7},
		},
	}
}

func memoryResult() micro.Result {
	r := micro.Result{Measurements: map[string]micro.Measurement{}}
	for _, m := range []struct {
		key string
		m   micro.Measurement
	}{
		{"sequential_access_5mb", micro.Measurement{Operation: "sequential_access", Value: 5, Rate: 4000}},
		{"random_access_5mb", micro.Measurement{Operation: "random_access", Value: 5, Rate: 900}},
		{"sequential_access_20mb", micro.Measurement{Operation: "sequential_access", Value: 20, Rate: 8000}},
	} {
		r.Keys = append(r.Keys, m.key)
		r.Measurements[m.key] = m.m
	}

	return r
}

func requireWellFormed(t *testing.T, svg string) {
	t.Helper()

	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			return
		}
	}
}

func TestRenderCPU(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, RenderCPU(&sb, cpuResult()))

	svg := sb.String()
	requireWellFormed(t, svg)

	assert.Equal(t, 2, strings.Count(svg, `class="panel"`))
	assert.Equal(t, 3, strings.Count(svg, `class="bar"`))
	assert.Contains(t, svg, "CPU Integer Performance")
	assert.Contains(t, svg, "Small (50)")
	assert.Contains(t, svg, "Medium (150)")
	assert.NotContains(t, svg, "prime", "prime calculation is not charted")
}

func TestBuildPanelScaling(t *testing.T) {
	p := buildPanel("t", "y", "blue", marginLeft, []string{"a", "b"}, []float64{1, 2})

	require.Len(t, p.Bars, 2)
	plotHeight := p.Bottom - p.Top

	// The tallest bar keeps 20% headroom.
	assert.InDelta(t, plotHeight/1.2, p.Bars[1].H, 1e-9)
	assert.InDelta(t, p.Bars[1].H/2, p.Bars[0].H, 1e-9)
	assert.InDelta(t, p.Bottom, p.Bars[0].Y+p.Bars[0].H, 1e-9)
	assert.Less(t, p.Bars[0].X+p.Bars[0].W, p.Bars[1].X, "bars do not overlap")
	assert.Len(t, p.YTicks, yTicks+1)
}

func TestRenderMemoryUsesSequentialAccess(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, RenderMemory(&sb, memoryResult()))

	svg := sb.String()
	requireWellFormed(t, svg)

	assert.Equal(t, 1, strings.Count(svg, `class="panel"`))
	assert.Equal(t, 2, strings.Count(svg, `class="bar"`))
	assert.Contains(t, svg, ">5MB<")
	assert.Contains(t, svg, ">20MB<")
	assert.Contains(t, svg, "Sequential Memory Access Performance")
}

func TestMicroChartsNoData(t *testing.T) {
	var sb strings.Builder

	assert.ErrorIs(t, RenderCPU(&sb, micro.Result{}), ErrNoData)
	assert.ErrorIs(t, RenderMemory(&sb, micro.Result{}), ErrNoData)
	assert.Empty(t, sb.String())
}

func TestWriteMicroFiles(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteCPUFile(dir, cpuResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, CPUFileName), path)

	path, err = WriteMemoryFile(dir, memoryResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, MemoryFileName), path)

	_, err = WriteMemoryFile(dir, micro.Result{})
	assert.ErrorIs(t, err, ErrNoData)
	assert.FileExists(t, filepath.Join(dir, MemoryFileName), "a failed render keeps the previous file")
}
