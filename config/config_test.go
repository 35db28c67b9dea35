package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{500, 2000}, cfg.Parallel.TaskSizes)
	assert.Equal(t, []int{2, 4}, cfg.Parallel.WorkerCounts)
	assert.Equal(t, []int{5, 20}, cfg.Memory.SizesMB)
	assert.Equal(t, 500000, cfg.CPU.IntegerIterations)
	assert.Equal(t, 2000, cfg.ReferenceTaskSize())
	assert.False(t, cfg.Influx.Enabled())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "parbench.yaml", `
parallel:
  task_sizes: [100, 300]
  worker_counts: [8]
  reference_task_size: 100
cpu:
  prime_limit: 1000
output:
  history_dir: /tmp/history
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, []int{100, 300}, cfg.Parallel.TaskSizes)
	assert.Equal(t, []int{8}, cfg.Parallel.WorkerCounts)
	assert.Equal(t, 100, cfg.ReferenceTaskSize())
	assert.Equal(t, 1000, cfg.CPU.PrimeLimit)
	assert.Equal(t, 50, cfg.CPU.MatrixSmall, "unset keys keep defaults")
	assert.Equal(t, "/tmp/history", cfg.Output.HistoryDir)
	assert.Equal(t, "results", cfg.Output.ResultsDir)
	require.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.ErrorContains(t, err, "read config file")

	bad := writeFile(t, "bad.yaml", "parallel: [unterminated")
	_, err = Load(bad, "")
	assert.ErrorContains(t, err, "parse config YAML")
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "parbench.yaml", "parallel:\n  task_sizes: [100]\n")

	t.Setenv(EnvTaskSizes, "10, 20,30")
	t.Setenv(EnvWorkerCounts, "3")
	t.Setenv(EnvReferenceTaskSize, "20")
	t.Setenv(EnvMetricsFile, "/tmp/parbench.prom")
	t.Setenv(EnvInfluxURL, "http://localhost:8086")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, []int{10, 20, 30}, cfg.Parallel.TaskSizes)
	assert.Equal(t, []int{3}, cfg.Parallel.WorkerCounts)
	assert.Equal(t, 20, cfg.ReferenceTaskSize())
	assert.Equal(t, "/tmp/parbench.prom", cfg.Output.MetricsFile)
	assert.True(t, cfg.Influx.Enabled())
}

func TestDotEnvFile(t *testing.T) {
	// Registered so the variable is cleared again after the test.
	t.Setenv(EnvResultsDir, "")
	require.NoError(t, os.Unsetenv(EnvResultsDir))

	envFile := writeFile(t, ".env", EnvResultsDir+"=from-dotenv\n")

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Output.ResultsDir)

	_, err = Load("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err, "a missing .env file is not an error")
}

func TestBadEnvValue(t *testing.T) {
	t.Setenv(EnvWorkerCounts, "2,four")

	_, err := Load("", "")
	assert.ErrorContains(t, err, EnvWorkerCounts)

	t.Setenv(EnvWorkerCounts, "2")
	t.Setenv(EnvReferenceTaskSize, "big")

	_, err = Load("", "")
	assert.ErrorContains(t, err, EnvReferenceTaskSize)
}

func TestParseInts(t *testing.T) {
	got, err := ParseInts("500,2000")
	require.NoError(t, err)
	assert.Equal(t, []int{500, 2000}, got)

	got, err = ParseInts(" 1 ,, 2 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	_, err = ParseInts(" , ")
	assert.Error(t, err)

	_, err = ParseInts("1,x")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no task sizes", func(c *Config) { c.Parallel.TaskSizes = nil }, "Parallel.TaskSizes is required"},
		{"zero worker count", func(c *Config) { c.Parallel.WorkerCounts = []int{2, 0} }, "Parallel.WorkerCounts[1] must be greater than 0"},
		{"negative reference", func(c *Config) { c.Parallel.ReferenceTaskSize = -1 }, "Parallel.ReferenceTaskSize must not be negative"},
		{"unknown workload", func(c *Config) { c.Parallel.Workload = "fib" }, `unknown workload "fib"`},
		{"no results dir", func(c *Config) { c.Output.ResultsDir = "" }, "Output.ResultsDir is required"},
		{"bad memory size", func(c *Config) { c.Memory.SizesMB = []int{-5} }, "Memory.SizesMB[0] must be greater than 0"},
		{"influx without bucket", func(c *Config) {
			c.Influx.URL = "http://localhost:8086"
			c.Influx.Org = "bench"
		}, "Influx.Bucket is required when URL is set"},
		{"influx bad url", func(c *Config) {
			c.Influx = Influx{URL: "not a url", Org: "o", Bucket: "b"}
		}, "Influx.URL failed \"url\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestReferenceTaskSizeEmpty(t *testing.T) {
	assert.Zero(t, Config{}.ReferenceTaskSize())
}
