// Package config holds the explicit parbench configuration. Values come
// from built-in defaults, an optional YAML file and PARBENCH_* environment
// variables (optionally read from a .env file), in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/weiihann/parbench/workload"
)

// Config is the full parbench configuration.
type Config struct {
	Parallel Parallel `yaml:"parallel"`
	CPU      CPU      `yaml:"cpu"`
	Memory   Memory   `yaml:"memory"`
	Output   Output   `yaml:"output"`
	Influx   Influx   `yaml:"influx"`
}

// Parallel configures the parallel suite.
type Parallel struct {
	TaskSizes         []int  `yaml:"task_sizes" validate:"required,min=1,dive,gt=0"`
	WorkerCounts      []int  `yaml:"worker_counts" validate:"required,min=1,dive,gt=0"`
	ReferenceTaskSize int    `yaml:"reference_task_size" validate:"gte=0"`
	Workload          string `yaml:"workload" validate:"required,workload"`
	// WorkerBinary runs process workers; empty means this executable.
	WorkerBinary string `yaml:"worker_binary"`
}

// CPU sizes the CPU micro benchmarks.
type CPU struct {
	IntegerIterations int `yaml:"integer_iterations" validate:"gt=0"`
	MatrixSmall       int `yaml:"matrix_small" validate:"gt=0"`
	MatrixMedium      int `yaml:"matrix_medium" validate:"gt=0"`
	PrimeLimit        int `yaml:"prime_limit" validate:"gt=0"`
}

// Memory sizes the memory micro benchmarks.
type Memory struct {
	SizesMB []int `yaml:"sizes_mb" validate:"dive,gt=0"`
	Seed    int64 `yaml:"seed"`
}

// Output names where artifacts are written. Empty HistoryDir and
// MetricsFile disable those sinks.
type Output struct {
	ResultsDir  string `yaml:"results_dir" validate:"required"`
	ReportsDir  string `yaml:"reports_dir" validate:"required"`
	HistoryDir  string `yaml:"history_dir"`
	MetricsFile string `yaml:"metrics_file"`
}

// Influx configures the optional InfluxDB sink. It is enabled by URL.
type Influx struct {
	URL    string `yaml:"url" validate:"omitempty,url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org" validate:"required_with=URL"`
	Bucket string `yaml:"bucket" validate:"required_with=URL"`
}

// Enabled reports whether points should be written to InfluxDB.
func (i Influx) Enabled() bool {
	return i.URL != ""
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Parallel: Parallel{
			TaskSizes:    []int{500, 2000},
			WorkerCounts: []int{2, 4},
			Workload:     workload.DefaultName,
		},
		CPU: CPU{
			IntegerIterations: 500000,
			MatrixSmall:       50,
			MatrixMedium:      150,
			PrimeLimit:        5000,
		},
		Memory: Memory{
			SizesMB: []int{5, 20},
			Seed:    42,
		},
		Output: Output{
			ResultsDir: "results",
			ReportsDir: "reports",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the .env file at envFile (skipped when missing) and the
// process environment. The result is not validated; flags may still
// override it before Validate is called.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config YAML: %w", err)
		}
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ReferenceTaskSize resolves the speedup baseline size: the configured
// value, or the largest task size when unset.
func (c Config) ReferenceTaskSize() int {
	if c.Parallel.ReferenceTaskSize > 0 {
		return c.Parallel.ReferenceTaskSize
	}

	if len(c.Parallel.TaskSizes) == 0 {
		return 0
	}

	return slices.Max(c.Parallel.TaskSizes)
}
