package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvTaskSizes         = "PARBENCH_TASK_SIZES"
	EnvWorkerCounts      = "PARBENCH_WORKER_COUNTS"
	EnvReferenceTaskSize = "PARBENCH_REFERENCE_TASK_SIZE"
	EnvResultsDir        = "PARBENCH_RESULTS_DIR"
	EnvReportsDir        = "PARBENCH_REPORTS_DIR"
	EnvHistoryDir        = "PARBENCH_HISTORY_DIR"
	EnvMetricsFile       = "PARBENCH_METRICS_FILE"
	EnvInfluxURL         = "PARBENCH_INFLUX_URL"
	EnvInfluxToken       = "PARBENCH_INFLUX_TOKEN"
	EnvInfluxOrg         = "PARBENCH_INFLUX_ORG"
	EnvInfluxBucket      = "PARBENCH_INFLUX_BUCKET"
)

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	ints := []struct {
		key string
		dst *[]int
	}{
		{EnvTaskSizes, &cfg.Parallel.TaskSizes},
		{EnvWorkerCounts, &cfg.Parallel.WorkerCounts},
	}

	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok {
			continue
		}

		parsed, err := ParseInts(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}

		*e.dst = parsed
	}

	if v, ok := lookup(EnvReferenceTaskSize); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReferenceTaskSize, err)
		}

		cfg.Parallel.ReferenceTaskSize = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvResultsDir, &cfg.Output.ResultsDir},
		{EnvReportsDir, &cfg.Output.ReportsDir},
		{EnvHistoryDir, &cfg.Output.HistoryDir},
		{EnvMetricsFile, &cfg.Output.MetricsFile},
		{EnvInfluxURL, &cfg.Influx.URL},
		{EnvInfluxToken, &cfg.Influx.Token},
		{EnvInfluxOrg, &cfg.Influx.Org},
		{EnvInfluxBucket, &cfg.Influx.Bucket},
	}

	for _, e := range strs {
		if v, ok := lookup(e.key); ok {
			*e.dst = v
		}
	}

	return nil
}

// ParseInts parses a comma separated list of integers such as "500,2000".
func ParseInts(s string) ([]int, error) {
	var out []int

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", field)
		}

		out = append(out, n)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("empty integer list %q", s)
	}

	return out, nil
}
