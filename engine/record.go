// Package engine runs the prime-counting workload under sequential,
// thread-parallel and process-parallel strategies and aggregates the
// timings into comparable records.
package engine

import (
	"fmt"
	"slices"
)

// Strategy is a concurrency model for executing the workload.
type Strategy int

const (
	StrategySequential Strategy = iota
	StrategyThreaded
	StrategyMultiProcess
)

// Strategies lists every strategy in suite iteration order.
var Strategies = []Strategy{StrategySequential, StrategyThreaded, StrategyMultiProcess}

// String returns the method name used in persisted keys.
func (s Strategy) String() string {
	switch s {
	case StrategySequential:
		return "sequential"
	case StrategyThreaded:
		return "threading"
	case StrategyMultiProcess:
		return "multiprocessing"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies {
		if s.String() == name {
			return s, nil
		}
	}

	return 0, fmt.Errorf("unknown strategy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// RunRecord is one completed benchmark invocation.
type RunRecord struct {
	Strategy       Strategy `json:"strategy"`
	TaskSize       int      `json:"task_size"`
	WorkerCount    int      `json:"worker_count"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	Throughput     float64  `json:"throughput"`
	TotalCount     int      `json:"total_count"`
}

func newRecord(s Strategy, taskSize, workers int, elapsed float64, total int) RunRecord {
	return RunRecord{
		Strategy:       s,
		TaskSize:       taskSize,
		WorkerCount:    workers,
		ElapsedSeconds: elapsed,
		Throughput:     float64(taskSize) / elapsed,
		TotalCount:     total,
	}
}

// Key returns the persisted key of the record, e.g. "threading_2000_4".
// Sequential keys omit the worker count.
func (r RunRecord) Key() string {
	return configKey(r.Strategy, r.TaskSize, r.WorkerCount)
}

func configKey(s Strategy, taskSize, workers int) string {
	if s == StrategySequential {
		return fmt.Sprintf("%s_%d", s, taskSize)
	}

	return fmt.Sprintf("%s_%d_%d", s, taskSize, workers)
}

// KeyedRecord is the persisted shape of a RunRecord. Field names are
// stable for report and chart consumers.
type KeyedRecord struct {
	Method         string  `json:"method"`
	TaskSize       int     `json:"task_size"`
	ThreadCount    int     `json:"thread_count,omitempty"`
	ProcessCount   int     `json:"process_count,omitempty"`
	TimeSeconds    float64 `json:"time_seconds"`
	TasksPerSecond float64 `json:"tasks_per_second"`
	TotalPrimes    int     `json:"total_primes"`
}

// Keyed converts the record to its persisted shape.
func (r RunRecord) Keyed() KeyedRecord {
	k := KeyedRecord{
		Method:         r.Strategy.String(),
		TaskSize:       r.TaskSize,
		TimeSeconds:    r.ElapsedSeconds,
		TasksPerSecond: r.Throughput,
		TotalPrimes:    r.TotalCount,
	}

	switch r.Strategy {
	case StrategyThreaded:
		k.ThreadCount = r.WorkerCount
	case StrategyMultiProcess:
		k.ProcessCount = r.WorkerCount
	}

	return k
}

// Configuration identifies one (strategy, task size, worker count) run.
type Configuration struct {
	Strategy    Strategy `json:"strategy"`
	TaskSize    int      `json:"task_size"`
	WorkerCount int      `json:"worker_count"`
}

// Key returns the persisted key the configuration's record would have.
func (c Configuration) Key() string {
	return configKey(c.Strategy, c.TaskSize, c.WorkerCount)
}

// Failure records a configuration whose run failed. Failed
// configurations have no RunRecord.
type Failure struct {
	Configuration
	Error string `json:"error"`
}

// SuiteResult is the ordered outcome of one suite run.
type SuiteResult struct {
	Records  []RunRecord `json:"records"`
	Failures []Failure   `json:"failures,omitempty"`
}

// Keyed returns the records indexed by their persisted key.
func (r SuiteResult) Keyed() map[string]KeyedRecord {
	out := make(map[string]KeyedRecord, len(r.Records))
	for _, rec := range r.Records {
		out[rec.Key()] = rec.Keyed()
	}

	return out
}

// KeyedSuite is the persisted shape of a SuiteResult: the keyed records
// plus the error of every failed configuration under the key its record
// would have had.
type KeyedSuite struct {
	Results map[string]KeyedRecord `json:"results"`
	Failed  map[string]string      `json:"failed,omitempty"`
}

// KeyedSuite converts the result to its persisted shape.
func (r SuiteResult) KeyedSuite() KeyedSuite {
	out := KeyedSuite{Results: r.Keyed()}
	if len(r.Failures) == 0 {
		return out
	}

	out.Failed = make(map[string]string, len(r.Failures))
	for _, f := range r.Failures {
		out.Failed[f.Key()] = f.Error
	}

	return out
}

// ByStrategy returns the records of one strategy in iteration order.
func (r SuiteResult) ByStrategy(s Strategy) []RunRecord {
	var out []RunRecord
	for _, rec := range r.Records {
		if rec.Strategy == s {
			out = append(out, rec)
		}
	}

	return out
}

// Find returns the record for a configuration. Sequential lookups ignore
// workers.
func (r SuiteResult) Find(s Strategy, taskSize, workers int) (RunRecord, bool) {
	for _, rec := range r.Records {
		if rec.Strategy != s || rec.TaskSize != taskSize {
			continue
		}
		if s == StrategySequential || rec.WorkerCount == workers {
			return rec, true
		}
	}

	return RunRecord{}, false
}

// Failed reports whether the configuration was recorded as failed.
func (r SuiteResult) Failed(c Configuration) bool {
	for _, f := range r.Failures {
		if f.Configuration == c {
			return true
		}
	}

	return false
}

// TaskSizes returns the distinct task sizes present, ascending.
func (r SuiteResult) TaskSizes() []int {
	var sizes []int
	for _, rec := range r.Records {
		if !slices.Contains(sizes, rec.TaskSize) {
			sizes = append(sizes, rec.TaskSize)
		}
	}

	slices.Sort(sizes)

	return sizes
}
