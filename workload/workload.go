// Package workload defines the deterministic CPU-bound functions that
// parbench schedules under each execution strategy, plus a seeded data
// generator used by the micro benchmarks.
package workload

import (
	"fmt"
	"sort"
)

// Result is the output of evaluating a workload on one chunk.
type Result struct {
	Start int `json:"start"`
	Size  int `json:"size"`
	Count int `json:"count"`
}

// Workload is a pure function of an integer size.
//
// Evaluate(size) covers the items [0, size). EvaluateRange covers
// [start, start+size) so that chunks of one task can be spread across
// workers; for any split point k, Evaluate(n).Count equals
// EvaluateRange(0, k).Count + EvaluateRange(k, n-k).Count.
//
// Implementations must not capture mutable references: the same value is
// invoked concurrently from several goroutines without synchronization,
// and worker processes rebuild it from its name via Lookup.
type Workload interface {
	Name() string
	Evaluate(size int) Result
	EvaluateRange(start, size int) Result
}

// DefaultName is the workload used when none is configured.
const DefaultName = PrimesName

// Lookup returns the workload registered under name. An empty name
// selects DefaultName.
func Lookup(name string) (Workload, error) {
	switch name {
	case "", PrimesName:
		return Primes{}, nil
	default:
		return nil, fmt.Errorf("unknown workload %q (known: %v)", name, Names())
	}
}

// Names returns the sorted list of known workload names.
func Names() []string {
	names := []string{PrimesName}
	sort.Strings(names)

	return names
}
