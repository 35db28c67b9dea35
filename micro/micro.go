// Package micro holds the single-shot CPU and memory micro benchmarks that
// accompany the parallel suite. Each measurement runs once, without
// warm-up, and uses the same elapsed-time floor as the engine.
package micro

import (
	"time"

	"github.com/weiihann/parbench/engine"
)

// Measurement is the outcome of one micro benchmark.
type Measurement struct {
	Operation   string  `json:"operation"`
	Parameter   string  `json:"parameter"`
	Value       int     `json:"value"`
	TimeSeconds float64 `json:"time_seconds"`
	Rate        float64 `json:"rate"`
	RateUnit    string  `json:"rate_unit"`

	// PrimesFound is set by the prime calculation only.
	PrimesFound int `json:"primes_found,omitempty"`
}

// Result is an ordered list of keyed measurements.
type Result struct {
	Keys         []string               `json:"keys"`
	Measurements map[string]Measurement `json:"measurements"`
}

func (r *Result) add(key string, m Measurement) {
	if r.Measurements == nil {
		r.Measurements = make(map[string]Measurement)
	}

	r.Keys = append(r.Keys, key)
	r.Measurements[key] = m
}

// Get returns the measurement stored under key.
func (r Result) Get(key string) (Measurement, bool) {
	m, ok := r.Measurements[key]

	return m, ok
}

func measure(fn func()) float64 {
	start := time.Now()
	fn()

	return engine.ClampSeconds(time.Since(start))
}
