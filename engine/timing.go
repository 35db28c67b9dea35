package engine

import "time"

// MinElapsedSeconds is the floor applied to every measured interval so
// that throughput never divides by zero.
const MinElapsedSeconds = 1e-4

// ClampSeconds converts d to seconds, clamped to MinElapsedSeconds.
func ClampSeconds(d time.Duration) float64 {
	return max(d.Seconds(), MinElapsedSeconds)
}
