package engine

import (
	"fmt"
	"slices"
)

// SpeedupUnavailable is the label used when speedup cannot be computed.
const SpeedupUnavailable = "N/A"

// Summary ranks strategies over a SuiteResult.
type Summary struct {
	BestThreaded      *RunRecord `json:"best_threaded"`
	BestMultiProcess  *RunRecord `json:"best_multiprocess"`
	ReferenceTaskSize int        `json:"reference_task_size"`

	// Speedup is nil when the sequential baseline or a multi-process
	// record at the reference size is missing.
	Speedup *float64 `json:"speedup"`
}

// SpeedupLabel formats Speedup as "4.00x", or "N/A".
func (s Summary) SpeedupLabel() string {
	if s.Speedup == nil {
		return SpeedupUnavailable
	}

	return fmt.Sprintf("%.2fx", *s.Speedup)
}

// Summarize picks the fastest threaded and multi-process records and
// computes the speedup of the best multi-process run at referenceTaskSize
// over the sequential run at the same size. A referenceTaskSize <= 0
// selects the largest task size present.
//
// Ties on elapsed time keep the record that came first.
func Summarize(results SuiteResult, referenceTaskSize int) Summary {
	if referenceTaskSize <= 0 {
		if sizes := results.TaskSizes(); len(sizes) > 0 {
			referenceTaskSize = slices.Max(sizes)
		}
	}

	summary := Summary{
		BestThreaded:      fastest(results.Records, StrategyThreaded, 0),
		BestMultiProcess:  fastest(results.Records, StrategyMultiProcess, 0),
		ReferenceTaskSize: referenceTaskSize,
	}

	seq, ok := results.Find(StrategySequential, referenceTaskSize, 1)
	mp := fastest(results.Records, StrategyMultiProcess, referenceTaskSize)

	if ok && mp != nil {
		speedup := seq.ElapsedSeconds / mp.ElapsedSeconds
		summary.Speedup = &speedup
	}

	return summary
}

// fastest returns the record of strategy s with the smallest elapsed
// time, restricted to taskSize when it is positive.
func fastest(records []RunRecord, s Strategy, taskSize int) *RunRecord {
	var best *RunRecord

	for i := range records {
		rec := &records[i]
		if rec.Strategy != s || (taskSize > 0 && rec.TaskSize != taskSize) {
			continue
		}

		if best == nil || rec.ElapsedSeconds < best.ElapsedSeconds {
			best = rec
		}
	}

	if best == nil {
		return nil
	}

	out := *best

	return &out
}
