// Package store persists benchmark runs as JSON files and keeps a
// queryable run history in badger.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/weiihann/parbench/engine"
	"github.com/weiihann/parbench/micro"
	"github.com/weiihann/parbench/sysinfo"
)

// FileTimeLayout is the timestamp suffix of written file names.
const FileTimeLayout = "20060102_150405"

// Run is the combined document of one parbench invocation.
type Run struct {
	ID        string                        `json:"id"`
	Timestamp time.Time                     `json:"timestamp"`
	System    sysinfo.Info                  `json:"system"`
	Parallel  map[string]engine.KeyedRecord `json:"parallel"`
	Records   []engine.RunRecord            `json:"records"`
	CPU       *micro.Result                 `json:"cpu,omitempty"`
	Memory    *micro.Result                 `json:"memory,omitempty"`
	Summary   engine.Summary                `json:"summary"`
	Failures  []engine.Failure              `json:"failures,omitempty"`
}

// NewRun assembles a Run with a fresh ID and the current time.
func NewRun(info sysinfo.Info, results engine.SuiteResult, summary engine.Summary) Run {
	return Run{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		System:    info,
		Parallel:  results.Keyed(),
		Records:   results.Records,
		Summary:   summary,
		Failures:  results.Failures,
	}
}

// SuiteResult rebuilds the ordered suite result stored in the run.
func (r Run) SuiteResult() engine.SuiteResult {
	return engine.SuiteResult{Records: r.Records, Failures: r.Failures}
}

// SaveJSON writes v as indented JSON to dir/{prefix}_{timestamp}.json,
// creating dir if needed, and returns the file path.
func SaveJSON(dir, prefix string, v any) (string, error) {
	return saveJSONAt(dir, prefix, time.Now(), v)
}

func saveJSONAt(dir, prefix string, at time.Time, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", prefix, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", prefix, at.Format(FileTimeLayout)))
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return path, nil
}
