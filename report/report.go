// Package report formats benchmark runs into markdown reports and
// console comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/weiihann/parbench/engine"
	"github.com/weiihann/parbench/micro"
	"github.com/weiihann/parbench/store"
)

// Generate writes a markdown report of the run.
func Generate(w io.Writer, run store.Run) error {
	if len(run.Records) == 0 && len(run.Failures) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "# Hardware Performance Report")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run `%s` at %s\n", run.ID, run.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w)

	writeSystem(w, run)

	if run.CPU != nil {
		writeMicro(w, "CPU Performance", *run.CPU)
	}

	if run.Memory != nil {
		writeMicro(w, "Memory Performance", *run.Memory)
	}

	writeParallel(w, run.SuiteResult())
	writeSummary(w, run.Summary)

	return nil
}

// GenerateJSON writes v as indented JSON to w.
func GenerateJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func writeSystem(w io.Writer, run store.Run) {
	sys := run.System

	fmt.Fprintln(w, "## System Information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Property | Value |")
	fmt.Fprintln(w, "|----------|-------|")
	fmt.Fprintf(w, "| OS | %s/%s |\n", sys.OS, sys.Arch)
	fmt.Fprintf(w, "| Kernel | %s |\n", orDash(sys.Kernel))
	fmt.Fprintf(w, "| CPU | %s |\n", orDash(sys.CPUName))
	fmt.Fprintf(w, "| Cores | %d (%d usable) |\n", sys.CPUCores, sys.UsableCores)
	fmt.Fprintf(w, "| Memory | %s |\n", formatBytes(sys.TotalMemoryBytes))
	fmt.Fprintf(w, "| Host | %s |\n", orDash(sys.Hostname))
	fmt.Fprintln(w)
}

func writeMicro(w io.Writer, title string, r micro.Result) {
	fmt.Fprintf(w, "## %s\n", title)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Benchmark | Parameter | Time | Rate |")
	fmt.Fprintln(w, "|-----------|-----------|------|------|")

	for _, key := range r.Keys {
		m := r.Measurements[key]
		fmt.Fprintf(w, "| %s | %s=%d | %s | %s %s |\n",
			key,
			m.Parameter,
			m.Value,
			formatSeconds(m.TimeSeconds),
			formatRate(m.Rate),
			m.RateUnit,
		)
	}

	fmt.Fprintln(w)
}

func writeParallel(w io.Writer, results engine.SuiteResult) {
	fmt.Fprintln(w, "## Parallel Processing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Method | Task Size | Workers | Time | Tasks/sec | Primes | vs Sequential |")
	fmt.Fprintln(w, "|--------|-----------|---------|------|-----------|--------|---------------|")

	for _, rec := range results.Records {
		fmt.Fprintf(w, "| %s | %d | %d | %s | %s | %d | %s |\n",
			rec.Strategy,
			rec.TaskSize,
			rec.WorkerCount,
			formatSeconds(rec.ElapsedSeconds),
			formatRate(rec.Throughput),
			rec.TotalCount,
			relativeToSequential(results, rec),
		)
	}

	fmt.Fprintln(w)

	if len(results.Failures) == 0 {
		return
	}

	fmt.Fprintln(w, "### Failed Configurations")
	fmt.Fprintln(w)

	for _, f := range results.Failures {
		fmt.Fprintf(w, "- `%s`: %s\n", f.Key(), f.Error)
	}

	fmt.Fprintln(w)
}

func writeSummary(w io.Writer, s engine.Summary) {
	fmt.Fprintln(w, "## Summary")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "- Best threading: %s\n", describeBest(s.BestThreaded))
	fmt.Fprintf(w, "- Best multiprocessing: %s\n", describeBest(s.BestMultiProcess))
	fmt.Fprintf(w, "- Multiprocessing speedup over sequential (task size %d): %s\n",
		s.ReferenceTaskSize, s.SpeedupLabel())
}

func describeBest(rec *engine.RunRecord) string {
	if rec == nil {
		return engine.SpeedupUnavailable
	}

	return fmt.Sprintf("%d workers at task size %d (%s)",
		rec.WorkerCount, rec.TaskSize, formatSeconds(rec.ElapsedSeconds))
}

// relativeToSequential returns the sequential time at the same task size
// over rec's time, "-" when there is no sequential record.
func relativeToSequential(results engine.SuiteResult, rec engine.RunRecord) string {
	seq, ok := results.Find(engine.StrategySequential, rec.TaskSize, 1)
	if !ok {
		return "-"
	}

	return fmt.Sprintf("%.2fx", seq.ElapsedSeconds/rec.ElapsedSeconds)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func formatSeconds(s float64) string {
	if s < 1 {
		return fmt.Sprintf("%.2fms", s*1000)
	}

	return fmt.Sprintf("%.2fs", s)
}

func formatRate(r float64) string {
	switch {
	case r >= 1e9:
		return fmt.Sprintf("%.2fG", r/1e9)
	case r >= 1e6:
		return fmt.Sprintf("%.2fM", r/1e6)
	case r >= 1e3:
		return fmt.Sprintf("%.2fK", r/1e3)
	default:
		return fmt.Sprintf("%.2f", r)
	}
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
