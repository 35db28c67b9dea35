package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/weiihann/parbench/engine"
	"github.com/weiihann/parbench/store"
)

// WriteTable writes the records ranked by elapsed time, fastest first.
func WriteTable(w io.Writer, results engine.SuiteResult) error {
	ranked := slices.Clone(results.Records)
	slices.SortStableFunc(ranked, func(a, b engine.RunRecord) int {
		return cmp.Compare(a.ElapsedSeconds, b.ElapsedSeconds)
	})

	table := tablewriter.NewWriter(w)
	table.Header("Rank", "Strategy", "Task Size", "Workers", "Time", "Tasks/sec", "Primes", "vs Sequential")

	for i, rec := range ranked {
		err := table.Append(
			strconv.Itoa(i+1),
			rec.Strategy.String(),
			strconv.Itoa(rec.TaskSize),
			strconv.Itoa(rec.WorkerCount),
			formatSeconds(rec.ElapsedSeconds),
			formatRate(rec.Throughput),
			strconv.Itoa(rec.TotalCount),
			relativeToSequential(results, rec),
		)
		if err != nil {
			return fmt.Errorf("append table row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	return nil
}

// WriteHistory writes one row per stored run, in the order given.
func WriteHistory(w io.Writer, runs []store.Run) error {
	table := tablewriter.NewWriter(w)
	table.Header("Run", "Time", "Host", "Records", "Failed", "Best MP", "Speedup")

	for _, run := range runs {
		best := "-"
		if b := run.Summary.BestMultiProcess; b != nil {
			best = fmt.Sprintf("%d@%d %s", b.WorkerCount, b.TaskSize, formatSeconds(b.ElapsedSeconds))
		}

		err := table.Append(
			shortID(run.ID),
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			orDash(run.System.Hostname),
			strconv.Itoa(len(run.Records)),
			strconv.Itoa(len(run.Failures)),
			best,
			run.Summary.SpeedupLabel(),
		)
		if err != nil {
			return fmt.Errorf("append history row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("render history: %w", err)
	}

	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
