// Package main provides the CLI entry point for parbench, a CPU benchmark
// that compares sequential, multi-threaded and multi-process execution of
// the same workload.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("parbench failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "parbench",
		Short: "Sequential vs parallel CPU benchmarking tool",
		Long: `Parbench counts primes below a task size sequentially, across goroutines
and across worker processes, and compares the wall-clock time of each
strategy. CPU and memory micro benchmarks run alongside.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(
		newRunCmd(logger),
		newWorkerCmd(),
		newSysinfoCmd(),
		newHistoryCmd(logger),
	)

	return root
}
