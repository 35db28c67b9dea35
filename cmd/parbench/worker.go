package main

import (
	"github.com/spf13/cobra"

	"github.com/weiihann/parbench/harness"
)

// newWorkerCmd is the entry point of process workers. It reads one
// request from stdin and answers on stdout.
func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:    harness.WorkerSubcommand,
		Short:  "Evaluate one workload chunk (used by multi-process runs)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return harness.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
