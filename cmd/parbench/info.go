package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/weiihann/parbench/config"
	"github.com/weiihann/parbench/report"
	"github.com/weiihann/parbench/store"
	"github.com/weiihann/parbench/sysinfo"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

func newSysinfoCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "sysinfo",
		Short: "Print information about this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := sysinfo.Collect()
			if outputJSON {
				return report.GenerateJSON(cmd.OutOrStdout(), info)
			}

			printInfo(cmd.OutOrStdout(), info)

			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false,
		"Output as JSON")

	return cmd
}

func printInfo(w io.Writer, info sysinfo.Info) {
	rows := []struct {
		key, value string
	}{
		{"OS", info.OS + "/" + info.Arch},
		{"Kernel", info.Kernel},
		{"CPU", info.CPUName},
		{"Cores", fmt.Sprintf("%d (%d usable)", info.CPUCores, info.UsableCores)},
		{"Memory", fmt.Sprintf("%.2f GB", info.TotalMemoryGB())},
		{"Host", info.Hostname},
		{"Go", info.GoVersion},
	}

	for _, r := range rows {
		bold.Fprintf(w, "%-8s", r.key)
		fmt.Fprintln(w, r.value)
	}
}

func newHistoryCmd(logger *slog.Logger) *cobra.Command {
	var (
		historyDir string
		limit      int
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous runs stored in the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if historyDir == "" {
				cfg, err := config.Load("", envFile)
				if err != nil {
					return err
				}

				historyDir = cfg.Output.HistoryDir
			}

			if historyDir == "" {
				return fmt.Errorf("no history directory: pass --history-dir or set %s", config.EnvHistoryDir)
			}

			h, err := store.OpenHistory(historyDir, logger)
			if err != nil {
				return err
			}
			defer h.Close()

			runs, err := h.List(limit)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				yellow.Fprintln(cmd.ErrOrStderr(), "No runs recorded in", historyDir)

				return nil
			}

			return report.WriteHistory(cmd.OutOrStdout(), runs)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&historyDir, "history-dir", "",
		"History database directory (default: "+config.EnvHistoryDir+")")
	flags.IntVar(&limit, "limit", 10,
		"Maximum runs to list, newest first (0 = all)")
	flags.StringVar(&envFile, "env-file", ".env",
		"Optional .env file with PARBENCH_* settings")

	return cmd
}
