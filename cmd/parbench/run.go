package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/weiihann/parbench/chart"
	"github.com/weiihann/parbench/config"
	"github.com/weiihann/parbench/engine"
	"github.com/weiihann/parbench/export"
	"github.com/weiihann/parbench/harness"
	"github.com/weiihann/parbench/micro"
	"github.com/weiihann/parbench/report"
	"github.com/weiihann/parbench/store"
	"github.com/weiihann/parbench/sysinfo"
	"github.com/weiihann/parbench/workload"
)

type runOptions struct {
	configPath   string
	envFile      string
	taskSizes    []int
	workerCounts []int
	refSize      int
	resultsDir   string
	metricsFile  string
	historyDir   string
	noCharts     bool
	noReport     bool
	skipMicro    bool
	outputJSON   bool
	noProgress   bool
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the micro benchmarks and the parallel suite",
		Long: `Run CPU and memory micro benchmarks, then count primes for every task
size sequentially, with each worker count across goroutines, and with each
worker count across worker processes. Results are saved as JSON, rendered
as a report and a chart, and optionally exported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), logger, cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"YAML configuration file")
	flags.StringVar(&opts.envFile, "env-file", ".env",
		"Optional .env file with PARBENCH_* settings")
	flags.IntSliceVar(&opts.taskSizes, "task-sizes", nil,
		"Task sizes to benchmark (e.g. 500,2000)")
	flags.IntSliceVar(&opts.workerCounts, "worker-counts", nil,
		"Worker counts for threaded and multi-process runs (e.g. 2,4)")
	flags.IntVar(&opts.refSize, "reference-size", 0,
		"Task size used for the speedup figure (0 = largest task size)")
	flags.StringVar(&opts.resultsDir, "results-dir", "",
		"Directory for JSON results and charts")
	flags.StringVar(&opts.metricsFile, "metrics-file", "",
		"Write Prometheus metrics to this textfile")
	flags.StringVar(&opts.historyDir, "history-dir", "",
		"Record the run in the history database in this directory")
	flags.BoolVar(&opts.noCharts, "no-charts", false,
		"Skip chart generation")
	flags.BoolVar(&opts.noReport, "no-report", false,
		"Skip report generation")
	flags.BoolVar(&opts.skipMicro, "skip-micro", false,
		"Skip CPU and memory micro benchmarks")
	flags.BoolVar(&opts.outputJSON, "json", false,
		"Print the run as JSON instead of a table")
	flags.BoolVar(&opts.noProgress, "no-progress", false,
		"Hide the progress bar")

	return cmd
}

// loadConfig applies explicitly set flags on top of file and environment
// configuration.
func loadConfig(cmd *cobra.Command, opts runOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("task-sizes") {
		cfg.Parallel.TaskSizes = opts.taskSizes
	}
	if flags.Changed("worker-counts") {
		cfg.Parallel.WorkerCounts = opts.workerCounts
	}
	if flags.Changed("reference-size") {
		cfg.Parallel.ReferenceTaskSize = opts.refSize
	}
	if flags.Changed("results-dir") {
		cfg.Output.ResultsDir = opts.resultsDir
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = opts.metricsFile
	}
	if flags.Changed("history-dir") {
		cfg.Output.HistoryDir = opts.historyDir
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	opts runOptions,
) error {
	started := time.Now()
	info := sysinfo.Collect()

	logger.InfoContext(ctx, "starting benchmark",
		slog.Any("task_sizes", cfg.Parallel.TaskSizes),
		slog.Any("worker_counts", cfg.Parallel.WorkerCounts),
		slog.String("workload", cfg.Parallel.Workload),
		slog.String("cpu", info.CPUName),
		slog.Int("cores", info.CPUCores),
	)

	var cpu, memory *micro.Result

	if !opts.skipMicro {
		bold.Fprintln(os.Stderr, "Running CPU benchmarks...")
		c := micro.RunCPU(micro.CPUConfig{
			IntegerIterations: cfg.CPU.IntegerIterations,
			MatrixSmall:       cfg.CPU.MatrixSmall,
			MatrixMedium:      cfg.CPU.MatrixMedium,
			PrimeLimit:        cfg.CPU.PrimeLimit,
			Seed:              cfg.Memory.Seed,
		})
		cpu = &c

		bold.Fprintln(os.Stderr, "Running memory benchmarks...")
		m := micro.RunMemory(micro.MemoryConfig{
			SizesMB: cfg.Memory.SizesMB,
			Seed:    cfg.Memory.Seed,
		})
		memory = &m
	}

	suite, err := newSuite(logger, cfg, opts)
	if err != nil {
		return err
	}

	bold.Fprintln(os.Stderr, "Running parallel processing benchmarks...")

	results, suiteErr := suite.Run(ctx, cfg.Parallel.TaskSizes, cfg.Parallel.WorkerCounts)
	if suiteErr != nil && len(results.Records) == 0 && len(results.Failures) == 0 {
		return fmt.Errorf("run suite: %w", suiteErr)
	}

	summary := engine.Summarize(results, cfg.ReferenceTaskSize())

	run := store.NewRun(info, results, summary)
	run.CPU = cpu
	run.Memory = memory

	logger.InfoContext(ctx, "benchmark finished",
		slog.String("run_id", run.ID),
		slog.Duration("elapsed", time.Since(started)),
		slog.Int("records", len(results.Records)),
		slog.Int("failures", len(results.Failures)),
	)

	// Each output step is independent: one failing must not block the rest.
	steps := []struct {
		name    string
		enabled bool
		fn      func() error
	}{
		{"print results", true, func() error { return printResults(run, results, opts.outputJSON) }},
		{"save results", true, func() error { return saveResults(logger, cfg, run, results) }},
		{"generate chart", !opts.noCharts, func() error {
			return writeChart(logger, func() (string, error) { return chart.WriteFile(cfg.Output.ResultsDir, results) })
		}},
		{"generate cpu chart", !opts.noCharts && cpu != nil, func() error {
			return writeChart(logger, func() (string, error) { return chart.WriteCPUFile(cfg.Output.ResultsDir, *cpu) })
		}},
		{"generate memory chart", !opts.noCharts && memory != nil, func() error {
			return writeChart(logger, func() (string, error) { return chart.WriteMemoryFile(cfg.Output.ResultsDir, *memory) })
		}},
		{"generate report", !opts.noReport, func() error { return writeReport(logger, cfg, run) }},
		{"record history", cfg.Output.HistoryDir != "", func() error { return recordHistory(logger, cfg, run) }},
		{"write metrics", cfg.Output.MetricsFile != "", func() error { return writeMetrics(logger, cfg, results, summary) }},
		{"export to influxdb", cfg.Influx.Enabled(), func() error { return exportInflux(ctx, logger, cfg, run) }},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}

		if err := step.fn(); err != nil {
			logger.ErrorContext(ctx, step.name+" failed", slog.String("error", err.Error()))
			red.Fprintf(os.Stderr, "[ERROR] %s: %v\n", step.name, err)
		}
	}

	if suiteErr != nil {
		return fmt.Errorf("run suite: %w", suiteErr)
	}

	green.Fprintf(os.Stderr, "Benchmarking completed in %.2f seconds\n", time.Since(started).Seconds())

	return nil
}

func newSuite(logger *slog.Logger, cfg config.Config, opts runOptions) (*engine.Suite, error) {
	w, err := workload.Lookup(cfg.Parallel.Workload)
	if err != nil {
		return nil, err
	}

	cmdCfg, err := harness.ResolveCommand(cfg.Parallel.WorkerBinary)
	if err != nil {
		return nil, fmt.Errorf("resolve worker command: %w", err)
	}

	runners := engine.Runners{
		Sequential:   engine.NewSequentialRunner(w),
		Threaded:     engine.NewThreadedRunner(w),
		MultiProcess: engine.NewProcessRunner(w.Name(), harness.NewLauncher(cmdCfg, logger)),
	}

	var bar *progressbar.ProgressBar

	suite := engine.NewSuite(runners, logger, engine.WithProgress(
		func(int, int, engine.Configuration, error) {
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	))

	if !opts.noProgress {
		total := len(suite.Plan(cfg.Parallel.TaskSizes, cfg.Parallel.WorkerCounts))
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Parallel suite"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	return suite, nil
}

func printResults(run store.Run, results engine.SuiteResult, asJSON bool) error {
	if asJSON {
		return report.GenerateJSON(os.Stdout, run)
	}

	if err := report.WriteTable(os.Stdout, results); err != nil {
		return err
	}

	summary := run.Summary
	fmt.Println()
	bold.Print("Multiprocessing speedup over sequential")
	fmt.Printf(" (task size %d): ", summary.ReferenceTaskSize)

	if summary.Speedup == nil {
		yellow.Println(summary.SpeedupLabel())
	} else {
		green.Println(summary.SpeedupLabel())
	}

	for _, f := range results.Failures {
		red.Printf("failed: %s: %s\n", f.Key(), f.Error)
	}

	return nil
}

func saveResults(logger *slog.Logger, cfg config.Config, run store.Run, results engine.SuiteResult) error {
	path, err := store.SaveJSON(cfg.Output.ResultsDir, "parallel_benchmark", results.KeyedSuite())
	if err != nil {
		return err
	}

	logger.Info("parallel results saved", slog.String("path", path))

	path, err = store.SaveJSON(cfg.Output.ResultsDir, "benchmark_results", run)
	if err != nil {
		return err
	}

	logger.Info("run saved", slog.String("path", path))

	return nil
}

func writeChart(logger *slog.Logger, write func() (string, error)) error {
	path, err := write()
	if err != nil {
		return err
	}

	logger.Info("chart saved", slog.String("path", path))

	return nil
}

func writeReport(logger *slog.Logger, cfg config.Config, run store.Run) error {
	var buf bytes.Buffer
	if err := report.Generate(&buf, run); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.ReportsDir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	name := fmt.Sprintf("performance_report_%s.md", run.Timestamp.Format(store.FileTimeLayout))
	path := filepath.Join(cfg.Output.ReportsDir, name)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info("report saved", slog.String("path", path))

	return nil
}

func recordHistory(logger *slog.Logger, cfg config.Config, run store.Run) error {
	h, err := store.OpenHistory(cfg.Output.HistoryDir, logger)
	if err != nil {
		return err
	}

	saveErr := h.Save(run)

	return errors.Join(saveErr, h.Close())
}

func writeMetrics(logger *slog.Logger, cfg config.Config, results engine.SuiteResult, summary engine.Summary) error {
	p := export.NewPrometheus()
	p.Observe(results, summary)

	if err := p.WriteTextfile(cfg.Output.MetricsFile); err != nil {
		return err
	}

	logger.Info("metrics written", slog.String("path", cfg.Output.MetricsFile))

	return nil
}

func exportInflux(ctx context.Context, logger *slog.Logger, cfg config.Config, run store.Run) error {
	sink := export.NewInflux(export.InfluxConfig{
		URL:    cfg.Influx.URL,
		Token:  cfg.Influx.Token,
		Org:    cfg.Influx.Org,
		Bucket: cfg.Influx.Bucket,
	})
	defer sink.Close()

	if err := sink.Write(ctx, run.ID, run.Timestamp, run.Records); err != nil {
		return err
	}

	logger.Info("points written to influxdb",
		slog.String("url", cfg.Influx.URL),
		slog.Int("points", len(run.Records)),
	)

	return nil
}
