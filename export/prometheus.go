// Package export publishes run records to external metric systems: a
// Prometheus textfile for node_exporter and an InfluxDB bucket.
package export

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weiihann/parbench/engine"
)

const namespace = "parbench"

var runLabels = []string{"strategy", "task_size", "workers"}

// Prometheus holds the gauges of one suite on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	elapsed    *prometheus.GaugeVec
	throughput *prometheus.GaugeVec
	totalCount *prometheus.GaugeVec
	speedup    prometheus.Gauge
	failed     prometheus.Gauge
}

// NewPrometheus creates the gauges and registers them.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		elapsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_elapsed_seconds",
			Help:      "Wall-clock seconds of one benchmark run.",
		}, runLabels),
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_throughput",
			Help:      "Task size divided by elapsed seconds.",
		}, runLabels),
		totalCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_total_count",
			Help:      "Primes counted by one benchmark run.",
		}, runLabels),
		speedup: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "speedup",
			Help:      "Sequential over best multi-process time at the reference task size.",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "failed_runs",
			Help:      "Configurations that failed in the last suite.",
		}),
	}

	p.registry.MustRegister(p.elapsed, p.throughput, p.totalCount, p.speedup, p.failed)

	return p
}

// Registry exposes the underlying registry, e.g. for tests or an HTTP
// handler.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Observe sets the gauges from a suite result and its summary. The
// speedup gauge is left unset when speedup is unavailable.
func (p *Prometheus) Observe(results engine.SuiteResult, summary engine.Summary) {
	for _, rec := range results.Records {
		labels := prometheus.Labels{
			"strategy":  rec.Strategy.String(),
			"task_size": strconv.Itoa(rec.TaskSize),
			"workers":   strconv.Itoa(rec.WorkerCount),
		}

		p.elapsed.With(labels).Set(rec.ElapsedSeconds)
		p.throughput.With(labels).Set(rec.Throughput)
		p.totalCount.With(labels).Set(float64(rec.TotalCount))
	}

	if summary.Speedup != nil {
		p.speedup.Set(*summary.Speedup)
	}

	p.failed.Set(float64(len(results.Failures)))
}

// WriteTextfile writes the gathered metrics in the text exposition format.
// The file is replaced atomically.
func (p *Prometheus) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
