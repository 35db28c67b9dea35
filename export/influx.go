package export

import (
	"context"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/weiihann/parbench/engine"
)

// Measurement is the InfluxDB measurement run points are written to.
const Measurement = "parbench_run"

// InfluxConfig locates the bucket to write to.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Influx writes one point per run record.
type Influx struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
}

// NewInflux connects a blocking writer to the configured bucket.
func NewInflux(cfg InfluxConfig) *Influx {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	return &Influx{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}
}

// newInfluxWithWriter is used by tests to substitute the write API.
func newInfluxWithWriter(w api.WriteAPIBlocking) *Influx {
	return &Influx{writer: w}
}

// Points converts records into points stamped with at and tagged with
// the run ID.
func Points(runID string, at time.Time, records []engine.RunRecord) []*write.Point {
	points := make([]*write.Point, 0, len(records))

	for _, rec := range records {
		points = append(points, influxdb2.NewPoint(
			Measurement,
			map[string]string{
				"strategy":  rec.Strategy.String(),
				"task_size": strconv.Itoa(rec.TaskSize),
				"workers":   strconv.Itoa(rec.WorkerCount),
				"run_id":    runID,
			},
			map[string]interface{}{
				"elapsed_seconds": rec.ElapsedSeconds,
				"throughput":      rec.Throughput,
				"total_count":     rec.TotalCount,
			},
			at,
		))
	}

	return points
}

// Write sends every record of the run in a single blocking write.
func (i *Influx) Write(ctx context.Context, runID string, at time.Time, records []engine.RunRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := i.writer.WritePoint(ctx, Points(runID, at, records)...); err != nil {
		return fmt.Errorf("write %d points to influxdb: %w", len(records), err)
	}

	return nil
}

// Close releases the client.
func (i *Influx) Close() {
	if i.client != nil {
		i.client.Close()
	}
}
