// Package chart renders execution-time charts of a suite as SVG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/weiihann/parbench/engine"
)

// FileName is the file WriteFile creates in its directory.
const FileName = "parallel_execution_time.svg"

// ErrNoData is returned when there are no results to plot.
var ErrNoData = errors.New("no results to chart")

const (
	width        = 800
	height       = 500
	marginLeft   = 80
	marginRight  = 30
	marginTop    = 70
	marginBottom = 60
	yTicks       = 5
	legendStep   = 18
)

type point struct {
	Workers int
	Seconds float64
	X, Y    float64
}

type series struct {
	Label  string
	Color  string
	Square bool
	Points []point
	Path   string
}

type tick struct {
	Pos   float64
	Label string
}

type legend struct {
	Y     float64
	Color string
	Label string
}

type plot struct {
	Width, Height int
	Left, Right   float64
	Top, Bottom   float64
	TaskSize      int
	Baseline      *float64
	Series        []series
	XTicks        []tick
	YTicks        []tick
	Legend        []legend
}

var funcs = template.FuncMap{
	"f": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
}

var svgTemplate = template.Must(template.New("chart").Funcs(funcs).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}" font-family="sans-serif">
<rect width="100%" height="100%" fill="white"/>
<text x="{{f .Left}}" y="28" font-size="16" font-weight="bold">Execution Time: Sequential vs Parallel Execution</text>
<text x="{{f .Left}}" y="48" font-size="13">Task Size: {{.TaskSize}} primes</text>
{{- range .YTicks}}
<line x1="{{f $.Left}}" y1="{{f .Pos}}" x2="{{f $.Right}}" y2="{{f .Pos}}" stroke="#ddd"/>
<text x="{{f $.Left}}" y="{{f .Pos}}" dx="-6" dy="4" font-size="11" text-anchor="end">{{.Label}}</text>
{{- end}}
{{- range .XTicks}}
<text class="xtick" x="{{f .Pos}}" y="{{f $.Bottom}}" dy="18" font-size="11" text-anchor="middle">{{.Label}}</text>
{{- end}}
<line x1="{{f .Left}}" y1="{{f .Bottom}}" x2="{{f .Right}}" y2="{{f .Bottom}}" stroke="black"/>
<line x1="{{f .Left}}" y1="{{f .Top}}" x2="{{f .Left}}" y2="{{f .Bottom}}" stroke="black"/>
<text x="{{f .Left}}" y="{{f .Bottom}}" dy="44" font-size="12" font-weight="bold">Number of CPU Cores / Threads</text>
<text transform="translate(20,{{f .Bottom}}) rotate(-90)" font-size="12" font-weight="bold">Execution Time (seconds)</text>
{{- with .Baseline}}
<line class="baseline" x1="{{f $.Left}}" y1="{{f .}}" x2="{{f $.Right}}" y2="{{f .}}" stroke="red" stroke-width="2.5" stroke-dasharray="8,6"/>
{{- end}}
{{- range $s := .Series}}
<path class="series" d="{{$s.Path}}" fill="none" stroke="{{$s.Color}}" stroke-width="2.5"/>
{{- range $s.Points}}
{{- if $s.Square}}
<rect x="{{f .X}}" y="{{f .Y}}" width="10" height="10" transform="translate(-5,-5)" fill="{{$s.Color}}"><title>{{$s.Label}}: {{.Workers}} workers, {{.Seconds}}s</title></rect>
{{- else}}
<circle cx="{{f .X}}" cy="{{f .Y}}" r="5" fill="{{$s.Color}}"><title>{{$s.Label}}: {{.Workers}} workers, {{.Seconds}}s</title></circle>
{{- end}}
{{- end}}
{{- end}}
{{- range .Legend}}
<text class="legend" x="{{f $.Right}}" y="{{f .Y}}" dx="-10" font-size="12" text-anchor="end" fill="{{.Color}}">{{.Label}}</text>
{{- end}}
</svg>
`))

// Render writes an SVG line chart of execution time against worker count
// for the largest task size, with the sequential run as a dashed baseline.
func Render(w io.Writer, results engine.SuiteResult) error {
	p, err := buildPlot(results)
	if err != nil {
		return err
	}

	if err := svgTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

// WriteFile renders the chart to dir/FileName and returns the path.
func WriteFile(dir string, results engine.SuiteResult) (string, error) {
	return writeSVG(dir, FileName, func(w io.Writer) error {
		return Render(w, results)
	})
}

// writeSVG renders into memory first so a failed render leaves no file.
func writeSVG(dir, name string, render func(io.Writer) error) (string, error) {
	var sb strings.Builder
	if err := render(&sb); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}

	return path, nil
}

func buildPlot(results engine.SuiteResult) (plot, error) {
	sizes := results.TaskSizes()
	if len(sizes) == 0 {
		return plot{}, ErrNoData
	}

	taskSize := slices.Max(sizes)

	p := plot{
		Width:    width,
		Height:   height,
		Left:     marginLeft,
		Right:    width - marginRight,
		Top:      marginTop,
		Bottom:   height - marginBottom,
		TaskSize: taskSize,
	}

	threaded := collect(results, engine.StrategyThreaded, taskSize)
	multi := collect(results, engine.StrategyMultiProcess, taskSize)

	var (
		workers []int
		maxTime float64
	)

	for _, pts := range [][]point{threaded, multi} {
		for _, pt := range pts {
			if !slices.Contains(workers, pt.Workers) {
				workers = append(workers, pt.Workers)
			}
			maxTime = max(maxTime, pt.Seconds)
		}
	}

	slices.Sort(workers)

	seq, hasSeq := results.Find(engine.StrategySequential, taskSize, 1)
	if hasSeq {
		maxTime = max(maxTime, seq.ElapsedSeconds)
	}

	yMax := maxTime * 1.1
	if yMax <= 0 {
		yMax = 1
	}

	xMin, xMax := 1, 2
	if len(workers) > 0 {
		xMin, xMax = workers[0], workers[len(workers)-1]
	}

	if xMin == xMax {
		xMin, xMax = xMin-1, xMax+1
	}

	scaleX := func(v int) float64 {
		return p.Left + float64(v-xMin)/float64(xMax-xMin)*(p.Right-p.Left)
	}
	scaleY := func(v float64) float64 {
		return p.Bottom - v/yMax*(p.Bottom-p.Top)
	}

	for _, wc := range workers {
		p.XTicks = append(p.XTicks, tick{Pos: scaleX(wc), Label: strconv.Itoa(wc)})
	}

	for i := 0; i <= yTicks; i++ {
		v := yMax * float64(i) / yTicks
		p.YTicks = append(p.YTicks, tick{Pos: scaleY(v), Label: strconv.FormatFloat(v, 'g', 3, 64)})
	}

	legendY := p.Top + legendStep

	if hasSeq {
		y := scaleY(seq.ElapsedSeconds)
		p.Baseline = &y
		p.Legend = append(p.Legend, legend{Y: legendY, Color: "red", Label: "Sequential Execution"})
		legendY += legendStep
	}

	for _, s := range []series{
		{Label: "Threading (Multi-threaded)", Color: "green", Points: threaded},
		{Label: "Multiprocessing (Multi-core)", Color: "blue", Square: true, Points: multi},
	} {
		if len(s.Points) == 0 {
			continue
		}

		var path strings.Builder
		for i := range s.Points {
			s.Points[i].X = scaleX(s.Points[i].Workers)
			s.Points[i].Y = scaleY(s.Points[i].Seconds)

			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%.1f,%.1f ", cmd, s.Points[i].X, s.Points[i].Y)
		}

		s.Path = strings.TrimSpace(path.String())
		p.Series = append(p.Series, s)
		p.Legend = append(p.Legend, legend{Y: legendY, Color: s.Color, Label: s.Label})
		legendY += legendStep
	}

	return p, nil
}

// collect returns the strategy's points at taskSize ordered by workers.
func collect(results engine.SuiteResult, s engine.Strategy, taskSize int) []point {
	var pts []point
	for _, rec := range results.ByStrategy(s) {
		if rec.TaskSize == taskSize {
			pts = append(pts, point{Workers: rec.WorkerCount, Seconds: rec.ElapsedSeconds})
		}
	}

	slices.SortFunc(pts, func(a, b point) int { return a.Workers - b.Workers })

	return pts
}
