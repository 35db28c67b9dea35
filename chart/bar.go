package chart

import (
	"fmt"
	"io"
	"strconv"
	"text/template"

	"github.com/weiihann/parbench/micro"
)

// File names of the micro benchmark charts.
const (
	CPUFileName    = "cpu_performance.svg"
	MemoryFileName = "memory_performance.svg"
)

const (
	barHeight    = 450
	panelWidth   = 420
	panelGap     = 60
	barFill      = 0.6
	barHeadroom  = 1.2
	sequentialOp = "sequential_access"
)

type bar struct {
	Label      string
	ValueLabel string
	X, Y, W, H float64
}

type panel struct {
	Title       string
	YLabel      string
	Color       string
	Left, Right float64
	Top, Bottom float64
	Bars        []bar
	YTicks      []tick
}

type barPlot struct {
	Width, Height int
	Panels        []panel
}

var barTemplate = template.Must(template.New("bars").Funcs(funcs).Funcs(template.FuncMap{
	"half": func(v float64) float64 { return v / 2 },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}" font-family="sans-serif">
<rect width="100%" height="100%" fill="white"/>
{{- range $p := .Panels}}
<g class="panel">
<text x="{{f $p.Left}}" y="{{f $p.Top}}" dy="-24" font-size="15" font-weight="bold">{{$p.Title}}</text>
{{- range $p.YTicks}}
<line x1="{{f $p.Left}}" y1="{{f .Pos}}" x2="{{f $p.Right}}" y2="{{f .Pos}}" stroke="#ddd"/>
<text x="{{f $p.Left}}" y="{{f .Pos}}" dx="-6" dy="4" font-size="11" text-anchor="end">{{.Label}}</text>
{{- end}}
<line x1="{{f $p.Left}}" y1="{{f $p.Bottom}}" x2="{{f $p.Right}}" y2="{{f $p.Bottom}}" stroke="black"/>
<line x1="{{f $p.Left}}" y1="{{f $p.Top}}" x2="{{f $p.Left}}" y2="{{f $p.Bottom}}" stroke="black"/>
<text transform="translate({{f $p.Left}},{{f $p.Bottom}}) rotate(-90)" dy="-56" font-size="12" font-weight="bold">{{$p.YLabel}}</text>
{{- range $p.Bars}}
<rect class="bar" x="{{f .X}}" y="{{f .Y}}" width="{{f .W}}" height="{{f .H}}" fill="{{$p.Color}}"><title>{{.Label}}: {{.ValueLabel}}</title></rect>
<text x="{{f .X}}" y="{{f $p.Bottom}}" dx="{{f (half .W)}}" dy="18" font-size="12" text-anchor="middle">{{.Label}}</text>
{{- end}}
</g>
{{- end}}
</svg>
`))

// RenderCPU writes a bar chart of integer operations per second and of
// FLOPS for the small and medium matrix sizes.
func RenderCPU(w io.Writer, r micro.Result) error {
	var panels []panel

	left := float64(marginLeft)

	if m, ok := r.Get(micro.KeyIntegerOps); ok {
		panels = append(panels, buildPanel("CPU Integer Performance", "Operations per Second", "skyblue",
			left, []string{"Integer Ops"}, []float64{m.Rate}))
		left += panelWidth + panelGap
	}

	var (
		labels []string
		values []float64
	)

	for _, key := range []string{micro.KeyMatrixSmall, micro.KeyMatrixMedium} {
		m, ok := r.Get(key)
		if !ok {
			continue
		}

		name := "Small"
		if key == micro.KeyMatrixMedium {
			name = "Medium"
		}

		labels = append(labels, fmt.Sprintf("%s (%d)", name, m.Value))
		values = append(values, m.Rate)
	}

	if len(labels) > 0 {
		panels = append(panels, buildPanel("CPU Floating Point Performance", "FLOPS", "lightcoral",
			left, labels, values))
	}

	return renderBars(w, panels)
}

// RenderMemory writes a bar chart of sequential access bandwidth per
// buffer size.
func RenderMemory(w io.Writer, r micro.Result) error {
	var (
		labels []string
		values []float64
	)

	for _, key := range r.Keys {
		m := r.Measurements[key]
		if m.Operation != sequentialOp {
			continue
		}

		labels = append(labels, fmt.Sprintf("%dMB", m.Value))
		values = append(values, m.Rate)
	}

	if len(labels) == 0 {
		return renderBars(w, nil)
	}

	return renderBars(w, []panel{
		buildPanel("Sequential Memory Access Performance", "MB/sec", "lightgreen",
			marginLeft, labels, values),
	})
}

// WriteCPUFile renders the CPU chart to dir/CPUFileName.
func WriteCPUFile(dir string, r micro.Result) (string, error) {
	return writeSVG(dir, CPUFileName, func(w io.Writer) error {
		return RenderCPU(w, r)
	})
}

// WriteMemoryFile renders the memory chart to dir/MemoryFileName.
func WriteMemoryFile(dir string, r micro.Result) (string, error) {
	return writeSVG(dir, MemoryFileName, func(w io.Writer) error {
		return RenderMemory(w, r)
	})
}

func renderBars(w io.Writer, panels []panel) error {
	if len(panels) == 0 {
		return ErrNoData
	}

	last := panels[len(panels)-1]
	p := barPlot{
		Width:  int(last.Right) + marginRight,
		Height: barHeight,
		Panels: panels,
	}

	if err := barTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

// buildPanel lays out one bar per value, scaled so the tallest bar
// leaves 20% headroom.
func buildPanel(title, yLabel, color string, left float64, labels []string, values []float64) panel {
	p := panel{
		Title:  title,
		YLabel: yLabel,
		Color:  color,
		Left:   left,
		Right:  left + panelWidth,
		Top:    marginTop,
		Bottom: barHeight - marginBottom,
	}

	var yMax float64
	for _, v := range values {
		yMax = max(yMax, v)
	}

	yMax *= barHeadroom
	if yMax <= 0 {
		yMax = 1
	}

	for i := 0; i <= yTicks; i++ {
		v := yMax * float64(i) / yTicks
		pos := p.Bottom - v/yMax*(p.Bottom-p.Top)
		p.YTicks = append(p.YTicks, tick{Pos: pos, Label: strconv.FormatFloat(v, 'g', 3, 64)})
	}

	slot := (p.Right - p.Left) / float64(len(values))
	w := slot * barFill

	for i, v := range values {
		h := max(v, 0) / yMax * (p.Bottom - p.Top)
		p.Bars = append(p.Bars, bar{
			Label:      labels[i],
			ValueLabel: strconv.FormatFloat(v, 'g', 4, 64),
			X:          p.Left + slot*float64(i) + (slot-w)/2,
			Y:          p.Bottom - h,
			W:          w,
			H:          h,
		})
	}

	return p
}
