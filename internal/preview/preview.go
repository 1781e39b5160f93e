// Package preview renders the assembled pulse train as a square-wave
// chart, either as an interactive go-echarts HTML page or a static PNG.
package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/sendsubghz/internal/subghz"
)

// MaxPulses bounds how many pulses per sequence are drawn.
const MaxPulses = 5000

// Point is one corner of the square wave: time in milliseconds and level 0/1.
type Point struct {
	X float64
	Y float64
}

// Waveform returns the corners of seq's square wave, starting at t=0.
// The second return reports whether seq was cut at MaxPulses.
func Waveform(seq subghz.Sequence) ([]Point, bool) {
	truncated := false
	if len(seq) > MaxPulses {
		seq = seq[:MaxPulses]
		truncated = true
	}

	pts := make([]Point, 0, 2*len(seq))
	var t uint64
	for _, p := range seq {
		y := 0.0
		if p.Level {
			y = 1
		}
		pts = append(pts,
			Point{X: float64(t) / 1000, Y: y},
			Point{X: float64(t+p.Duration) / 1000, Y: y},
		)
		t += p.Duration
	}
	return pts, truncated
}

func seriesName(i int, truncated bool) string {
	name := fmt.Sprintf("sequence %d", i+1)
	if truncated {
		name += fmt.Sprintf(" (first %d pulses)", MaxPulses)
	}
	return name
}

// RenderHTML writes an interactive line chart with one series per sequence.
func RenderHTML(w io.Writer, title string, f subghz.SubFile) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d Hz, %d sequences, %d pulses", f.FrequencyHz, len(f.Sequences), f.TotalPulses()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "ms", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 1.2, Name: "level"}),
	)

	for i, seq := range f.Sequences {
		pts, truncated := Waveform(seq)
		data := make([]opts.LineData, 0, len(pts))
		for _, p := range pts {
			data = append(data, opts.LineData{Value: []interface{}{p.X, p.Y}})
		}
		line.AddSeries(seriesName(i, truncated), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}

	return line.Render(w)
}

// RenderPNG writes a static PNG with one stacked trace per sequence.
func RenderPNG(w io.Writer, title string, f subghz.SubFile) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "Sequence"

	for i, seq := range f.Sequences {
		pts, truncated := Waveform(seq)
		if len(pts) == 0 {
			continue
		}
		// stack each sequence one unit and a half above the previous
		offset := float64(i) * 1.5
		xys := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Y + offset}
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("failed to create line for sequence %d: %w", i+1, err)
		}
		l.Width = vg.Points(1)
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(seriesName(i, truncated), l)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render png: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Write renders f to path, choosing the format from the extension.
func Write(path, title string, f subghz.SubFile) error {
	var render func(io.Writer, string, subghz.SubFile) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		render = RenderHTML
	case ".png":
		render = RenderPNG
	default:
		return fmt.Errorf("unsupported preview format %q (use .html or .png)", filepath.Ext(path))
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create preview: %w", err)
	}
	if err := render(out, title, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
