// Package chart draws the hourly viewer-to-channel bar chart.
// Nothing in the collection run calls it; it is meant for ad-hoc analysis of snapshots.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/onnwee/view-ratio/report"
)

// HourlySample is one bar: the totals observed during an hour of the day.
type HourlySample struct {
	Hour     int
	Viewers  int
	Channels int
}

var barColor = color.RGBA{R: 128, G: 0, B: 128, A: 255}

// Render encodes a bar chart of viewers/channels per hour as format (png, svg, pdf, ...).
// The ratio is recomputed from the sample totals; a sample with zero channels makes
// the ratio non-finite and Render fails.
func Render(w io.Writer, samples []HourlySample, format string) error {
	if len(samples) == 0 {
		return errors.New("chart: no samples")
	}
	ratios := make(plotter.Values, len(samples))
	labels := make([]string, len(samples))
	for i, s := range samples {
		ratios[i] = float64(s.Viewers) / float64(s.Channels)
		labels[i] = strconv.Itoa(s.Hour)
	}

	p := plot.New()
	p.Title.Text = "Hourly Viewer-to-Channel Ratio"
	p.X.Label.Text = "Hour"
	p.Y.Label.Text = "Viewer-to-Channel Ratio"

	bars, err := plotter.NewBarChart(ratios, vg.Points(20))
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)

	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: write: %w", err)
	}
	return nil
}

// BucketByHour sums rows into hour-of-day buckets using each row's timestamp.
// Buckets come back sorted by hour.
func BucketByHour(table report.Table) []HourlySample {
	byHour := map[int]*HourlySample{}
	for _, row := range table {
		h := row.Timestamp.Hour()
		s, ok := byHour[h]
		if !ok {
			s = &HourlySample{Hour: h}
			byHour[h] = s
		}
		s.Viewers += row.Viewers
		s.Channels += row.Channels
	}
	out := make([]HourlySample, 0, len(byHour))
	for _, s := range byHour {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}
