// Package chart renders price, NAV and drawdown series as PNG line charts.
package chart

import (
	"errors"
	"fmt"

	"github.com/vicanso/go-charts/v2"

	"github.com/seenimoa/nivesh/internal/analytics"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// MaxPoints caps the points drawn; longer series are down-sampled.
const MaxPoints = 500

const (
	width      = 1000
	height     = 500
	xAxisSplit = 10
)

// ErrTooFewPoints is returned for series with fewer than two points.
var ErrTooFewPoints = errors.New("chart: need at least 2 points")

// RenderSeries draws the value of ts over time.
func RenderSeries(ts analytics.TimeSeries, title string) ([]byte, error) {
	if ts.Len() < 2 {
		return nil, ErrTooFewPoints
	}
	pts := Downsample(ts.Points(), MaxPoints)
	values := make([]float64, len(pts))
	for i, p := range pts {
		values[i] = p.Value
	}
	yMin, yMax := paddedRange(values)
	return render(title, labels(pts), values, yMin, yMax)
}

// RenderDrawdown draws the percentage decline from the running peak of ts.
func RenderDrawdown(ts analytics.TimeSeries, title string) ([]byte, error) {
	if ts.Len() < 2 {
		return nil, ErrTooFewPoints
	}
	pts := Downsample(analytics.DrawdownCurve(ts), MaxPoints)
	values := make([]float64, len(pts))
	for i, p := range pts {
		values[i] = utils.Round(p.Value*100, 2)
	}
	yMin, _ := paddedRange(values)
	return render(title, labels(pts), values, yMin, 0)
}

// Downsample keeps at most max points, evenly spaced, always including the
// first and last.
func Downsample(points []analytics.Point, max int) []analytics.Point {
	n := len(points)
	if max < 2 || n <= max {
		return points
	}
	out := make([]analytics.Point, max)
	step := float64(n-1) / float64(max-1)
	for i := range out {
		out[i] = points[int(float64(i)*step+0.5)]
	}
	out[max-1] = points[n-1]
	return out
}

func labels(pts []analytics.Point) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = utils.FormatDateIST(p.Date)
	}
	return out
}

// paddedRange returns the min and max of values widened by 5%.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	if lo >= 0 && lo-pad < 0 {
		return 0, hi + pad
	}
	return lo - pad, hi + pad
}

func render(title string, xLabels []string, values []float64, yMin, yMax float64) ([]byte, error) {
	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: xAxisSplit}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(width),
		charts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("chart: render %q: %w", title, err)
	}
	img, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("chart: encode %q: %w", title, err)
	}
	return img, nil
}
