package chart

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/seenimoa/nivesh/internal/analytics"
	"github.com/seenimoa/nivesh/pkg/utils"
)

var pngMagic = []byte("\x89PNG")

func series(t *testing.T, n int) analytics.TimeSeries {
	t.Helper()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, utils.IST)
	pts := make([]analytics.Point, n)
	for i := range pts {
		pts[i] = analytics.Point{Date: start.AddDate(0, 0, i), Value: 100 + 10*math.Sin(float64(i)/20)}
	}
	ts, err := analytics.NewTimeSeries(pts)
	if err != nil {
		t.Fatalf("NewTimeSeries: %v", err)
	}
	return ts
}

func TestDownsample(t *testing.T) {
	ts := series(t, 1234)
	pts := ts.Points()

	got := Downsample(pts, MaxPoints)
	if len(got) != MaxPoints {
		t.Fatalf("len = %d, want %d", len(got), MaxPoints)
	}
	if !got[0].Date.Equal(pts[0].Date) || !got[len(got)-1].Date.Equal(pts[len(pts)-1].Date) {
		t.Error("Downsample must keep the first and last points")
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Date.After(got[i-1].Date) {
			t.Fatalf("points out of order at %d", i)
		}
	}

	short := pts[:10]
	if n := len(Downsample(short, MaxPoints)); n != 10 {
		t.Errorf("short series len = %d, want 10", n)
	}
}

func TestPaddedRange(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64
	}{
		{"positive", []float64{100, 200}, 95, 205},
		{"clamped at zero", []float64{0, 100}, 0, 105},
		{"flat", []float64{50, 50}, 49, 51},
		{"negative", []float64{-20, 0}, -21, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := paddedRange(tt.values)
			if math.Abs(lo-tt.lo) > 1e-9 || math.Abs(hi-tt.hi) > 1e-9 {
				t.Errorf("paddedRange(%v) = (%v, %v), want (%v, %v)", tt.values, lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestRenderSeries(t *testing.T) {
	img, err := RenderSeries(series(t, 800), "TCS.NS")
	if err != nil {
		t.Fatalf("RenderSeries: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestRenderDrawdown(t *testing.T) {
	img, err := RenderDrawdown(series(t, 300), "TCS.NS drawdown")
	if err != nil {
		t.Fatalf("RenderDrawdown: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestRenderTooFewPoints(t *testing.T) {
	if _, err := RenderSeries(series(t, 1), "x"); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("RenderSeries err = %v, want ErrTooFewPoints", err)
	}
	if _, err := RenderDrawdown(analytics.TimeSeries{}, "x"); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("RenderDrawdown err = %v, want ErrTooFewPoints", err)
	}
}
