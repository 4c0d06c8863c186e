package analytics

import (
	"testing"
	"time"

	"github.com/seenimoa/nivesh/pkg/utils"
)

var seriesStart = time.Date(2020, 1, 1, 0, 0, 0, 0, utils.IST)

// makeSeries builds a daily series from values starting at seriesStart.
func makeSeries(t testing.TB, values ...float64) TimeSeries {
	t.Helper()
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Date: seriesStart.AddDate(0, 0, i), Value: v}
	}
	ts, err := NewTimeSeries(points)
	if err != nil {
		t.Fatalf("NewTimeSeries: %v", err)
	}
	return ts
}

// linear returns n values rising evenly from lo to hi inclusive.
func linear(n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// alternating returns n+1 values whose returns alternate +r, -r.
func alternating(n int, start, r float64) []float64 {
	out := []float64{start}
	for i := 0; i < n; i++ {
		step := r
		if i%2 == 1 {
			step = -r
		}
		out = append(out, out[len(out)-1]*(1+step))
	}
	return out
}

func mustValue(t *testing.T, name string, m MetricResult) float64 {
	t.Helper()
	v, ok := m.Float64()
	if !ok {
		t.Fatalf("%s: got %s, want a value", name, InsufficientData)
	}
	return v
}

func wantUnavailable(t *testing.T, name string, m MetricResult) {
	t.Helper()
	if m.Available() {
		t.Errorf("%s = %s, want %s", name, m, InsufficientData)
	}
}
