// Package analytics turns raw price and NAV history into risk and return
// metrics: CAGR, annualized volatility, Sharpe ratio and maximum drawdown.
package analytics

import (
	"fmt"
	"math"
	"time"
)

// Point is a single dated observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TimeSeries is an immutable, strictly ascending sequence of points with
// finite non-negative values. The zero value is an empty series.
type TimeSeries struct {
	points []Point
}

// NewTimeSeries validates and copies points into a TimeSeries.
func NewTimeSeries(points []Point) (TimeSeries, error) {
	cp := make([]Point, len(points))
	copy(cp, points)

	for i, p := range cp {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Value < 0 {
			return TimeSeries{}, fmt.Errorf("%w: value %v at %s", ErrInvalidSeries, p.Value, p.Date.Format(time.DateOnly))
		}
		if i > 0 && !p.Date.After(cp[i-1].Date) {
			return TimeSeries{}, fmt.Errorf("%w: %s does not follow %s", ErrInvalidSeries,
				p.Date.Format(time.DateOnly), cp[i-1].Date.Format(time.DateOnly))
		}
	}
	return TimeSeries{points: cp}, nil
}

// Len returns the number of points.
func (ts TimeSeries) Len() int { return len(ts.points) }

// Empty reports whether the series has no points.
func (ts TimeSeries) Empty() bool { return len(ts.points) == 0 }

// At returns the i-th point. It panics if i is out of range.
func (ts TimeSeries) At(i int) Point { return ts.points[i] }

// First returns the earliest point and false if the series is empty.
func (ts TimeSeries) First() (Point, bool) {
	if len(ts.points) == 0 {
		return Point{}, false
	}
	return ts.points[0], true
}

// Last returns the latest point and false if the series is empty.
func (ts TimeSeries) Last() (Point, bool) {
	if len(ts.points) == 0 {
		return Point{}, false
	}
	return ts.points[len(ts.points)-1], true
}

// Points returns a copy of the underlying points.
func (ts TimeSeries) Points() []Point {
	cp := make([]Point, len(ts.points))
	copy(cp, ts.points)
	return cp
}

// Values returns a copy of the values in date order.
func (ts TimeSeries) Values() []float64 {
	vals := make([]float64, len(ts.points))
	for i, p := range ts.points {
		vals[i] = p.Value
	}
	return vals
}

// Tail returns the series made of the last n points, or the whole series
// when n exceeds its length.
func (ts TimeSeries) Tail(n int) TimeSeries {
	if n >= len(ts.points) {
		return ts
	}
	if n <= 0 {
		return TimeSeries{}
	}
	return TimeSeries{points: ts.points[len(ts.points)-n:]}
}
