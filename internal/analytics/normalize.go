package analytics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/nivesh/pkg/models"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// NormalizeOHLCV keeps the close of each bar, keyed by its IST trading day.
// Bars with a negative or non-finite close are dropped. When two bars fall
// on the same day the later one in input order wins.
func NormalizeOHLCV(bars []models.OHLCV) (TimeSeries, error) {
	if len(bars) == 0 {
		return TimeSeries{}, fmt.Errorf("%w: empty price history", ErrNoData)
	}

	byDay := make(map[int64]float64, len(bars))
	for _, b := range bars {
		if !validValue(b.Close) || b.Timestamp.IsZero() {
			continue
		}
		byDay[utils.DayIST(b.Timestamp).Unix()] = b.Close
	}
	return build(byDay, len(bars))
}

// NormalizeNAV parses day-month-year dates and decimal NAV strings. Records
// that fail to parse are dropped; duplicates keep the last occurrence.
func NormalizeNAV(records []models.NAVRecord) (TimeSeries, error) {
	if len(records) == 0 {
		return TimeSeries{}, fmt.Errorf("%w: empty NAV history", ErrNoData)
	}

	byDay := make(map[int64]float64, len(records))
	for _, r := range records {
		day, err := utils.ParseAMFIDate(strings.TrimSpace(r.Date))
		if err != nil {
			continue
		}
		nav, err := ParseNAV(r.NAV)
		if err != nil {
			continue
		}
		byDay[day.Unix()] = nav
	}
	return build(byDay, len(records))
}

// ParseNAV parses a published NAV string such as "10.5234" or "1,024.10".
func ParseNAV(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse NAV %q: %w", s, err)
	}
	if !validValue(v) {
		return 0, fmt.Errorf("parse NAV %q: out of range", s)
	}
	return v, nil
}

// RequireAnalyzable returns an ErrInsufficientData error when ts is below
// MinAnalysisPoints.
func RequireAnalyzable(ts TimeSeries) error {
	if ts.Len() < MinAnalysisPoints {
		return fmt.Errorf("%w: %d points, need %d", ErrInsufficientData, ts.Len(), MinAnalysisPoints)
	}
	return nil
}

// build sorts day-keyed values (Unix seconds of IST midnight) into a series.
func build(byDay map[int64]float64, total int) (TimeSeries, error) {
	if len(byDay) == 0 {
		return TimeSeries{}, fmt.Errorf("%w: none of %d records were usable", ErrNoData, total)
	}

	points := make([]Point, 0, len(byDay))
	for day, v := range byDay {
		points = append(points, Point{Date: time.Unix(day, 0).In(utils.IST), Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return NewTimeSeries(points)
}

func validValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
