package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/nivesh/pkg/models"
)

// EquityHistory fetches daily price bars for an exchange-suffixed ticker.
type EquityHistory interface {
	GetHistoricalData(ctx context.Context, symbol string, from, to time.Time, tf models.Timeframe) ([]models.OHLCV, error)
}

// NAVHistory fetches the published NAV history of a scheme.
type NAVHistory interface {
	GetNAVHistory(ctx context.Context, schemeCode string) ([]models.NAVRecord, error)
}

// SeriesFetcher returns a normalized series for an identifier covering
// roughly the last years of history.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, identifier string, years int) (TimeSeries, error)
}

// EquitySeries adapts an EquityHistory into a SeriesFetcher.
type EquitySeries struct {
	Source EquityHistory
	Now    func() time.Time // defaults to time.Now
}

// FetchSeries implements SeriesFetcher.
func (s EquitySeries) FetchSeries(ctx context.Context, symbol string, years int) (TimeSeries, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	to := now()
	from := to.AddDate(-years, 0, 0)

	bars, err := s.Source.GetHistoricalData(ctx, symbol, from, to, models.Timeframe1Day)
	if err != nil {
		return TimeSeries{}, fmt.Errorf("fetch price history for %s: %w", symbol, err)
	}
	return NormalizeOHLCV(bars)
}

// NAVSeries adapts a NAVHistory into a SeriesFetcher. The whole published
// history is used regardless of years.
type NAVSeries struct {
	Source NAVHistory
}

// FetchSeries implements SeriesFetcher.
func (s NAVSeries) FetchSeries(ctx context.Context, schemeCode string, _ int) (TimeSeries, error) {
	records, err := s.Source.GetNAVHistory(ctx, schemeCode)
	if err != nil {
		return TimeSeries{}, fmt.Errorf("fetch NAV history for %s: %w", schemeCode, err)
	}
	return NormalizeNAV(records)
}

// SeriesFetcherFunc adapts a function into a SeriesFetcher.
type SeriesFetcherFunc func(ctx context.Context, identifier string, years int) (TimeSeries, error)

// FetchSeries implements SeriesFetcher.
func (f SeriesFetcherFunc) FetchSeries(ctx context.Context, identifier string, years int) (TimeSeries, error) {
	return f(ctx, identifier, years)
}
