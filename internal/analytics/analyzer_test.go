package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/nivesh/pkg/models"
)

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func staticFetcher(ts TimeSeries, err error) SeriesFetcher {
	return SeriesFetcherFunc(func(context.Context, string, int) (TimeSeries, error) {
		return ts, err
	})
}

func newTestAnalyzer(equity, mf SeriesFetcher) *Analyzer {
	return NewAnalyzer(AnalyzerConfig{
		Equity:     equity,
		MutualFund: mf,
		Now:        func() time.Time { return fixedNow },
		Logger:     quietLogger(),
	})
}

type notFoundErr struct{}

func (notFoundErr) Error() string  { return "symbol not found" }
func (notFoundErr) NotFound() bool { return true }

func TestAnalyzeBuildsReport(t *testing.T) {
	ts := makeSeries(t, append(linear(252, 100, 200), constant(48, 200)...)...)
	var gotID string
	var gotYears int
	equity := SeriesFetcherFunc(func(_ context.Context, id string, years int) (TimeSeries, error) {
		gotID, gotYears = id, years
		return ts, nil
	})

	a := newTestAnalyzer(equity, nil)
	report, err := a.Analyze(context.Background(), Request{Identifier: "reliance", AssetClass: "stock"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if gotID != "RELIANCE.NS" || gotYears != DefaultHorizonYears {
		t.Errorf("fetcher called with (%q, %d), want (RELIANCE.NS, %d)", gotID, gotYears, DefaultHorizonYears)
	}
	if report.Identifier != "RELIANCE.NS" || report.AssetClass != Equity {
		t.Errorf("identity = %s/%s", report.Identifier, report.AssetClass)
	}
	if report.Label != "Stock: RELIANCE.NS" {
		t.Errorf("Label = %q", report.Label)
	}
	if report.DataPoints != 300 {
		t.Errorf("DataPoints = %d, want 300", report.DataPoints)
	}
	if report.DataStartDate != "2020-01-01" {
		t.Errorf("DataStartDate = %s, want 2020-01-01", report.DataStartDate)
	}
	if report.DataEndDate != "2020-10-26" {
		t.Errorf("DataEndDate = %s, want 2020-10-26", report.DataEndDate)
	}
	if report.LatestValue != 200 {
		t.Errorf("LatestValue = %v, want 200", report.LatestValue)
	}
	if report.Assumptions.RiskFreeRatePercent != 7 || report.Assumptions.TradingDaysPerYear != 252 {
		t.Errorf("Assumptions = %+v", report.Assumptions)
	}
	if report.Disclaimer != Disclaimer {
		t.Errorf("Disclaimer = %q", report.Disclaimer)
	}
	if !report.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, fixedNow)
	}

	if report.Metrics.CAGR1Y != CAGR(ts, 1) {
		t.Errorf("CAGR1Y = %v, want %v", report.Metrics.CAGR1Y, CAGR(ts, 1))
	}
	if v, _ := report.Metrics.MaxDrawdown.Float64(); v != 0 {
		t.Errorf("MaxDrawdown = %v, want 0", v)
	}
	for name, m := range map[string]MetricResult{
		"CAGR3Y":               report.Metrics.CAGR3Y,
		"CAGR5Y":               report.Metrics.CAGR5Y,
		"AnnualizedVolatility": report.Metrics.AnnualizedVolatility,
		"SharpeRatio":          report.Metrics.SharpeRatio,
	} {
		if !m.Available() {
			t.Errorf("%s should be available for 300 points", name)
		}
	}
}

func TestAnalyzeMutualFundPartialReport(t *testing.T) {
	// 12 points clears the analysis floor but not the volatility floor.
	ts := makeSeries(t, linear(12, 10, 11)...)
	a := newTestAnalyzer(nil, staticFetcher(ts, nil))

	report, err := a.Analyze(context.Background(), Request{Identifier: " 119551 ", AssetClass: "mutual_fund", HorizonYears: 3})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if report.Label != "Mutual Fund (scheme code: 119551)" {
		t.Errorf("Label = %q", report.Label)
	}
	wantUnavailable(t, "AnnualizedVolatility", report.Metrics.AnnualizedVolatility)
	wantUnavailable(t, "SharpeRatio", report.Metrics.SharpeRatio)
	mustValue(t, "CAGR5Y", report.Metrics.CAGR5Y)

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"sharpe_ratio":"Insufficient data"`) {
		t.Errorf("JSON missing marker: %s", data)
	}
	if !strings.Contains(string(data), `"asset_class":"mutual_fund"`) {
		t.Errorf("JSON missing asset class: %s", data)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	five := makeSeries(t, 1, 2, 3, 4, 5)

	tests := []struct {
		name     string
		req      Request
		fetcher  SeriesFetcher
		wantKind ErrorKind
		wantMsg  string
	}{
		{
			name:     "invalid asset class",
			req:      Request{Identifier: "TCS", AssetClass: "bond"},
			wantKind: KindInvalidAssetClass,
			wantMsg:  "Invalid investment_type 'bond'. Use 'stock' or 'mutual_fund'.",
		},
		{
			name:     "invalid scheme code",
			req:      Request{Identifier: "HDFC-TOP-100", AssetClass: "mutual_fund"},
			wantKind: KindInvalidIdentifier,
			wantMsg:  "HDFC-TOP-100",
		},
		{
			name:     "invalid ticker",
			req:      Request{Identifier: "", AssetClass: "stock"},
			wantKind: KindInvalidIdentifier,
		},
		{
			name:     "no data",
			req:      Request{Identifier: "TCS", AssetClass: "stock"},
			fetcher:  staticFetcher(TimeSeries{}, ErrNoData),
			wantKind: KindNoData,
			wantMsg:  "TCS.NS",
		},
		{
			name:     "not found upstream",
			req:      Request{Identifier: "NOPE", AssetClass: "stock"},
			fetcher:  staticFetcher(TimeSeries{}, notFoundErr{}),
			wantKind: KindNoData,
		},
		{
			name:     "insufficient data",
			req:      Request{Identifier: "TCS", AssetClass: "stock"},
			fetcher:  staticFetcher(five, nil),
			wantKind: KindInsufficientData,
			wantMsg:  "5 points",
		},
		{
			name:     "adapter fault",
			req:      Request{Identifier: "TCS", AssetClass: "stock"},
			fetcher:  staticFetcher(TimeSeries{}, errors.New("connection reset")),
			wantKind: KindAdapterFault,
			wantMsg:  "Analysis failed for 'TCS.NS': connection reset",
		},
		{
			name: "adapter panic",
			req:  Request{Identifier: "TCS", AssetClass: "stock"},
			fetcher: SeriesFetcherFunc(func(context.Context, string, int) (TimeSeries, error) {
				panic("boom")
			}),
			wantKind: KindAdapterFault,
			wantMsg:  "boom",
		},
		{
			name:     "no fetcher configured",
			req:      Request{Identifier: "119551", AssetClass: "mf"},
			wantKind: KindAdapterFault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			var equity SeriesFetcher
			if tt.fetcher != nil {
				equity = SeriesFetcherFunc(func(ctx context.Context, id string, years int) (TimeSeries, error) {
					calls++
					return tt.fetcher.FetchSeries(ctx, id, years)
				})
			}
			a := newTestAnalyzer(equity, nil)

			report, err := a.Analyze(context.Background(), tt.req)
			if report != nil {
				t.Fatalf("Analyze() returned a report alongside an error")
			}
			if got := KindOf(err); got != tt.wantKind {
				t.Fatalf("KindOf(err) = %q, want %q (err: %v)", got, tt.wantKind, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
			if tt.wantKind == KindInvalidAssetClass && calls != 0 {
				t.Error("fetcher should not be called for an invalid asset class")
			}

			rep := AsErrorReport(err, tt.req.Identifier)
			if rep.Error == "" || rep.Kind != tt.wantKind {
				t.Errorf("AsErrorReport = %+v", rep)
			}
		})
	}
}

func TestAnalyzeInsufficientDataCarriesCount(t *testing.T) {
	a := newTestAnalyzer(staticFetcher(makeSeries(t, 1, 2, 3), nil), nil)
	_, err := a.Analyze(context.Background(), Request{Identifier: "TCS", AssetClass: "stock"})

	var ae *Error
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not *Error", err)
	}
	if ae.Points != 3 {
		t.Errorf("Points = %d, want 3", ae.Points)
	}
	if !errors.Is(err, ErrInsufficientData) {
		t.Error("error should wrap ErrInsufficientData")
	}
}

func TestAnalyzeFetchTimeout(t *testing.T) {
	hung := SeriesFetcherFunc(func(ctx context.Context, _ string, _ int) (TimeSeries, error) {
		<-ctx.Done()
		return TimeSeries{}, ctx.Err()
	})
	a := NewAnalyzer(AnalyzerConfig{Equity: hung, FetchTimeout: 20 * time.Millisecond, Logger: quietLogger()})

	start := time.Now()
	_, err := a.Analyze(context.Background(), Request{Identifier: "TCS", AssetClass: "stock"})
	if KindOf(err) != KindAdapterFault {
		t.Fatalf("KindOf(err) = %q, want adapter_fault", KindOf(err))
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should wrap context.DeadlineExceeded: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("fetch timeout was not applied")
	}
}

func TestAnalyzeHonoursCallerCancellation(t *testing.T) {
	hung := SeriesFetcherFunc(func(ctx context.Context, _ string, _ int) (TimeSeries, error) {
		<-ctx.Done()
		return TimeSeries{}, ctx.Err()
	})
	a := newTestAnalyzer(hung, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Analyze(ctx, Request{Identifier: "TCS", AssetClass: "stock"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestAnalyzeCustomRiskFreeRate(t *testing.T) {
	ts := makeSeries(t, alternating(30, 100, 0.01)...)
	a := NewAnalyzer(AnalyzerConfig{Equity: staticFetcher(ts, nil), RiskFreeRate: 0.065, Logger: quietLogger()})

	report, err := a.Analyze(context.Background(), Request{Identifier: "TCS", AssetClass: "stock"})
	if err != nil {
		t.Fatal(err)
	}
	if report.Assumptions.RiskFreeRatePercent != 6.5 {
		t.Errorf("RiskFreeRatePercent = %v, want 6.5", report.Assumptions.RiskFreeRatePercent)
	}
	if report.Metrics.SharpeRatio != SharpeRatio(ts, 0.065) {
		t.Errorf("SharpeRatio = %v, want %v", report.Metrics.SharpeRatio, SharpeRatio(ts, 0.065))
	}
}

func TestAnalyzeConcurrentRequests(t *testing.T) {
	ts := makeSeries(t, alternating(400, 100, 0.02)...)
	a := newTestAnalyzer(staticFetcher(ts, nil), nil)

	want, err := a.Analyze(context.Background(), Request{Identifier: "INFY", AssetClass: "stock"})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := a.Analyze(context.Background(), Request{Identifier: "INFY", AssetClass: "stock"})
			if err != nil {
				t.Error(err)
				return
			}
			if got.Metrics != want.Metrics {
				t.Errorf("concurrent report differs: %+v vs %+v", got.Metrics, want.Metrics)
			}
		}()
	}
	wg.Wait()
}

// ── Source adapters ──

type fakeEquityHistory struct {
	from, to time.Time
	bars     []models.OHLCV
	err      error
}

func (f *fakeEquityHistory) GetHistoricalData(_ context.Context, _ string, from, to time.Time, _ models.Timeframe) ([]models.OHLCV, error) {
	f.from, f.to = from, to
	return f.bars, f.err
}

type fakeNAVHistory []models.NAVRecord

func (f fakeNAVHistory) GetNAVHistory(context.Context, string) ([]models.NAVRecord, error) {
	return f, nil
}

func TestEquitySeriesRequestsHorizon(t *testing.T) {
	src := &fakeEquityHistory{bars: []models.OHLCV{
		{Timestamp: fixedNow.AddDate(0, 0, -1), Close: 10},
		{Timestamp: fixedNow, Close: 11},
	}}
	s := EquitySeries{Source: src, Now: func() time.Time { return fixedNow }}

	ts, err := s.FetchSeries(context.Background(), "TCS.NS", 3)
	if err != nil {
		t.Fatalf("FetchSeries() error: %v", err)
	}
	if ts.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ts.Len())
	}
	if !src.to.Equal(fixedNow) || !src.from.Equal(fixedNow.AddDate(-3, 0, 0)) {
		t.Errorf("requested %v..%v", src.from, src.to)
	}
}

func TestEquitySeriesEmptyIsNoData(t *testing.T) {
	s := EquitySeries{Source: &fakeEquityHistory{}}
	if _, err := s.FetchSeries(context.Background(), "TCS.NS", 5); !errors.Is(err, ErrNoData) {
		t.Errorf("FetchSeries() error = %v, want ErrNoData", err)
	}
}

func TestNAVSeries(t *testing.T) {
	s := NAVSeries{Source: fakeNAVHistory{
		{Date: "02-01-2024", NAV: "11"},
		{Date: "01-01-2024", NAV: "10"},
	}}
	ts, err := s.FetchSeries(context.Background(), "119551", 5)
	if err != nil {
		t.Fatalf("FetchSeries() error: %v", err)
	}
	if got := ts.Values(); len(got) != 2 || got[0] != 10 || got[1] != 11 {
		t.Errorf("Values() = %v, want [10 11]", got)
	}
}

func TestSeriesSkipsAnalysisFloor(t *testing.T) {
	short := makeSeries(t, constant(3, 50)...)
	a := newTestAnalyzer(nil, staticFetcher(short, nil))

	id, ts, err := a.Series(context.Background(), Request{Identifier: " 119597 ", AssetClass: "mf"})
	if err != nil {
		t.Fatalf("Series() error: %v", err)
	}
	if id != "119597" || ts.Len() != 3 {
		t.Errorf("Series() = (%q, %d points), want (119597, 3)", id, ts.Len())
	}

	if _, _, err := a.Series(context.Background(), Request{Identifier: "TCS", AssetClass: "stock"}); KindOf(err) != KindAdapterFault {
		t.Errorf("missing equity source: kind = %q, want %q", KindOf(err), KindAdapterFault)
	}
}
