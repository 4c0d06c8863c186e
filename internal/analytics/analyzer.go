package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/nivesh/pkg/utils"
)

// Disclaimer accompanies every report.
const Disclaimer = "Past performance is not indicative of future results. This is for informational purposes only."

// Request describes one analysis.
type Request struct {
	Identifier   string `json:"identifier"`
	AssetClass   string `json:"investment_type"`
	HorizonYears int    `json:"horizon_years,omitempty"` // 0 means DefaultHorizonYears
}

// Metrics holds the six metric slots of a report.
type Metrics struct {
	CAGR1Y               MetricResult `json:"cagr_1y_percent"`
	CAGR3Y               MetricResult `json:"cagr_3y_percent"`
	CAGR5Y               MetricResult `json:"cagr_5y_percent"`
	AnnualizedVolatility MetricResult `json:"annualized_volatility_percent"`
	SharpeRatio          MetricResult `json:"sharpe_ratio"`
	MaxDrawdown          MetricResult `json:"max_drawdown_percent"`
}

// Assumptions records the constants a report was computed with.
type Assumptions struct {
	RiskFreeRatePercent float64 `json:"risk_free_rate_percent"`
	TradingDaysPerYear  int     `json:"trading_days_per_year"`
}

// Report is the result of a successful analysis.
type Report struct {
	Identifier    string      `json:"identifier"`
	AssetClass    AssetClass  `json:"asset_class"`
	Label         string      `json:"label"`
	DataPoints    int         `json:"data_points"`
	DataStartDate string      `json:"data_start_date"`
	DataEndDate   string      `json:"data_end_date"`
	LatestValue   float64     `json:"latest_value"`
	Metrics       Metrics     `json:"metrics"`
	Assumptions   Assumptions `json:"assumptions"`
	Disclaimer    string      `json:"disclaimer"`
	GeneratedAt   time.Time   `json:"generated_at"`
}

// AnalyzerConfig wires an Analyzer.
type AnalyzerConfig struct {
	Equity     SeriesFetcher
	MutualFund SeriesFetcher

	// RiskFreeRate is an annual fraction; zero means RiskFreeRate.
	RiskFreeRate float64

	// FetchTimeout bounds each series fetch; zero leaves only the caller's deadline.
	FetchTimeout time.Duration

	Now    func() time.Time
	Logger *logrus.Logger
}

// Analyzer runs fetch → normalize → gate → metrics → assemble for one
// request at a time. It holds no per-request state and is safe for
// concurrent use.
type Analyzer struct {
	fetchers     map[AssetClass]SeriesFetcher
	riskFreeRate float64
	fetchTimeout time.Duration
	now          func() time.Time
	log          *logrus.Entry
}

// NewAnalyzer creates an Analyzer from cfg.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	a := &Analyzer{
		fetchers:     make(map[AssetClass]SeriesFetcher, 2),
		riskFreeRate: cfg.RiskFreeRate,
		fetchTimeout: cfg.FetchTimeout,
		now:          cfg.Now,
	}
	if cfg.Equity != nil {
		a.fetchers[Equity] = cfg.Equity
	}
	if cfg.MutualFund != nil {
		a.fetchers[MutualFund] = cfg.MutualFund
	}
	if a.riskFreeRate == 0 {
		a.riskFreeRate = RiskFreeRate
	}
	if a.now == nil {
		a.now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	a.log = log.WithField("component", "analyzer")
	return a
}

// Analyze produces a report for req. Every failure is returned as *Error.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	id, class, ts, err := a.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	log := a.log.WithFields(logrus.Fields{"identifier": id, "asset_class": class})
	if err := RequireAnalyzable(ts); err != nil {
		log.WithField("points", ts.Len()).Info("Series below analysis floor")
		return nil, &Error{Kind: KindInsufficientData, Identifier: id, AssetClass: class.String(), Points: ts.Len(), Cause: err}
	}

	report := a.assemble(id, class, ts)
	log.WithField("points", report.DataPoints).Info("Analysis complete")
	return report, nil
}

// Series returns the normalized series behind req and its canonical
// identifier, without the analysis floor or metrics. Failures are *Error.
func (a *Analyzer) Series(ctx context.Context, req Request) (string, TimeSeries, error) {
	id, _, ts, err := a.resolve(ctx, req)
	return id, ts, err
}

func (a *Analyzer) resolve(ctx context.Context, req Request) (string, AssetClass, TimeSeries, error) {
	class, err := ParseAssetClass(req.AssetClass)
	if err != nil {
		return "", "", TimeSeries{}, &Error{Kind: KindInvalidAssetClass, Identifier: req.Identifier, AssetClass: req.AssetClass}
	}

	id, err := class.NormalizeIdentifier(req.Identifier)
	if err != nil {
		return "", class, TimeSeries{}, &Error{Kind: KindInvalidIdentifier, Identifier: req.Identifier, AssetClass: class.String(), Cause: err}
	}

	fetcher, ok := a.fetchers[class]
	if !ok {
		return id, class, TimeSeries{}, &Error{Kind: KindAdapterFault, Identifier: id, AssetClass: class.String(),
			Cause: fmt.Errorf("no data source configured for %s", class)}
	}

	years := req.HorizonYears
	if years <= 0 {
		years = DefaultHorizonYears
	}

	log := a.log.WithFields(logrus.Fields{"identifier": id, "asset_class": class})
	log.Debug("Fetching series")

	ts, err := a.fetch(ctx, fetcher, id, years)
	if err != nil {
		if isNoData(err) {
			log.WithError(err).Info("No data for identifier")
			return id, class, TimeSeries{}, &Error{Kind: KindNoData, Identifier: id, AssetClass: class.String(), Cause: err}
		}
		log.WithError(err).Warn("Series fetch failed")
		return id, class, TimeSeries{}, &Error{Kind: KindAdapterFault, Identifier: id, AssetClass: class.String(), Cause: err}
	}
	return id, class, ts, nil
}

// fetch runs the source call under the fetch timeout and turns panics into errors.
func (a *Analyzer) fetch(ctx context.Context, f SeriesFetcher, id string, years int) (ts TimeSeries, err error) {
	if a.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			ts, err = TimeSeries{}, fmt.Errorf("data source panic: %v", r)
		}
	}()

	ts, err = f.FetchSeries(ctx, id, years)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return ts, err
}

// assemble computes every metric independently and builds the report.
func (a *Analyzer) assemble(id string, class AssetClass, ts TimeSeries) *Report {
	var m Metrics
	var g errgroup.Group
	g.Go(func() error { m.CAGR1Y = CAGR(ts, 1); return nil })
	g.Go(func() error { m.CAGR3Y = CAGR(ts, 3); return nil })
	g.Go(func() error { m.CAGR5Y = CAGR(ts, 5); return nil })
	g.Go(func() error { m.AnnualizedVolatility = AnnualizedVolatility(ts); return nil })
	g.Go(func() error { m.SharpeRatio = SharpeRatio(ts, a.riskFreeRate); return nil })
	g.Go(func() error { m.MaxDrawdown = MaxDrawdown(ts); return nil })
	_ = g.Wait()

	first, _ := ts.First()
	last, _ := ts.Last()

	return &Report{
		Identifier:    id,
		AssetClass:    class,
		Label:         class.Label(id),
		DataPoints:    ts.Len(),
		DataStartDate: utils.FormatDateIST(first.Date),
		DataEndDate:   utils.FormatDateIST(last.Date),
		LatestValue:   utils.Round(last.Value, 2),
		Metrics:       m,
		Assumptions: Assumptions{
			RiskFreeRatePercent: utils.Round(a.riskFreeRate*100, 4),
			TradingDaysPerYear:  TradingDaysPerYear,
		},
		Disclaimer:  Disclaimer,
		GeneratedAt: a.now().UTC(),
	}
}
