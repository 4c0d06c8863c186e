package analytics

import (
	"math"

	"github.com/seenimoa/nivesh/pkg/utils"
)

const (
	// TradingDaysPerYear is the annualization convention for daily series.
	TradingDaysPerYear = 252

	// RiskFreeRate is the Indian reference rate (~10y G-sec yield) used by SharpeRatio.
	RiskFreeRate = 0.07

	// MinAnalysisPoints is the request-level floor checked before any metric runs.
	MinAnalysisPoints = 10

	// MinVolatilityPoints is the per-metric floor for volatility and Sharpe.
	// It is independent of MinAnalysisPoints.
	MinVolatilityPoints = 30

	// MinCAGRPoints and MinDrawdownPoints are the per-metric floors for CAGR and drawdown.
	MinCAGRPoints     = 2
	MinDrawdownPoints = 2

	// DefaultHorizonYears is how much history an analysis requests.
	DefaultHorizonYears = 5
)

// ════════════════════════════════════════════════════════════════════
// CAGR (Compound Annual Growth Rate)
// ════════════════════════════════════════════════════════════════════

// CAGR returns the compound annual growth rate, in percent, over the last
// years×252 points of ts.
//
// When ts holds fewer than years×252 points the whole series is used and the
// horizon becomes len(ts)/252 years. Short histories therefore report a
// growth rate over what is available instead of failing. Keep it that way:
// callers rely on cagr_3y/cagr_5y being filled for younger instruments.
func CAGR(ts TimeSeries, years int) MetricResult {
	if ts.Len() < MinCAGRPoints || years <= 0 {
		return Unavailable()
	}

	window := years * TradingDaysPerYear
	effectiveYears := float64(years)
	if ts.Len() < window {
		effectiveYears = float64(ts.Len()) / TradingDaysPerYear
	} else {
		ts = ts.Tail(window)
	}

	start := ts.points[0].Value
	end := ts.points[len(ts.points)-1].Value
	if start <= 0 {
		return Unavailable()
	}

	growth := math.Pow(end/start, 1/effectiveYears) - 1
	return percent(growth)
}

// ════════════════════════════════════════════════════════════════════
// Volatility & Sharpe
// ════════════════════════════════════════════════════════════════════

// AnnualizedVolatility returns the sample standard deviation of period
// returns scaled by √252, in percent.
func AnnualizedVolatility(ts TimeSeries) MetricResult {
	if ts.Len() < MinVolatilityPoints {
		return Unavailable()
	}
	returns, ok := Returns(ts)
	if !ok || len(returns) < 2 {
		return Unavailable()
	}
	return percent(stddev(returns) * math.Sqrt(TradingDaysPerYear))
}

// SharpeRatio returns (annualized mean return − riskFreeRate) / annualized
// volatility. riskFreeRate is a fraction, e.g. 0.07.
func SharpeRatio(ts TimeSeries, riskFreeRate float64) MetricResult {
	if ts.Len() < MinVolatilityPoints {
		return Unavailable()
	}
	returns, ok := Returns(ts)
	if !ok || len(returns) < 2 {
		return Unavailable()
	}

	sd := stddev(returns)
	if sd == 0 || math.IsNaN(sd) {
		return Unavailable()
	}

	annReturn := mean(returns) * TradingDaysPerYear
	annVol := sd * math.Sqrt(TradingDaysPerYear)
	return rounded((annReturn - riskFreeRate) / annVol)
}

// Returns computes simple period-over-period returns. It reports false when
// a previous value is zero and a return is undefined.
func Returns(ts TimeSeries) ([]float64, bool) {
	if ts.Len() < 2 {
		return nil, true
	}
	returns := make([]float64, ts.Len()-1)
	for i := 1; i < ts.Len(); i++ {
		prev := ts.points[i-1].Value
		if prev == 0 {
			return nil, false
		}
		returns[i-1] = (ts.points[i].Value - prev) / prev
	}
	return returns, true
}

// ════════════════════════════════════════════════════════════════════
// Maximum Drawdown
// ════════════════════════════════════════════════════════════════════

// MaxDrawdown returns the deepest decline from a running peak, in percent.
// The result is always ≤ 0.
func MaxDrawdown(ts TimeSeries) MetricResult {
	if ts.Len() < MinDrawdownPoints {
		return Unavailable()
	}

	peak := ts.points[0].Value
	worst := 0.0
	defined := false
	for _, p := range ts.points {
		if p.Value > peak {
			peak = p.Value
		}
		if peak <= 0 {
			continue
		}
		defined = true
		if dd := (p.Value - peak) / peak; dd < worst {
			worst = dd
		}
	}
	if !defined {
		return Unavailable()
	}
	return percent(worst)
}

// DrawdownCurve returns the drawdown fraction at every point. Points that
// precede any positive peak are reported as 0.
func DrawdownCurve(ts TimeSeries) []Point {
	curve := make([]Point, ts.Len())
	peak := 0.0
	for i, p := range ts.points {
		if p.Value > peak {
			peak = p.Value
		}
		dd := 0.0
		if peak > 0 {
			dd = (p.Value - peak) / peak
		}
		curve[i] = Point{Date: p.Date, Value: dd}
	}
	return curve
}

// ────────────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────────────

func percent(fraction float64) MetricResult {
	return rounded(fraction * 100)
}

func rounded(v float64) MetricResult {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable()
	}
	return Computed(utils.Round(v, 2))
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1)) // sample stddev
}
