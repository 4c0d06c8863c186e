package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/nivesh/pkg/models"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// DefaultYahooURL is the Yahoo Finance API host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// HistoryPeriods lists the look-back ranges accepted by GetPriceHistory.
var HistoryPeriods = []string{"1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// YFinance fetches NSE/BSE prices and company profiles from Yahoo Finance.
type YFinance struct {
	*client
	baseURL  string
	profiles *Cache[*models.StockInfo]
}

// NewYFinance creates a Yahoo Finance source. An empty baseURL uses DefaultYahooURL.
func NewYFinance(baseURL string, opts Options) *YFinance {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YFinance{
		client:   newClient("yfinance", opts),
		baseURL:  strings.TrimRight(baseURL, "/"),
		profiles: NewCache[*models.StockInfo](15 * time.Minute),
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	Price struct {
		LongName                   string `json:"longName"`
		ShortName                  string `json:"shortName"`
		Currency                   string `json:"currency"`
		RegularMarketPrice         yfVal  `json:"regularMarketPrice"`
		RegularMarketPreviousClose yfVal  `json:"regularMarketPreviousClose"`
		MarketCap                  yfVal  `json:"marketCap"`
	} `json:"price"`
	SummaryProfile struct {
		Sector              string `json:"sector"`
		Industry            string `json:"industry"`
		Website             string `json:"website"`
		LongBusinessSummary string `json:"longBusinessSummary"`
	} `json:"summaryProfile"`
	SummaryDetail struct {
		TrailingPE       yfVal `json:"trailingPE"`
		ForwardPE        yfVal `json:"forwardPE"`
		DividendYield    yfVal `json:"dividendYield"`
		FiftyTwoWeekHigh yfVal `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  yfVal `json:"fiftyTwoWeekLow"`
		Beta             yfVal `json:"beta"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		PriceToBook yfVal `json:"priceToBook"`
		TrailingEps yfVal `json:"trailingEps"`
		BookValue   yfVal `json:"bookValue"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		CurrentPrice   yfVal `json:"currentPrice"`
		ReturnOnEquity yfVal `json:"returnOnEquity"`
		DebtToEquity   yfVal `json:"debtToEquity"`
		RevenueGrowth  yfVal `json:"revenueGrowth"`
		ProfitMargins  yfVal `json:"profitMargins"`
	} `json:"financialData"`
}

type yfVal struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// GetHistoricalData returns daily (or coarser) candles between from and to.
// Bars without a close are skipped.
func (y *YFinance) GetHistoricalData(ctx context.Context, ticker string, from, to time.Time, tf models.Timeframe) ([]models.OHLCV, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprint(from.Unix()))
	params.Set("period2", fmt.Sprint(to.Unix()))
	params.Set("interval", yfInterval(tf))
	return y.chart(ctx, ticker, params)
}

// GetPriceHistory returns daily candles for a look-back period such as "1y".
func (y *YFinance) GetPriceHistory(ctx context.Context, ticker, period string) ([]models.OHLCV, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("invalid period %q: use one of %s", period, strings.Join(HistoryPeriods, ", "))
	}
	params := url.Values{}
	params.Set("range", period)
	params.Set("interval", "1d")
	return y.chart(ctx, ticker, params)
}

// GetStockInfo returns the company profile and headline fundamentals.
func (y *YFinance) GetStockInfo(ctx context.Context, ticker string) (*models.StockInfo, error) {
	yfTicker := utils.ToYFinanceTicker(ticker)
	if cached, ok := y.profiles.Get(yfTicker); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", y.baseURL, url.PathEscape(yfTicker),
		"price,summaryProfile,summaryDetail,defaultKeyStatistics,financialData")

	var resp yfSummaryResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, &NotFoundError{Source: "yfinance", ID: yfTicker}
		}
		return nil, fmt.Errorf("yfinance info %s: %w", yfTicker, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &NotFoundError{Source: "yfinance", ID: yfTicker}
	}

	r := resp.QuoteSummary.Result[0]
	info := &models.StockInfo{
		Symbol:          yfTicker,
		Name:            coalesce(r.Price.LongName, r.Price.ShortName),
		Exchange:        utils.Exchange(yfTicker),
		Currency:        r.Price.Currency,
		Sector:          r.SummaryProfile.Sector,
		Industry:        r.SummaryProfile.Industry,
		CurrentPrice:    firstNonZero(r.FinancialData.CurrentPrice.Raw, r.Price.RegularMarketPrice.Raw),
		PreviousClose:   r.Price.RegularMarketPreviousClose.Raw,
		MarketCap:       r.Price.MarketCap.Raw,
		TrailingPE:      r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:       r.SummaryDetail.ForwardPE.Raw,
		PriceToBook:     r.DefaultKeyStatistics.PriceToBook.Raw,
		DividendYield:   r.SummaryDetail.DividendYield.Raw * 100, // ratio → percent
		EPS:             r.DefaultKeyStatistics.TrailingEps.Raw,
		BookValue:       r.DefaultKeyStatistics.BookValue.Raw,
		WeekHigh52:      r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		WeekLow52:       r.SummaryDetail.FiftyTwoWeekLow.Raw,
		Beta:            r.SummaryDetail.Beta.Raw,
		ReturnOnEquity:  r.FinancialData.ReturnOnEquity.Raw * 100,
		DebtToEquity:    r.FinancialData.DebtToEquity.Raw,
		RevenueGrowth:   r.FinancialData.RevenueGrowth.Raw * 100,
		ProfitMargins:   r.FinancialData.ProfitMargins.Raw * 100,
		Website:         r.SummaryProfile.Website,
		BusinessSummary: r.SummaryProfile.LongBusinessSummary,
	}

	y.profiles.Set(yfTicker, info)
	return info, nil
}

// --- Helpers ---

// chart queries the v8 chart endpoint. Series are never cached.
func (y *YFinance) chart(ctx context.Context, ticker string, params url.Values) ([]models.OHLCV, error) {
	yfTicker := utils.ToYFinanceTicker(ticker)
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(yfTicker), params.Encode())

	var resp yfChartResponse
	if err := y.getJSON(ctx, endpoint, &resp); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, &NotFoundError{Source: "yfinance", ID: yfTicker}
		}
		return nil, fmt.Errorf("yfinance chart %s: %w", yfTicker, err)
	}
	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return nil, &NotFoundError{Source: "yfinance", ID: yfTicker}
		}
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, &NotFoundError{Source: "yfinance", ID: yfTicker}
	}

	return parseYFCandles(resp.Chart.Result[0]), nil
}

func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue // halted or not yet settled
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).In(utils.IST),
			Close:     *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		if i < len(adjCloses) && adjCloses[i] != nil {
			c.AdjClose = *adjCloses[i]
		}
		candles = append(candles, c)
	}
	return candles
}

func yfInterval(tf models.Timeframe) string {
	switch tf {
	case models.Timeframe1Week:
		return "1wk"
	case models.Timeframe1Mon:
		return "1mo"
	default:
		return "1d"
	}
}

// ValidPeriod reports whether p is one of HistoryPeriods.
func ValidPeriod(p string) bool {
	for _, v := range HistoryPeriods {
		if p == v {
			return true
		}
	}
	return false
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
