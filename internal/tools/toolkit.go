// Package tools exposes nivesh's market data and analytics as actions an
// assistant can call. Every action returns a JSON-ready struct; the llm
// bindings in this package turn failures into {"error": ...} payloads.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/nivesh/internal/analytics"
	"github.com/seenimoa/nivesh/internal/datasource"
	"github.com/seenimoa/nivesh/pkg/models"
	"github.com/seenimoa/nivesh/pkg/utils"
)

const (
	recentRows       = 30
	newsResults      = 8
	snippetChars     = 400
	summaryChars     = 500
	defaultPeriod    = "1y"
	fetchedAtLayout  = "2006-01-02 15:04:05"
	schemeSearchNote = "Use the scheme code with get_mf_details to fetch NAV and details."
)

// ── Source interfaces ──

// StockSource provides equity profiles and price history.
type StockSource interface {
	GetStockInfo(ctx context.Context, symbol string) (*models.StockInfo, error)
	GetPriceHistory(ctx context.Context, symbol, period string) ([]models.OHLCV, error)
}

// FinancialsSource provides financial statements.
type FinancialsSource interface {
	GetFinancials(ctx context.Context, symbol string) (*models.Financials, error)
}

// FundSource provides mutual fund search, quotes and NAV history.
type FundSource interface {
	SearchSchemes(ctx context.Context, query string, limit int) ([]models.Scheme, int, error)
	GetSchemeQuote(ctx context.Context, schemeCode string) (*models.SchemeQuote, error)
	GetNAVHistory(ctx context.Context, schemeCode string) ([]models.NAVRecord, error)
}

// WebSearcher runs web searches.
type WebSearcher interface {
	Search(ctx context.Context, req datasource.SearchRequest) ([]models.SearchResult, error)
}

// NewsSearcher searches recent headlines.
type NewsSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.NewsArticle, error)
}

// InvestmentAnalyzer computes risk/return reports.
type InvestmentAnalyzer interface {
	Analyze(ctx context.Context, req analytics.Request) (*analytics.Report, error)
}

// Toolkit bundles the sources behind every action. Nil sources make the
// corresponding actions fail with a descriptive error.
type Toolkit struct {
	Stocks     StockSource
	Financials FinancialsSource
	Funds      FundSource
	Web        WebSearcher
	News       NewsSearcher
	Analyzer   InvestmentAnalyzer

	Now func() time.Time // defaults to utils.NowIST
	Log *logrus.Entry
}

func (t *Toolkit) now() time.Time {
	if t.Now != nil {
		return t.Now().In(utils.IST)
	}
	return utils.NowIST()
}

func (t *Toolkit) fetchedAt() string { return t.now().Format(fetchedAtLayout) }

func (t *Toolkit) logger() *logrus.Entry {
	if t.Log != nil {
		return t.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Errors wrapped by Toolkit failures, for callers that need to classify
// them. The messages themselves are written for the end user.
var (
	ErrUnavailable  = errors.New("source not configured")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoResults    = errors.New("no results")
)

// messageError carries a user-facing message over the error it classifies.
type messageError struct {
	msg string
	err error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.err }

func failf(cause error, format string, args ...any) error {
	return &messageError{msg: fmt.Sprintf(format, args...), err: cause}
}

// ════════════════════════════════════════════════════════════════════
// Stocks
// ════════════════════════════════════════════════════════════════════

// StockInfoResult is the payload of get_stock_info.
type StockInfoResult struct {
	*models.StockInfo
	DataFetchedAt string `json:"data_fetched_at"`
}

// StockInfo fetches a company's profile and headline fundamentals.
func (t *Toolkit) StockInfo(ctx context.Context, symbol string) (*StockInfoResult, error) {
	if t.Stocks == nil {
		return nil, fmt.Errorf("stock info: %w", ErrUnavailable)
	}
	sym := utils.ToYFinanceTicker(symbol)
	info, err := t.Stocks.GetStockInfo(ctx, sym)
	if err != nil {
		if datasource.IsNotFound(err) {
			return nil, failf(err, "No data found for symbol '%s'. Verify the ticker and exchange suffix (.NS for NSE, .BO for BSE).", sym)
		}
		return nil, fmt.Errorf("Failed to fetch stock info for '%s': %w", sym, err)
	}
	cp := *info
	cp.BusinessSummary = truncate(cp.BusinessSummary, summaryChars)
	return &StockInfoResult{StockInfo: &cp, DataFetchedAt: t.fetchedAt()}, nil
}

// StockHistoryResult is the payload of get_stock_history.
type StockHistoryResult struct {
	Symbol          string            `json:"symbol"`
	DataFetchedAt   string            `json:"data_fetched_at"`
	Period          string            `json:"period"`
	TotalDataPoints int               `json:"total_data_points"`
	ShowingLast     int               `json:"showing_last"`
	StartDate       string            `json:"start_date"`
	EndDate         string            `json:"end_date"`
	RecentPrices    []models.PriceRow `json:"recent_prices"`
}

// StockHistory fetches daily prices over period and returns the last 30 rows.
func (t *Toolkit) StockHistory(ctx context.Context, symbol, period string) (*StockHistoryResult, error) {
	if t.Stocks == nil {
		return nil, fmt.Errorf("stock history: %w", ErrUnavailable)
	}
	if period == "" {
		period = defaultPeriod
	}
	if !datasource.ValidPeriod(period) {
		return nil, failf(ErrInvalidInput, "Invalid period '%s'. Use one of: %s.", period, strings.Join(datasource.HistoryPeriods, ", "))
	}
	sym := utils.ToYFinanceTicker(symbol)
	bars, err := t.Stocks.GetPriceHistory(ctx, sym, period)
	if err != nil && !datasource.IsNotFound(err) {
		return nil, fmt.Errorf("Failed to fetch history for '%s': %w", sym, err)
	}
	if len(bars) == 0 {
		return nil, failf(ErrNoResults, "No historical data found for '%s' with period '%s'.", sym, period)
	}

	tail := bars
	if len(tail) > recentRows {
		tail = tail[len(tail)-recentRows:]
	}
	rows := make([]models.PriceRow, len(tail))
	for i, b := range tail {
		rows[i] = models.PriceRow{
			Date:   utils.FormatDateIST(b.Timestamp),
			Open:   utils.Round(b.Open, 2),
			High:   utils.Round(b.High, 2),
			Low:    utils.Round(b.Low, 2),
			Close:  utils.Round(b.Close, 2),
			Volume: b.Volume,
		}
	}

	return &StockHistoryResult{
		Symbol:          sym,
		DataFetchedAt:   t.fetchedAt(),
		Period:          period,
		TotalDataPoints: len(bars),
		ShowingLast:     len(rows),
		StartDate:       utils.FormatDateIST(bars[0].Timestamp),
		EndDate:         utils.FormatDateIST(bars[len(bars)-1].Timestamp),
		RecentPrices:    rows,
	}, nil
}

// FinancialsResult is the payload of get_stock_financials. Amounts are INR crores.
type FinancialsResult struct {
	Symbol          string                  `json:"symbol"`
	DataFetchedAt   string                  `json:"data_fetched_at"`
	Units           string                  `json:"units"`
	Ratios          map[string]float64      `json:"ratios,omitempty"`
	IncomeStatement *models.IncomeStatement `json:"income_statement,omitempty"`
	BalanceSheet    *models.BalanceSheet    `json:"balance_sheet,omitempty"`
}

// StockFinancials fetches the latest annual income statement and balance sheet.
func (t *Toolkit) StockFinancials(ctx context.Context, symbol string) (*FinancialsResult, error) {
	if t.Financials == nil {
		return nil, fmt.Errorf("financials: %w", ErrUnavailable)
	}
	sym := utils.ToYFinanceTicker(symbol)
	fin, err := t.Financials.GetFinancials(ctx, sym)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch financials for '%s': %w", sym, err)
	}
	return &FinancialsResult{
		Symbol:          sym,
		DataFetchedAt:   t.fetchedAt(),
		Units:           "INR crores",
		Ratios:          fin.Ratios,
		IncomeStatement: fin.LatestIncome(),
		BalanceSheet:    fin.LatestBalanceSheet(),
	}, nil
}

// ════════════════════════════════════════════════════════════════════
// Mutual funds
// ════════════════════════════════════════════════════════════════════

// SchemeSearchResult is the payload of search_mutual_fund.
type SchemeSearchResult struct {
	Query        string          `json:"query"`
	TotalMatches int             `json:"total_matches"`
	Showing      int             `json:"showing"`
	Schemes      []models.Scheme `json:"schemes,omitempty"`
	Note         string          `json:"note,omitempty"`
	Message      string          `json:"message,omitempty"`
	Suggestion   string          `json:"suggestion,omitempty"`
}

// SearchMutualFund finds schemes whose names contain every word of query.
func (t *Toolkit) SearchMutualFund(ctx context.Context, query string) (*SchemeSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, failf(ErrInvalidInput, "query must not be empty")
	}
	if t.Funds == nil {
		return nil, fmt.Errorf("mutual fund search: %w", ErrUnavailable)
	}
	schemes, total, err := t.Funds.SearchSchemes(ctx, query, datasource.MaxSchemeMatches)
	if err != nil {
		return nil, fmt.Errorf("Failed to search mutual funds: %w", err)
	}
	if total == 0 {
		return &SchemeSearchResult{
			Query:      query,
			Message:    fmt.Sprintf("No mutual fund schemes found matching '%s'.", query),
			Suggestion: "Try broader terms like the fund house name (e.g. 'axis', 'sbi', 'hdfc') or category (e.g. 'bluechip', 'small cap', 'flexi cap').",
		}, nil
	}
	return &SchemeSearchResult{
		Query:        query,
		TotalMatches: total,
		Showing:      len(schemes),
		Schemes:      schemes,
		Note:         schemeSearchNote,
	}, nil
}

// MFDetailsResult is the payload of get_mf_details.
type MFDetailsResult struct {
	*models.SchemeQuote
	RecentNAVHistory []models.NAVRecord `json:"recent_nav_history,omitempty"`
	TotalNAVRecords  int                `json:"total_nav_records"`
	HistoryNote      string             `json:"history_note,omitempty"`
}

// MFDetails fetches a scheme's latest NAV and its 30 most recent NAVs,
// oldest first.
func (t *Toolkit) MFDetails(ctx context.Context, schemeCode string) (*MFDetailsResult, error) {
	code := strings.TrimSpace(schemeCode)
	if !utils.IsSchemeCode(code) {
		return nil, failf(ErrInvalidInput, "Invalid scheme code '%s'. Scheme codes are numeric; find one with search_mutual_fund().", code)
	}
	if t.Funds == nil {
		return nil, fmt.Errorf("mutual fund details: %w", ErrUnavailable)
	}
	quote, err := t.Funds.GetSchemeQuote(ctx, code)
	if err != nil {
		if datasource.IsNotFound(err) {
			return nil, failf(err, "No data found for scheme code '%s'. Verify the code using search_mutual_fund().", code)
		}
		return nil, fmt.Errorf("Failed to fetch details for scheme '%s': %w", code, err)
	}

	out := &MFDetailsResult{SchemeQuote: quote}
	history, err := t.Funds.GetNAVHistory(ctx, code)
	switch {
	case err != nil:
		t.logger().WithError(err).WithField("scheme", code).Warn("NAV history unavailable")
		out.HistoryNote = "Could not fetch historical NAV data."
	case len(history) == 0:
		out.HistoryNote = "No historical data available."
	default:
		out.TotalNAVRecords = len(history)
		out.RecentNAVHistory = recentNAVs(history, recentRows)
	}
	return out, nil
}

// recentNAVs returns the n latest records in date order. Unparseable dates
// sort first.
func recentNAVs(records []models.NAVRecord, n int) []models.NAVRecord {
	type dated struct {
		at  time.Time
		rec models.NAVRecord
	}
	all := make([]dated, len(records))
	for i, r := range records {
		at, _ := utils.ParseAMFIDate(r.Date)
		all[i] = dated{at, r}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	if len(all) > n {
		all = all[len(all)-n:]
	}
	out := make([]models.NAVRecord, len(all))
	for i, d := range all {
		out[i] = d.rec
	}
	return out
}

// ════════════════════════════════════════════════════════════════════
// Analysis
// ════════════════════════════════════════════════════════════════════

// AnalyzeInvestment computes CAGR, volatility, Sharpe ratio and maximum
// drawdown. investmentType is "stock" or "mutual_fund".
func (t *Toolkit) AnalyzeInvestment(ctx context.Context, identifier, investmentType string, years int) (*analytics.Report, error) {
	if t.Analyzer == nil {
		return nil, fmt.Errorf("analysis: %w", ErrUnavailable)
	}
	if investmentType == "" {
		investmentType = analytics.Equity.String()
	}
	return t.Analyzer.Analyze(ctx, analytics.Request{
		Identifier:   identifier,
		AssetClass:   investmentType,
		HorizonYears: years,
	})
}

// ════════════════════════════════════════════════════════════════════
// Search
// ════════════════════════════════════════════════════════════════════

// NewsHit is one search hit with a trimmed snippet.
type NewsHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// NewsResult is the payload of search_financial_news.
type NewsResult struct {
	Query        string    `json:"query"`
	Source       string    `json:"source"` // "web" or "rss"
	ResultsCount int       `json:"results_count"`
	Results      []NewsHit `json:"results,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// SearchFinancialNews searches Indian finance sites. Without a web search
// key it falls back to filtering RSS headlines.
func (t *Toolkit) SearchFinancialNews(ctx context.Context, query string) (*NewsResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, failf(ErrInvalidInput, "query must not be empty")
	}

	out := &NewsResult{Query: query}
	var webErr error
	if t.Web != nil {
		results, err := t.Web.Search(ctx, datasource.SearchRequest{
			Query:          query,
			Depth:          datasource.DepthAdvanced,
			IncludeDomains: datasource.FinanceDomains,
			MaxResults:     newsResults,
		})
		if err == nil {
			out.Source = "web"
			for _, r := range results {
				out.Results = append(out.Results, NewsHit{Title: r.Title, URL: r.URL, Content: truncate(r.Content, snippetChars)})
			}
			return finishNews(out), nil
		}
		if !errors.Is(err, datasource.ErrNotConfigured) || t.News == nil {
			return nil, fmt.Errorf("Financial news search failed: %w", err)
		}
		webErr = err
	}

	if t.News == nil {
		return nil, fmt.Errorf("Financial news search failed: %w", ErrUnavailable)
	}
	articles, err := t.News.Search(ctx, query, newsResults)
	if err != nil {
		return nil, fmt.Errorf("Financial news search failed: %w", errors.Join(webErr, err))
	}
	out.Source = "rss"
	for _, a := range articles {
		out.Results = append(out.Results, NewsHit{Title: a.Title, URL: a.URL, Content: truncate(a.Summary, snippetChars)})
	}
	return finishNews(out), nil
}

func finishNews(out *NewsResult) *NewsResult {
	if len(out.Results) > newsResults {
		out.Results = out.Results[:newsResults]
	}
	out.ResultsCount = len(out.Results)
	if out.ResultsCount == 0 {
		out.Message = fmt.Sprintf("No financial news found for '%s'.", out.Query)
	}
	return out
}

// SearchWeb runs a basic web search.
func (t *Toolkit) SearchWeb(ctx context.Context, query string) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, failf(ErrInvalidInput, "query must not be empty")
	}
	if t.Web == nil {
		return nil, fmt.Errorf("web search: %w", ErrUnavailable)
	}
	return t.Web.Search(ctx, datasource.SearchRequest{Query: query, Depth: datasource.DepthBasic})
}

// CurrentTime returns the current IST date and time.
func (t *Toolkit) CurrentTime() map[string]string {
	now := t.now()
	return map[string]string{
		"current_time":  now.Format(fetchedAtLayout),
		"timezone":      "Asia/Kolkata",
		"market_status": utils.MarketStatus(now),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
