package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seenimoa/nivesh/internal/analytics"
	"github.com/seenimoa/nivesh/internal/llm"
)

// Tool names as seen by the model.
const (
	ToolStockInfo       = "get_stock_info"
	ToolStockHistory    = "get_stock_history"
	ToolStockFinancials = "get_stock_financials"
	ToolSearchMF        = "search_mutual_fund"
	ToolMFDetails       = "get_mf_details"
	ToolAnalyze         = "analyze_investment"
	ToolFinancialNews   = "search_financial_news"
	ToolSearchWeb       = "search_web"
	ToolCurrentTime     = "get_current_time"
)

type symbolArgs struct {
	Symbol string `json:"symbol"`
}

type historyArgs struct {
	Symbol string `json:"symbol"`
	Period string `json:"period"`
}

type queryArgs struct {
	Query string `json:"query"`
}

type schemeArgs struct {
	SchemeCode json.RawMessage `json:"scheme_code"` // models send strings or numbers
}

type analyzeArgs struct {
	Identifier     json.RawMessage `json:"identifier"`
	InvestmentType string          `json:"investment_type"`
	HorizonYears   int             `json:"horizon_years"`
}

// AdvisorTools returns the finance tools owned by the financial advisor.
func (t *Toolkit) AdvisorTools() []llm.Tool {
	symbol := llm.StringProp("NSE/BSE ticker with exchange suffix, e.g. 'RELIANCE.NS', 'TCS.NS', 'INFY.BO'. Bare tickers default to NSE.")
	return []llm.Tool{
		{
			Name:        ToolStockInfo,
			Description: "Fetches company info and key fundamentals (price, market cap, P/E, P/B, EPS, dividend yield, 52-week range) for an Indian stock.",
			Parameters:  llm.ObjectSchema(map[string]*llm.JSONSchema{"symbol": symbol}, "symbol"),
			Handler: handle(func(ctx context.Context, a symbolArgs) (any, error) {
				return t.StockInfo(ctx, a.Symbol)
			}),
		},
		{
			Name:        ToolStockHistory,
			Description: "Fetches historical daily OHLCV prices for a stock. Returns the last 30 rows plus the covered date range.",
			Parameters: llm.ObjectSchema(map[string]*llm.JSONSchema{
				"symbol": symbol,
				"period": llm.EnumProp("Look-back period, default '1y'.", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "max"),
			}, "symbol"),
			Handler: handle(func(ctx context.Context, a historyArgs) (any, error) {
				return t.StockHistory(ctx, a.Symbol, a.Period)
			}),
		},
		{
			Name:        ToolStockFinancials,
			Description: "Fetches the latest annual income statement, balance sheet and key ratios for a stock (INR crores).",
			Parameters:  llm.ObjectSchema(map[string]*llm.JSONSchema{"symbol": symbol}, "symbol"),
			Handler: handle(func(ctx context.Context, a symbolArgs) (any, error) {
				return t.StockFinancials(ctx, a.Symbol)
			}),
		},
		{
			Name:        ToolSearchMF,
			Description: "Searches Indian mutual fund schemes by name or fund house and returns AMFI scheme codes.",
			Parameters: llm.ObjectSchema(map[string]*llm.JSONSchema{
				"query": llm.StringProp("Fund name, fund house or category, e.g. 'axis bluechip', 'SBI small cap'."),
			}, "query"),
			Handler: handle(func(ctx context.Context, a queryArgs) (any, error) {
				return t.SearchMutualFund(ctx, a.Query)
			}),
		},
		{
			Name:        ToolMFDetails,
			Description: "Fetches current NAV, scheme info and the last 30 NAV entries for a mutual fund scheme code.",
			Parameters: llm.ObjectSchema(map[string]*llm.JSONSchema{
				"scheme_code": llm.StringProp("Numeric AMFI scheme code, e.g. '119597'."),
			}, "scheme_code"),
			Handler: handle(func(ctx context.Context, a schemeArgs) (any, error) {
				return t.MFDetails(ctx, looseString(a.SchemeCode))
			}),
		},
		{
			Name:        ToolAnalyze,
			Description: "Calculates CAGR (1/3/5y), annualized volatility, Sharpe ratio and maximum drawdown for a stock or mutual fund.",
			Parameters: llm.ObjectSchema(map[string]*llm.JSONSchema{
				"identifier":      llm.StringProp("Ticker such as 'RELIANCE.NS' for stocks, numeric scheme code for mutual funds."),
				"investment_type": llm.EnumProp("Asset class, default 'stock'.", analytics.Equity.String(), analytics.MutualFund.String()),
			}, "identifier"),
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				var a analyzeArgs
				if err := json.Unmarshal(raw, &a); err != nil {
					return errorJSON(fmt.Errorf("invalid arguments: %v", err)), nil
				}
				id := looseString(a.Identifier)
				report, err := t.AnalyzeInvestment(ctx, id, a.InvestmentType, a.HorizonYears)
				if err != nil {
					return marshal(analytics.AsErrorReport(err, id)), nil
				}
				return marshal(report), nil
			},
		},
		{
			Name:        ToolFinancialNews,
			Description: "Searches Indian financial sites for recent news, fund details (expense ratio, holdings) and market analysis. Include the current year in the query.",
			Parameters: llm.ObjectSchema(map[string]*llm.JSONSchema{
				"query": llm.StringProp("Financial search query."),
			}, "query"),
			Handler: handle(func(ctx context.Context, a queryArgs) (any, error) {
				return t.SearchFinancialNews(ctx, a.Query)
			}),
		},
	}
}

// RootTools returns the general tools of the front-desk assistant.
func (t *Toolkit) RootTools() []llm.Tool {
	return []llm.Tool{
		{
			Name:        ToolSearchWeb,
			Description: "Searches the web for up-to-date information.",
			Parameters: llm.ObjectSchema(map[string]*llm.JSONSchema{
				"query": llm.StringProp("Search query."),
			}, "query"),
			Handler: handle(func(ctx context.Context, a queryArgs) (any, error) {
				return t.SearchWeb(ctx, a.Query)
			}),
		},
		{
			Name:        ToolCurrentTime,
			Description: "Returns the current date and time in India.",
			Parameters:  llm.ObjectSchema(nil),
			Handler: func(context.Context, json.RawMessage) (string, error) {
				return marshal(t.CurrentTime()), nil
			},
		},
	}
}

// handle decodes arguments into A, runs fn and encodes its result. Failures
// become {"error": ...} so the model can react to them.
func handle[A any](fn func(ctx context.Context, args A) (any, error)) llm.ToolHandler {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		var args A
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorJSON(fmt.Errorf("invalid arguments: %v", err)), nil
			}
		}
		out, err := fn(ctx, args)
		if err != nil {
			return errorJSON(err), nil
		}
		return marshal(out), nil
	}
}

func errorJSON(err error) string {
	return marshal(map[string]string{"error": err.Error()})
}

func marshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

// looseString accepts a JSON string or number.
func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}
