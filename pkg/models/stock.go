// Package models defines the data structures shared across nivesh.
package models

import "time"

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	AdjClose  float64   `json:"adj_close,omitempty"`
}

// Timeframe represents chart timeframe for OHLCV data.
type Timeframe string

const (
	Timeframe1Day  Timeframe = "1d"
	Timeframe1Week Timeframe = "1w"
	Timeframe1Mon  Timeframe = "1M"
)

// StockInfo holds the company profile and headline fundamentals of a listed stock.
type StockInfo struct {
	Symbol          string  `json:"symbol"`             // e.g., "RELIANCE.NS"
	Name            string  `json:"name"`               // e.g., "Reliance Industries Limited"
	Exchange        string  `json:"exchange,omitempty"` // "NSE" or "BSE"
	Currency        string  `json:"currency,omitempty"`
	Sector          string  `json:"sector,omitempty"`
	Industry        string  `json:"industry,omitempty"`
	CurrentPrice    float64 `json:"current_price"`
	PreviousClose   float64 `json:"previous_close,omitempty"`
	MarketCap       float64 `json:"market_cap,omitempty"` // in INR (raw value, not formatted)
	TrailingPE      float64 `json:"pe_ratio,omitempty"`
	ForwardPE       float64 `json:"forward_pe,omitempty"`
	PriceToBook     float64 `json:"pb_ratio,omitempty"`
	DividendYield   float64 `json:"dividend_yield,omitempty"`
	EPS             float64 `json:"eps,omitempty"`
	BookValue       float64 `json:"book_value,omitempty"`
	WeekHigh52      float64 `json:"52_week_high,omitempty"`
	WeekLow52       float64 `json:"52_week_low,omitempty"`
	Beta            float64 `json:"beta,omitempty"`
	ReturnOnEquity  float64 `json:"roe,omitempty"`
	DebtToEquity    float64 `json:"debt_to_equity,omitempty"`
	RevenueGrowth   float64 `json:"revenue_growth,omitempty"`
	ProfitMargins   float64 `json:"profit_margin,omitempty"`
	Website         string  `json:"website,omitempty"`
	BusinessSummary string  `json:"business_summary,omitempty"`
}

// PriceRow is one row of a stock's price history as shown to users.
type PriceRow struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
