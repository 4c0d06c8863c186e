package utils

import (
	"regexp"
	"strings"
)

// Common ticker aliases users type in chat.
var tickerAliases = map[string]string{
	"RIL":           "RELIANCE",
	"INFOSYS":       "INFY",
	"HDFC BANK":     "HDFCBANK",
	"ICICI BANK":    "ICICIBANK",
	"SBI":           "SBIN",
	"AIRTEL":        "BHARTIARTL",
	"L&T":           "LT",
	"TATA MOTORS":   "TATAMOTORS",
	"TATA STEEL":    "TATASTEEL",
	"HCL TECH":      "HCLTECH",
	"KOTAK":         "KOTAKBANK",
	"AXIS BANK":     "AXISBANK",
	"SUN PHARMA":    "SUNPHARMA",
	"ASIAN PAINTS":  "ASIANPAINT",
	"NESTLE":        "NESTLEIND",
	"ULTRATECH":     "ULTRACEMCO",
	"TECH MAHINDRA": "TECHM",
	"HUL":           "HINDUNILVR",
	"COAL INDIA":    "COALINDIA",
}

// Index names mapped to their Yahoo Finance symbols.
var indexSymbols = map[string]string{
	"NIFTY":      "^NSEI",
	"NIFTY50":    "^NSEI",
	"NIFTY 50":   "^NSEI",
	"BANKNIFTY":  "^NSEBANK",
	"NIFTY BANK": "^NSEBANK",
	"NIFTYIT":    "^CNXIT",
	"NIFTY IT":   "^CNXIT",
	"FINNIFTY":   "^CNXFIN",
	"SENSEX":     "^BSESN",
}

var (
	tickerPattern     = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9&\-_.]{0,24}$`)
	schemeCodePattern = regexp.MustCompile(`^[0-9]{1,10}$`)
)

// NormalizeTicker uppercases and trims a user-supplied ticker and resolves aliases.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ToYFinanceTicker converts a ticker to its exchange-suffixed Yahoo Finance symbol.
// Bare tickers default to NSE (.NS); .NS and .BO suffixes are kept; known
// indices map to their caret symbols.
func ToYFinanceTicker(ticker string) string {
	ticker = NormalizeTicker(ticker)

	if sym, ok := indexSymbols[ticker]; ok {
		return sym
	}
	if strings.HasPrefix(ticker, "^") {
		return ticker
	}
	if strings.HasSuffix(ticker, ".NS") || strings.HasSuffix(ticker, ".BO") {
		return ticker
	}
	return ticker + ".NS"
}

// FromYFinanceTicker strips the .NS or .BO suffix to get the exchange ticker.
func FromYFinanceTicker(yfTicker string) string {
	yfTicker = strings.TrimSuffix(yfTicker, ".NS")
	return strings.TrimSuffix(yfTicker, ".BO")
}

// IsIndex reports whether the ticker names a market index rather than a stock.
func IsIndex(ticker string) bool {
	ticker = NormalizeTicker(ticker)
	if _, ok := indexSymbols[ticker]; ok {
		return true
	}
	return strings.HasPrefix(ticker, "^")
}

// Exchange returns "NSE", "BSE" or "INDEX" for a Yahoo Finance symbol.
func Exchange(yfTicker string) string {
	switch {
	case strings.HasPrefix(yfTicker, "^"):
		return "INDEX"
	case strings.HasSuffix(yfTicker, ".BO"):
		return "BSE"
	default:
		return "NSE"
	}
}

// IsValidTicker reports whether s looks like an exchange ticker after normalization.
func IsValidTicker(s string) bool {
	return tickerPattern.MatchString(ToYFinanceTicker(s))
}

// IsSchemeCode reports whether s is a numeric AMFI scheme code.
func IsSchemeCode(s string) bool {
	return schemeCodePattern.MatchString(strings.TrimSpace(s))
}
