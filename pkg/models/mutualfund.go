package models

// NAVRecord is one raw NAV observation as published upstream.
// Date uses the "02-01-2006" layout and NAV is left unparsed.
type NAVRecord struct {
	Date string `json:"date"`
	NAV  string `json:"nav"`
}

// Scheme identifies a mutual fund scheme in the AMFI registry.
type Scheme struct {
	Code      string `json:"scheme_code"`
	Name      string `json:"scheme_name"`
	FundHouse string `json:"fund_house,omitempty"`
	Category  string `json:"scheme_category,omitempty"`
}

// SchemeQuote holds a scheme's metadata and latest published NAV.
type SchemeQuote struct {
	Code       string `json:"scheme_code"`
	Name       string `json:"scheme_name"`
	FundHouse  string `json:"fund_house"`
	SchemeType string `json:"scheme_type"`
	Category   string `json:"scheme_category"`
	NAV        string `json:"nav"`
	NAVDate    string `json:"nav_date"`
}
