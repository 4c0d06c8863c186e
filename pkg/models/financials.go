package models

// IncomeStatement holds the headline lines of one profit & loss period.
type IncomeStatement struct {
	Period          string  `json:"period"` // e.g., "Mar 2025"
	Revenue         float64 `json:"revenue"`
	OperatingProfit float64 `json:"operating_profit"`
	OPMPct          float64 `json:"opm_pct"`
	OtherIncome     float64 `json:"other_income"`
	Interest        float64 `json:"interest"`
	Depreciation    float64 `json:"depreciation"`
	PBT             float64 `json:"pbt"`
	NetProfit       float64 `json:"net_profit"`
	EPS             float64 `json:"eps"`
}

// BalanceSheet holds the headline lines of one balance sheet period.
type BalanceSheet struct {
	Period           string  `json:"period"`
	EquityCapital    float64 `json:"equity_capital"`
	Reserves         float64 `json:"reserves"`
	Borrowings       float64 `json:"borrowings"`
	OtherLiabilities float64 `json:"other_liabilities"`
	TotalLiabilities float64 `json:"total_liabilities"`
	FixedAssets      float64 `json:"fixed_assets"`
	Investments      float64 `json:"investments"`
	OtherAssets      float64 `json:"other_assets"`
	TotalAssets      float64 `json:"total_assets"`
}

// Financials aggregates the statements scraped for a stock. All amounts are in INR crores.
type Financials struct {
	Symbol       string             `json:"symbol"`
	Ratios       map[string]float64 `json:"ratios,omitempty"`
	Income       []IncomeStatement  `json:"income_statement,omitempty"`
	BalanceSheet []BalanceSheet     `json:"balance_sheet,omitempty"`
}

// LatestIncome returns the most recent income statement, or nil.
func (f *Financials) LatestIncome() *IncomeStatement {
	if f == nil || len(f.Income) == 0 {
		return nil
	}
	return &f.Income[len(f.Income)-1]
}

// LatestBalanceSheet returns the most recent balance sheet, or nil.
func (f *Financials) LatestBalanceSheet() *BalanceSheet {
	if f == nil || len(f.BalanceSheet) == 0 {
		return nil
	}
	return &f.BalanceSheet[len(f.BalanceSheet)-1]
}
