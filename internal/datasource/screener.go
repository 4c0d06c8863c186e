package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/nivesh/pkg/models"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// DefaultScreenerURL is the Screener.in host.
const DefaultScreenerURL = "https://www.screener.in"

// Screener scrapes company financial statements from Screener.in.
type Screener struct {
	*client
	baseURL string
	cache   *Cache[*models.Financials]
}

// NewScreener creates a Screener.in source. An empty baseURL uses DefaultScreenerURL.
func NewScreener(baseURL string, opts Options) *Screener {
	if baseURL == "" {
		baseURL = DefaultScreenerURL
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 1 // conservative: 1 req/s
	}
	return &Screener{
		client:  newClient("screener", opts),
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   NewCache[*models.Financials](time.Hour),
	}
}

// Name returns the data source name.
func (s *Screener) Name() string { return "Screener.in" }

// GetFinancials returns the top ratios, annual profit & loss and balance
// sheet of a company. Statement amounts are in INR crores.
func (s *Screener) GetFinancials(ctx context.Context, ticker string) (*models.Financials, error) {
	symbol := utils.FromYFinanceTicker(utils.NormalizeTicker(ticker))
	if cached, ok := s.cache.Get(symbol); ok {
		return cached, nil
	}

	doc, err := s.fetchPage(ctx, symbol)
	if err != nil {
		return nil, err
	}

	fin := &models.Financials{
		Symbol:       symbol,
		Ratios:       parseTopRatios(doc),
		Income:       parseIncome(doc.Find("#profit-loss")),
		BalanceSheet: parseBalanceSheet(doc.Find("#balance-sheet")),
	}
	if len(fin.Ratios) == 0 && len(fin.Income) == 0 && len(fin.BalanceSheet) == 0 {
		return nil, &NotFoundError{Source: "screener", ID: symbol}
	}

	s.cache.Set(symbol, fin)
	return fin, nil
}

// fetchPage downloads the consolidated company page, falling back to the
// standalone one.
func (s *Screener) fetchPage(ctx context.Context, symbol string) (*goquery.Document, error) {
	headers := map[string]string{"Accept": "text/html"}

	body, err := s.get(ctx, fmt.Sprintf("%s/company/%s/consolidated/", s.baseURL, symbol), headers)
	if err != nil {
		body, err = s.get(ctx, fmt.Sprintf("%s/company/%s/", s.baseURL, symbol), headers)
		if err != nil {
			if isStatus(err, http.StatusNotFound) {
				return nil, &NotFoundError{Source: "screener", ID: symbol}
			}
			return nil, fmt.Errorf("screener.in %s: %w", symbol, err)
		}
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse screener HTML: %w", err)
	}
	return doc, nil
}

// parseTopRatios reads the "#top-ratios" list, keyed by the displayed name.
func parseTopRatios(doc *goquery.Document) map[string]float64 {
	ratios := make(map[string]float64)
	doc.Find("#top-ratios li").Each(func(_ int, sel *goquery.Selection) {
		name := strings.Join(strings.Fields(sel.Find(".name").Text()), " ")
		num := sel.Find(".number").First().Text()
		if name == "" {
			return
		}
		if v, ok := parseAmount(num); ok {
			ratios[name] = v
		}
	})
	return ratios
}

// statementTable returns the period headers and, per row label, the values.
func statementTable(section *goquery.Selection) ([]string, map[string][]float64) {
	var periods []string
	section.Find("table thead th").Each(func(i int, th *goquery.Selection) {
		if i > 0 { // row label column
			periods = append(periods, strings.TrimSpace(th.Text()))
		}
	})

	rows := make(map[string][]float64)
	section.Find("table tbody tr").Each(func(_ int, tr *goquery.Selection) {
		label := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(tr.Find("td").First().Text()), "+"))
		values := make([]float64, len(periods))
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i == 0 || i-1 >= len(values) {
				return
			}
			values[i-1], _ = parseAmount(td.Text())
		})
		if label != "" {
			rows[label] = values
		}
	})
	return periods, rows
}

func parseIncome(section *goquery.Selection) []models.IncomeStatement {
	if section.Length() == 0 {
		return nil
	}
	periods, rows := statementTable(section)
	out := make([]models.IncomeStatement, len(periods))
	for i, p := range periods {
		out[i] = models.IncomeStatement{
			Period:          p,
			Revenue:         rowValue(rows, i, "Sales", "Revenue"),
			OperatingProfit: rowValue(rows, i, "Operating Profit", "Financing Profit"),
			OPMPct:          rowValue(rows, i, "OPM %", "Financing Margin %"),
			OtherIncome:     rowValue(rows, i, "Other Income"),
			Interest:        rowValue(rows, i, "Interest"),
			Depreciation:    rowValue(rows, i, "Depreciation"),
			PBT:             rowValue(rows, i, "Profit before tax"),
			NetProfit:       rowValue(rows, i, "Net Profit"),
			EPS:             rowValue(rows, i, "EPS in Rs"),
		}
	}
	return out
}

func parseBalanceSheet(section *goquery.Selection) []models.BalanceSheet {
	if section.Length() == 0 {
		return nil
	}
	periods, rows := statementTable(section)
	out := make([]models.BalanceSheet, len(periods))
	for i, p := range periods {
		out[i] = models.BalanceSheet{
			Period:           p,
			EquityCapital:    rowValue(rows, i, "Equity Capital"),
			Reserves:         rowValue(rows, i, "Reserves"),
			Borrowings:       rowValue(rows, i, "Borrowings", "Borrowing"),
			OtherLiabilities: rowValue(rows, i, "Other Liabilities"),
			TotalLiabilities: rowValue(rows, i, "Total Liabilities"),
			FixedAssets:      rowValue(rows, i, "Fixed Assets"),
			Investments:      rowValue(rows, i, "Investments"),
			OtherAssets:      rowValue(rows, i, "Other Assets"),
			TotalAssets:      rowValue(rows, i, "Total Assets"),
		}
	}
	return out
}

// rowValue returns column i of the first row whose label matches one of labels.
func rowValue(rows map[string][]float64, i int, labels ...string) float64 {
	for _, l := range labels {
		if vals, ok := rows[l]; ok && i < len(vals) {
			return vals[i]
		}
	}
	return 0
}

// parseAmount parses a Screener figure such as "₹ 1,23,456 Cr." or "12.5 %"
// in the units it is displayed in.
func parseAmount(s string) (float64, bool) {
	s = strings.NewReplacer(",", "", "%", "", "₹", "", "Cr.", "", "Cr", "").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
