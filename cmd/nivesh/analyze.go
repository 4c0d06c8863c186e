package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/nivesh/internal/analytics"
)

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [identifier]",
	Short: "Compute CAGR, volatility, Sharpe ratio and max drawdown",
	Long: `Analyze an NSE/BSE ticker (e.g. RELIANCE.NS) or an AMFI scheme code
(e.g. 120503) over the configured horizon.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		years, _ := cmd.Flags().GetInt("years")
		asJSON, _ := cmd.Flags().GetBool("json")
		save, _ := cmd.Flags().GetBool("save")

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		if years == 0 {
			years = cfg.Analysis.HorizonYears
		}
		report, err := a.analyzer.Analyze(cmd.Context(), analytics.Request{
			Identifier:   args[0],
			AssetClass:   kind,
			HorizonYears: years,
		})
		if err != nil {
			if asJSON {
				_ = printJSON(analytics.AsErrorReport(err, args[0]))
			}
			return err
		}

		if save {
			id, err := saveReport(cmd.Context(), a, report)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved report %s\n", id)
		}

		if asJSON {
			return printJSON(report)
		}
		printReport(report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("type", string(analytics.Equity), "investment type: stock or mutual_fund")
	analyzeCmd.Flags().Int("years", 0, "history horizon in years (default from config)")
	analyzeCmd.Flags().Bool("json", false, "print the report as JSON")
	analyzeCmd.Flags().Bool("save", false, "save the report to history")
}

func saveReport(ctx context.Context, a *app, report *analytics.Report) (string, error) {
	st, err := a.openStore()
	if err != nil {
		return "", err
	}
	if st == nil {
		return "", fmt.Errorf("report history is disabled (set storage.path)")
	}
	defer st.Close()
	return st.SaveReport(ctx, report)
}

func printReport(r *analytics.Report) {
	fmt.Println(strings.Repeat("═", 55))
	fmt.Printf("  %s\n", r.Label)
	fmt.Println(strings.Repeat("═", 55))
	fmt.Printf("  Data:          %d points, %s → %s\n", r.DataPoints, r.DataStartDate, r.DataEndDate)
	fmt.Printf("  Latest value:  %.4f\n", r.LatestValue)
	fmt.Println(strings.Repeat("─", 55))
	fmt.Printf("  CAGR 1Y:              %s\n", pct(r.Metrics.CAGR1Y))
	fmt.Printf("  CAGR 3Y:              %s\n", pct(r.Metrics.CAGR3Y))
	fmt.Printf("  CAGR 5Y:              %s\n", pct(r.Metrics.CAGR5Y))
	fmt.Printf("  Annual volatility:    %s\n", pct(r.Metrics.AnnualizedVolatility))
	fmt.Printf("  Sharpe ratio:         %s\n", r.Metrics.SharpeRatio)
	fmt.Printf("  Max drawdown:         %s\n", pct(r.Metrics.MaxDrawdown))
	fmt.Println(strings.Repeat("─", 55))
	fmt.Printf("  Risk-free rate %.2f%%, %d trading days/year\n",
		r.Assumptions.RiskFreeRatePercent, r.Assumptions.TradingDaysPerYear)
	fmt.Printf("  %s\n", r.Disclaimer)
}

func pct(m analytics.MetricResult) string {
	if !m.Available() {
		return m.String()
	}
	return m.String() + "%"
}
