package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/nivesh/internal/datasource"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// --- Stock Commands ---

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Stock profile, price history and financials",
}

var stockInfoCmd = &cobra.Command{
	Use:   "info [symbol]",
	Short: "Company profile and key fundamentals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		res, err := a.toolkit.StockInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var stockHistoryCmd = &cobra.Command{
	Use:   "history [symbol]",
	Short: "Recent daily prices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		res, err := a.toolkit.StockHistory(cmd.Context(), args[0], period)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var stockFinancialsCmd = &cobra.Command{
	Use:   "financials [symbol]",
	Short: "Income statement, balance sheet and ratios (INR crores)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		res, err := a.toolkit.StockFinancials(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var stockOverviewCmd = &cobra.Command{
	Use:   "overview [symbol]",
	Short: "Profile and financials fetched together",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		ov, err := datasource.Overview(cmd.Context(), a.yahoo, a.screener, utils.ToYFinanceTicker(args[0]))
		if err != nil {
			return err
		}
		return printJSON(ov)
	},
}

// --- Mutual Fund Commands ---

var mfCmd = &cobra.Command{
	Use:   "mf",
	Short: "Mutual fund search and NAV details",
}

var mfSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find schemes by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		res, err := a.toolkit.SearchMutualFund(cmd.Context(), joinArgs(args))
		if err != nil {
			return err
		}
		if res.TotalMatches == 0 {
			fmt.Println(res.Message)
			fmt.Println(res.Suggestion)
			return nil
		}
		fmt.Printf("%d matches (showing %d)\n", res.TotalMatches, res.Showing)
		for _, s := range res.Schemes {
			fmt.Printf("  %-8s %s\n", s.Code, s.Name)
		}
		return nil
	},
}

var mfDetailsCmd = &cobra.Command{
	Use:   "details [scheme-code]",
	Short: "Latest NAV and recent NAV history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		res, err := a.toolkit.MFDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var mfNameCmd = &cobra.Command{
	Use:   "name [scheme-code...]",
	Short: "Look up scheme names in the AMFI registry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		codes, err := a.amfi.SchemeCodes(cmd.Context())
		if err != nil {
			return err
		}
		for _, code := range args {
			name, ok := codes[strings.TrimSpace(code)]
			if !ok {
				name = "(not in registry)"
			}
			fmt.Printf("  %-8s %s\n", code, name)
		}
		return nil
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [query]",
	Short: "Search recent Indian financial news",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		res, err := a.toolkit.SearchFinancialNews(cmd.Context(), joinArgs(args))
		if err != nil {
			return err
		}
		if res.ResultsCount == 0 {
			fmt.Println(res.Message)
			return nil
		}
		fmt.Printf("%d results (%s)\n\n", res.ResultsCount, res.Source)
		for i, h := range res.Results {
			fmt.Printf("%d. %s\n   %s\n", i+1, h.Title, h.URL)
		}
		return nil
	},
}

func init() {
	stockHistoryCmd.Flags().String("period", "1y", "history period ("+strings.Join(datasource.HistoryPeriods, ", ")+")")
	stockCmd.AddCommand(stockInfoCmd, stockHistoryCmd, stockFinancialsCmd, stockOverviewCmd)
	mfCmd.AddCommand(mfSearchCmd, mfDetailsCmd, mfNameCmd)
}

func joinArgs(args []string) string { return strings.Join(args, " ") }
