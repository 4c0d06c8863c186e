package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/nivesh/internal/store"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history [report-id]",
	Short: "List saved analysis reports, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ident, _ := cmd.Flags().GetString("id")
		kind, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		st, err := a.openStore()
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("report history is disabled (set storage.path)")
		}
		defer st.Close()

		if len(args) == 1 {
			rec, err := st.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(rec)
		}

		recs, err := st.ListReports(cmd.Context(), store.Filter{Identifier: ident, AssetClass: kind, Limit: limit})
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No saved reports.")
			return nil
		}
		for _, r := range recs {
			fmt.Printf("%s  %s  %-14s %-12s CAGR1Y %s  Sharpe %s\n",
				r.ID, utils.FormatDateTimeIST(r.SavedAt), r.Report.Identifier, r.Report.AssetClass,
				pct(r.Report.Metrics.CAGR1Y), r.Report.Metrics.SharpeRatio)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("id", "", "only reports for this identifier")
	historyCmd.Flags().String("type", "", "only reports of this investment type")
	historyCmd.Flags().Int("limit", store.DefaultListLimit, "maximum reports to list")
}
