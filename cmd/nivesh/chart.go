package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/nivesh/internal/analytics"
	"github.com/seenimoa/nivesh/internal/chart"
)

// --- Chart Command ---

var chartCmd = &cobra.Command{
	Use:   "chart [identifier]",
	Short: "Render a price/NAV or drawdown chart as PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		years, _ := cmd.Flags().GetInt("years")
		out, _ := cmd.Flags().GetString("out")
		drawdown, _ := cmd.Flags().GetBool("drawdown")

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		if years == 0 {
			years = cfg.Analysis.HorizonYears
		}
		id, ts, err := a.analyzer.Series(cmd.Context(), analytics.Request{
			Identifier:   args[0],
			AssetClass:   kind,
			HorizonYears: years,
		})
		if err != nil {
			return err
		}

		var img []byte
		if drawdown {
			img, err = chart.RenderDrawdown(ts, id+" drawdown (%)")
		} else {
			img, err = chart.RenderSeries(ts, id)
		}
		if err != nil {
			return err
		}
		if out == "" {
			out = id + ".png"
		}
		if err := os.WriteFile(out, img, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Printf("Chart written to %s (%d points)\n", out, ts.Len())
		return nil
	},
}

func init() {
	chartCmd.Flags().String("type", string(analytics.Equity), "investment type: stock or mutual_fund")
	chartCmd.Flags().Int("years", 0, "history horizon in years (default from config)")
	chartCmd.Flags().StringP("out", "o", "", "output file (default <identifier>.png)")
	chartCmd.Flags().Bool("drawdown", false, "plot the drawdown curve instead of prices")
}
