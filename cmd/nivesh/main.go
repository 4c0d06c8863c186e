// nivesh: Indian stock and mutual fund analytics with an AI assistant.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/nivesh/internal/config"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nivesh",
	Short: "nivesh: Indian stock and mutual fund analytics",
	Long: `nivesh analyzes NSE/BSE stocks and AMFI mutual funds.
It computes CAGR, annualized volatility, Sharpe ratio and maximum drawdown
from price and NAV history, fetches fundamentals and news, and answers
questions through a local LLM assistant.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(mfCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nivesh %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		now := utils.NowIST()
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  nivesh: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus(now))
		fmt.Printf("  Time (IST):    %s\n", utils.FormatDateTimeIST(now))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM:           %s (model: %s, %s)\n", cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.OllamaURL)
		fmt.Printf("    Analysis:      %d years, risk-free %.2f%%\n", cfg.Analysis.HorizonYears, cfg.Analysis.RiskFreeRate*100)
		storage := "disabled"
		if cfg.Storage.Path != "" {
			storage = cfg.Storage.Path
		}
		fmt.Printf("    History:       %s\n", storage)
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()
		llmStatus := "✅ reachable"
		if err := a.provider.Ping(ctx); err != nil {
			llmStatus = "❌ " + err.Error()
		}
		fmt.Printf("  LLM Backend:     %s\n", llmStatus)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set (news falls back to RSS feeds)"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
