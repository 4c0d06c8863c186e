package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/nivesh/internal/agent"
	"github.com/seenimoa/nivesh/internal/analytics"
	"github.com/seenimoa/nivesh/internal/config"
	"github.com/seenimoa/nivesh/internal/datasource"
	"github.com/seenimoa/nivesh/internal/llm"
	"github.com/seenimoa/nivesh/internal/logger"
	"github.com/seenimoa/nivesh/internal/store"
	"github.com/seenimoa/nivesh/internal/tools"
)

// app holds the components every command is built from.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	toolkit  *tools.Toolkit
	analyzer *analytics.Analyzer
	provider *llm.OllamaProvider

	yahoo    *datasource.YFinance
	screener *datasource.Screener
	amfi     *datasource.AMFI
}

func newApp(cfg *config.Config) (*app, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	opts := datasource.Options{
		HTTPClient:        datasource.NewHTTPClient(cfg.Data.Timeout),
		RequestsPerSecond: cfg.Data.RequestsPerSecond,
		Logger:            log,
	}
	yf := datasource.NewYFinance(cfg.Data.YahooURL, opts)
	amfi := datasource.NewAMFI(cfg.Data.MFAPIURL, cfg.Data.NAVAllURL, cfg.Data.SchemeListTTL, opts)
	screener := datasource.NewScreener(cfg.Data.ScreenerURL, datasource.Options{HTTPClient: opts.HTTPClient, Logger: log})
	web := datasource.NewWebSearch(cfg.Search.TavilyURL, cfg.Search.TavilyKey, opts)
	news := datasource.NewNews(nil, opts)

	analyzer := analytics.NewAnalyzer(analytics.AnalyzerConfig{
		Equity:       analytics.EquitySeries{Source: yf},
		MutualFund:   analytics.NAVSeries{Source: amfi},
		RiskFreeRate: cfg.Analysis.RiskFreeRate,
		FetchTimeout: cfg.Analysis.FetchTimeout,
		Logger:       log,
	})

	toolkit := &tools.Toolkit{
		Stocks:     yf,
		Financials: screener,
		Funds:      amfi,
		Web:        web,
		News:       news,
		Analyzer:   analyzer,
		Log:        logger.WithComponent(log, "tools"),
	}

	provider := llm.NewOllamaProvider(cfg.LLM.OllamaURL,
		llm.WithOllamaModel(cfg.LLM.Model),
		llm.WithOllamaSampling(cfg.LLM.Temperature, cfg.LLM.MaxTokens),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		toolkit:  toolkit,
		analyzer: analyzer,
		provider: provider,
		yahoo:    yf,
		screener: screener,
		amfi:     amfi,
	}, nil
}

// openStore opens the report history, or returns nil when it is disabled.
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.Storage.Path == "" {
		return nil, nil
	}
	st, err := store.Open(a.cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	a.log.WithField("path", a.cfg.Storage.Path).Debug("Report history opened")
	return st, nil
}

func (a *app) assistant() *agent.Assistant {
	return agent.NewAssistant(a.provider, a.toolkit, agent.AssistantConfig{
		MaxToolIter: a.cfg.LLM.MaxToolIterations,
		Logger:      logger.WithComponent(a.log, "agent"),
	})
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
