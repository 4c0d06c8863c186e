package datasource

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/nivesh/pkg/models"
)

// StockOverview combines a company profile with its scraped financials.
type StockOverview struct {
	Info       *models.StockInfo  `json:"info"`
	Financials *models.Financials `json:"financials,omitempty"`
}

// Overview fetches a stock's profile and financials in parallel. The
// profile is required; missing financials are tolerated.
func Overview(ctx context.Context, yf *YFinance, sc *Screener, symbol string) (*StockOverview, error) {
	var out StockOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := yf.GetStockInfo(gctx, symbol)
		if err != nil {
			return fmt.Errorf("stock info: %w", err)
		}
		out.Info = info
		return nil
	})
	if sc != nil {
		g.Go(func() error {
			fin, err := sc.GetFinancials(gctx, symbol)
			if err != nil {
				sc.log.WithError(err).WithField("symbol", symbol).Debug("Financials unavailable")
				return nil
			}
			out.Financials = fin
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
