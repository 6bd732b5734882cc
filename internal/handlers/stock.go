package handlers

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/api"
	"github.com/dyike/DepotGo/internal/storage"
	"github.com/dyike/DepotGo/internal/view"
)

// StockPoller refreshes stock lines on a display.
type StockPoller struct {
	fetcher StockFetcher
	display view.Display
	logger  *zap.Logger
	journal storage.Journal
}

func NewStockPoller(fetcher StockFetcher, display view.Display, logger *zap.Logger, journal storage.Journal) *StockPoller {
	return &StockPoller{
		fetcher: fetcher,
		display: display,
		logger:  orNop(logger),
		journal: orDiscard(journal),
	}
}

// Update fetches item once and writes the result to target. Failures are
// logged and rendered as unavailable; nothing is returned or retried.
func (p *StockPoller) Update(ctx context.Context, item, target string) {
	level, err := p.fetcher.FetchStock(ctx, api.StockQuery{Item: item})
	if err != nil {
		p.logger.Error("Error fetching stock",
			zap.String("item", item),
			zap.String("target", target),
			zap.Error(err))
		p.display.SetText(target, view.StockText("", false))
		p.journal.Record(storage.Interaction{
			Kind: storage.KindStock, Subject: item, Target: target,
			Outcome: storage.OutcomeFailed, Detail: err.Error(),
		})
		return
	}

	p.display.SetText(target, view.StockText(level.String(), true))
	p.journal.Record(storage.Interaction{
		Kind: storage.KindStock, Subject: item, Target: target,
		Outcome: storage.OutcomeOK, Detail: level.String(),
	})
}

// PollAll updates every tracked item concurrently and waits for all of them.
func (p *StockPoller) PollAll(ctx context.Context, items []config.TrackedItem) {
	var wg sync.WaitGroup
	for _, it := range items {
		wg.Add(1)
		go func(it config.TrackedItem) {
			defer wg.Done()
			p.Update(ctx, it.Item, it.Target)
		}(it)
	}
	wg.Wait()
}
