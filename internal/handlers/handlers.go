// Package handlers binds depot API calls to display updates.
package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/api"
	"github.com/dyike/DepotGo/internal/logging"
	"github.com/dyike/DepotGo/internal/storage"
)

type StockFetcher interface {
	FetchStock(ctx context.Context, q api.StockQuery) (api.StockLevel, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order api.OrderRequest) (string, error)
}

type AccountCreator interface {
	CreateAccount(ctx context.Context, signup api.SignupRequest) (string, error)
}

type Uploader interface {
	Upload(ctx context.Context, upload api.UploadRequest, format api.ResponseFormat) (string, error)
}

// TargetFor returns the display target of an item's stock line.
func TargetFor(item string) string {
	return config.StockTarget(item)
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return logging.Nop()
	}
	return logger
}

func orDiscard(j storage.Journal) storage.Journal {
	if j == nil {
		return storage.Discard
	}
	return j
}

func outcomeOf(err error) string {
	if err == nil {
		return storage.OutcomeOK
	}
	if api.KindOf(err) == api.KindPrecondition {
		return storage.OutcomeRejected
	}
	return storage.OutcomeFailed
}

func detailOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
