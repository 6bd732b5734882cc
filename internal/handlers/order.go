package handlers

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dyike/DepotGo/internal/api"
	"github.com/dyike/DepotGo/internal/storage"
)

// OrderSubmitter places orders and refreshes the ordered item's stock line.
type OrderSubmitter struct {
	placer  OrderPlacer
	poller  *StockPoller
	logger  *zap.Logger
	journal storage.Journal
}

func NewOrderSubmitter(placer OrderPlacer, poller *StockPoller, logger *zap.Logger, journal storage.Journal) *OrderSubmitter {
	return &OrderSubmitter{
		placer:  placer,
		poller:  poller,
		logger:  orNop(logger),
		journal: orDiscard(journal),
	}
}

// Submit posts one order. A failure is logged and returned but never
// rendered. On success the item's stock is fetched again.
func (s *OrderSubmitter) Submit(ctx context.Context, item string, quantity int) error {
	ack, err := s.placer.PlaceOrder(ctx, api.OrderRequest{Item: item, Quantity: quantity})
	s.journal.Record(storage.Interaction{
		Kind:    storage.KindOrder,
		Subject: item,
		Outcome: outcomeOf(err),
		Detail:  orderDetail(quantity, ack, err),
	})
	if err != nil {
		s.logger.Sugar().Errorf("Failed to order %d of %s: %v", quantity, item, err)
		return err
	}

	s.logger.Info("order placed", zap.String("item", item), zap.Int("quantity", quantity), zap.String("ack", ack))
	if s.poller != nil {
		s.poller.Update(ctx, strings.ToLower(item), TargetFor(item))
	}
	return nil
}

func orderDetail(quantity int, ack string, err error) string {
	if err != nil {
		return detailOf(err)
	}
	return strconv.Itoa(quantity) + ": " + ack
}
