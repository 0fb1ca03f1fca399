package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sweetshop/apiserver/internal/store"
	"github.com/sweetshop/apiserver/types"
)

// ErrInvalidAmount is returned when a restock amount is not a positive
// integer.
var ErrInvalidAmount = errors.New("invalid amount")

// StockRepository defines the atomic stock mutations the inventory
// service runs on. Both operations are single-statement conditional
// updates at the storage layer.
type StockRepository interface {
	DecrementStock(ctx context.Context, id int64) (types.Sweet, error)
	IncrementStock(ctx context.Context, id int64, amount int64) (types.Sweet, error)
}

// EventPublisher sends a stock event to the named channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// InventoryService applies purchases and restocks as atomic quantity
// changes. A transient store failure is retried once before surfacing.
// Successful mutations emit a best-effort stock event when a publisher
// is configured.
type InventoryService struct {
	repo      StockRepository
	publisher EventPublisher
	channel   string
	logger    *slog.Logger
}

func NewInventoryService(repo StockRepository, publisher EventPublisher, channel string, logger *slog.Logger) *InventoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryService{
		repo:      repo,
		publisher: publisher,
		channel:   channel,
		logger:    logger,
	}
}

// Purchase takes one unit of stock from the sweet. Returns
// store.ErrOutOfStock when the quantity is already zero and
// store.ErrNotFound when the sweet does not exist; in both cases the
// stock is unchanged.
func (s *InventoryService) Purchase(ctx context.Context, id int64) (types.Sweet, error) {
	sweet, err := s.repo.DecrementStock(ctx, id)
	if err != nil && isTransient(ctx, err) {
		sweet, err = s.repo.DecrementStock(ctx, id)
	}
	if err != nil {
		return types.Sweet{}, err
	}

	s.publishEvent(ctx, sweet, types.StockEventPurchase, -1)
	return sweet, nil
}

// Restock adds amount units of stock to the sweet. The amount must be a
// positive integer; an addition that would overflow the quantity is
// rejected with store.ErrQuantityOverflow.
func (s *InventoryService) Restock(ctx context.Context, id int64, amount int64) (types.Sweet, error) {
	if amount <= 0 {
		return types.Sweet{}, ErrInvalidAmount
	}

	sweet, err := s.repo.IncrementStock(ctx, id, amount)
	if err != nil && isTransient(ctx, err) {
		sweet, err = s.repo.IncrementStock(ctx, id, amount)
	}
	if err != nil {
		return types.Sweet{}, err
	}

	s.publishEvent(ctx, sweet, types.StockEventRestock, amount)
	return sweet, nil
}

// publishEvent emits a stock event for a completed mutation. Publish
// failures are logged and never propagated: the mutation has already
// been applied and must not appear to fail.
func (s *InventoryService) publishEvent(ctx context.Context, sweet types.Sweet, kind string, delta int64) {
	if s.publisher == nil {
		return
	}

	event := types.StockEvent{
		ID:         uuid.NewString(),
		SweetID:    sweet.ID,
		Kind:       kind,
		Delta:      delta,
		Quantity:   sweet.Quantity,
		OccurredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("encode stock event", "error", err, "sweet_id", sweet.ID)
		return
	}

	attrs := map[string]string{"id": event.ID, "kind": kind}
	if _, err := s.publisher.Publish(ctx, s.channel, data, attrs); err != nil {
		s.logger.Warn("publish stock event", "error", err, "sweet_id", sweet.ID, "kind", kind)
	}
}

// isTransient reports whether a store error is worth one retry. Domain
// outcomes and caller cancellation are final.
func isTransient(ctx context.Context, err error) bool {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrOutOfStock),
		errors.Is(err, store.ErrQuantityOverflow):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case ctx.Err() != nil:
		return false
	}
	return true
}
