package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetshop/apiserver/internal/store"
	"github.com/sweetshop/apiserver/types"
)

type fakeStockRepo struct {
	sweet          types.Sweet
	decrementCalls int
	incrementCalls int
	// errs is consumed one per call; a nil entry means success.
	errs []error
}

func (f *fakeStockRepo) nextErr() error {
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeStockRepo) DecrementStock(ctx context.Context, id int64) (types.Sweet, error) {
	f.decrementCalls++
	if err := f.nextErr(); err != nil {
		return types.Sweet{}, err
	}
	f.sweet.Quantity--
	return f.sweet, nil
}

func (f *fakeStockRepo) IncrementStock(ctx context.Context, id int64, amount int64) (types.Sweet, error) {
	f.incrementCalls++
	if err := f.nextErr(); err != nil {
		return types.Sweet{}, err
	}
	f.sweet.Quantity += amount
	return f.sweet, nil
}

type fakePublisher struct {
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, data)
	return "", f.err
}

func TestInventory_Purchase(t *testing.T) {
	repo := &fakeStockRepo{sweet: types.Sweet{ID: 7, Quantity: 3}}
	svc := NewInventoryService(repo, nil, "stock-events", nil)

	sweet, err := svc.Purchase(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sweet.Quantity)
	assert.Equal(t, 1, repo.decrementCalls)
}

func TestInventory_Purchase_RetriesTransientOnce(t *testing.T) {
	repo := &fakeStockRepo{
		sweet: types.Sweet{ID: 7, Quantity: 3},
		errs:  []error{errors.New("connection reset")},
	}
	svc := NewInventoryService(repo, nil, "stock-events", nil)

	sweet, err := svc.Purchase(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sweet.Quantity)
	assert.Equal(t, 2, repo.decrementCalls)
}

func TestInventory_Purchase_TransientFailureSurfacesAfterRetry(t *testing.T) {
	transient := errors.New("connection reset")
	repo := &fakeStockRepo{
		sweet: types.Sweet{ID: 7, Quantity: 3},
		errs:  []error{transient, transient},
	}
	svc := NewInventoryService(repo, nil, "stock-events", nil)

	_, err := svc.Purchase(context.Background(), 7)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 2, repo.decrementCalls)
}

func TestInventory_Purchase_NoRetryOnDomainErrors(t *testing.T) {
	for _, final := range []error{store.ErrOutOfStock, store.ErrNotFound} {
		repo := &fakeStockRepo{errs: []error{final}}
		svc := NewInventoryService(repo, nil, "stock-events", nil)

		_, err := svc.Purchase(context.Background(), 7)
		assert.ErrorIs(t, err, final)
		assert.Equal(t, 1, repo.decrementCalls)
	}
}

func TestInventory_Purchase_NoRetryWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &fakeStockRepo{errs: []error{context.Canceled}}
	svc := NewInventoryService(repo, nil, "stock-events", nil)

	_, err := svc.Purchase(ctx, 7)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, repo.decrementCalls)
}

func TestInventory_Purchase_PublishesEvent(t *testing.T) {
	repo := &fakeStockRepo{sweet: types.Sweet{ID: 7, Quantity: 3}}
	publisher := &fakePublisher{}
	svc := NewInventoryService(repo, publisher, "stock-events", nil)

	_, err := svc.Purchase(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, "stock-events", publisher.channels[0])

	var event types.StockEvent
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, int64(7), event.SweetID)
	assert.Equal(t, types.StockEventPurchase, event.Kind)
	assert.Equal(t, int64(-1), event.Delta)
	assert.Equal(t, int64(2), event.Quantity)
}

func TestInventory_Purchase_PublishFailureDoesNotFail(t *testing.T) {
	repo := &fakeStockRepo{sweet: types.Sweet{ID: 7, Quantity: 3}}
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewInventoryService(repo, publisher, "stock-events", nil)

	sweet, err := svc.Purchase(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sweet.Quantity)
}

func TestInventory_Restock(t *testing.T) {
	repo := &fakeStockRepo{sweet: types.Sweet{ID: 7, Quantity: 50}}
	publisher := &fakePublisher{}
	svc := NewInventoryService(repo, publisher, "stock-events", nil)

	sweet, err := svc.Restock(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(60), sweet.Quantity)

	require.Len(t, publisher.payloads, 1)
	var event types.StockEvent
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.Equal(t, types.StockEventRestock, event.Kind)
	assert.Equal(t, int64(10), event.Delta)
	assert.Equal(t, int64(60), event.Quantity)
}

func TestInventory_Restock_InvalidAmount(t *testing.T) {
	for _, amount := range []int64{0, -1, -100} {
		repo := &fakeStockRepo{sweet: types.Sweet{ID: 7, Quantity: 50}}
		svc := NewInventoryService(repo, nil, "stock-events", nil)

		_, err := svc.Restock(context.Background(), 7, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Zero(t, repo.incrementCalls, "repository must not be touched for amount %d", amount)
	}
}

func TestInventory_Restock_RetriesTransientOnce(t *testing.T) {
	repo := &fakeStockRepo{
		sweet: types.Sweet{ID: 7, Quantity: 50},
		errs:  []error{errors.New("connection reset")},
	}
	svc := NewInventoryService(repo, nil, "stock-events", nil)

	sweet, err := svc.Restock(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(60), sweet.Quantity)
	assert.Equal(t, 2, repo.incrementCalls)
}

func TestInventory_Restock_NoRetryOnOverflow(t *testing.T) {
	repo := &fakeStockRepo{errs: []error{store.ErrQuantityOverflow}}
	svc := NewInventoryService(repo, nil, "stock-events", nil)

	_, err := svc.Restock(context.Background(), 7, 10)
	assert.ErrorIs(t, err, store.ErrQuantityOverflow)
	assert.Equal(t, 1, repo.incrementCalls)
}
