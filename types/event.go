package types

import "time"

// Kinds of stock events emitted by the inventory service.
const (
	StockEventPurchase = "purchase"
	StockEventRestock  = "restock"
)

// StockEvent describes a completed stock mutation on a single sweet.
// Events are published to the configured broker for downstream
// consumers (storefront caches, replenishment tooling). They are
// best-effort: a failed publish never rolls back the mutation.
type StockEvent struct {
	// ID is a unique identifier for the event.
	ID string `json:"id"`

	// SweetID identifies the sweet whose stock changed.
	SweetID int64 `json:"sweet_id"`

	// Kind is the mutation that produced the event, either
	// "purchase" or "restock".
	Kind string `json:"kind"`

	// Delta is the signed change applied to the quantity:
	// -1 for a purchase, the restock amount for a restock.
	Delta int64 `json:"delta"`

	// Quantity is the stock level immediately after the mutation.
	Quantity int64 `json:"quantity"`

	// OccurredAt is the time the mutation was applied.
	OccurredAt time.Time `json:"occurred_at"`
}
