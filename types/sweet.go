package types

import "time"

// Sweet represents a sellable catalog item with its current stock level.
type Sweet struct {
	// ID is the unique identifier of the sweet, assigned at creation.
	// IDs are never reused, even after the sweet is deleted.
	ID int64 `json:"id" db:"id"`

	// Name is the human-readable name of the sweet.
	Name string `json:"name" db:"name"`

	// Category is the free-form category the sweet belongs to
	// (e.g., "Chocolate", "Gummies").
	Category string `json:"category" db:"category"`

	// Price is the unit price of the sweet. It is never negative.
	Price float64 `json:"price" db:"price"`

	// Quantity is the number of units currently in stock. It is never
	// negative; purchases against an empty stock are rejected rather
	// than driving it below zero.
	Quantity int64 `json:"quantity" db:"quantity"`

	// CreatedAt is the timestamp at which the sweet was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the sweet.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
