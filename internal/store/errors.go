package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate")

// ErrOutOfStock is returned when a purchase is attempted against a sweet
// whose quantity is zero. The stock is left untouched.
var ErrOutOfStock = errors.New("out of stock")

// ErrQuantityOverflow is returned when a restock would push the quantity
// past the maximum representable value. The stock is left untouched
// rather than silently wrapping.
var ErrQuantityOverflow = errors.New("quantity overflow")
