package storage

import "errors"

// Errors shared by the payout and draw store implementations.
var (
	// ErrNotFound is returned when no record matches the query.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a payout for a
	// trade/pipeline pair that was already recorded. Payout history is
	// append-only; a second result for the same draw is a caller bug.
	ErrDuplicateKey = errors.New("duplicate key: payout already recorded")

	// ErrInvalidInput is returned when a record fails validation
	// before it reaches the backend.
	ErrInvalidInput = errors.New("invalid input")
)
