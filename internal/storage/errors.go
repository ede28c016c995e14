package storage

import "errors"

// Sentinel errors shared by every store implementation. Backends map their
// driver-specific failures onto these so callers never branch on pgconn or
// clickhouse error types.
var (
	// ErrNotFound: the requested period, snapshot or trade does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey: an insert collided with an existing record. Trade
	// and period stores are append-only, so the caller either skips the
	// duplicate or treats it as a bug.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput: the record failed validation before reaching the
	// backend (nil pointer, empty ID, zero timestamp).
	ErrInvalidInput = errors.New("invalid input")
)
