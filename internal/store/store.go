// Package store holds what the record store implementations share.
package store

import "errors"

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when an update carries a stale version.
	ErrVersionConflict = errors.New("record version changed")
)

// DefaultBatchSize bounds the rows written per upsert call.
const DefaultBatchSize = 100
