// Package repository implements the read-modify-write protocol against the
// shared sheet. Sentinel errors defined here let handlers distinguish the two
// conditions a caller can act on: a transport failure (retry as-is) and a
// stale position (re-fetch the pending list, then retry).
package repository

import "errors"

// ErrStalePosition is returned when a mutation targets a row offset that no
// longer points at a matching row in a freshly fetched table, typically
// because another session rewrote the sheet between display and action.
// Handlers should translate this into an HTTP 409 response.
var ErrStalePosition = errors.New("stale ticket position")

// ErrUnknownStore is returned when an operation names a store outside the
// configured set. Rows for unknown stores are tolerated on read but never
// produced on write.
var ErrUnknownStore = errors.New("unknown store")
