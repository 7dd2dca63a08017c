package store

import "errors"

// Error kinds surfaced by the store. Callers classify failures with
// errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrNotFound covers missing entities and versions looked up under the
	// wrong parent prompt. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference marks a foreign id that does not resolve to a live
	// entity. The referencing mutation is rejected in full.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrConflict marks a uniqueness violation (duplicate tag name).
	ErrConflict = errors.New("already exists")

	// ErrInvalidInput marks a field-level constraint violation.
	ErrInvalidInput = errors.New("invalid input")
)
