package types

import "errors"

// Error taxonomy shared across packages. Callers classify failures with
// errors.Is against these sentinels; wrapping adds the local detail.
var (
	// ErrInvalidConfig marks invalid static configuration. It is fatal at
	// startup and must never be produced per request.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrValidation marks blank or missing required request input.
	ErrValidation = errors.New("invalid request")

	// ErrStoreWrite marks a failed batch write to the graph store or the
	// vector index. It aborts only the batch it wraps.
	ErrStoreWrite = errors.New("store write failed")

	// ErrSynthesis marks a chat-model failure while an answer was
	// explicitly requested.
	ErrSynthesis = errors.New("answer synthesis failed")

	// ErrNotFound marks a lookup that matched nothing.
	ErrNotFound = errors.New("not found")
)
