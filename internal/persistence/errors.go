package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrCorrupt is returned when a stored value cannot be decoded or unsealed.
	ErrCorrupt = errors.New("persistence: stored value is corrupt")
)
