package domain

import "errors"

var (
	// ErrNotInitialized indicates no snapshot has been loaded yet.
	ErrNotInitialized = errors.New("search index not initialized")

	// ErrNotFound indicates an id absent from the loaded snapshot.
	ErrNotFound = errors.New("command not found")

	// ErrInvalidSnapshot indicates the index pipeline handed over a
	// malformed snapshot.
	ErrInvalidSnapshot = errors.New("invalid index snapshot")
)
