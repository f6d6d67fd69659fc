package storage

import "errors"

// Common client storage errors
var (
	// ErrCacheNotFound indicates that no cache entry exists for the key
	ErrCacheNotFound = errors.New("cache entry not found")

	// ErrOperationNotFound indicates that pending operation was not found
	ErrOperationNotFound = errors.New("pending operation not found")

	// ErrConflictNotFound indicates that open conflict was not found
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
