// Package storage defines the persistence contracts of the feed server.
// Implementations live in the sqlite, mongo and memory subpackages.
package storage

import "context"

// Storage is a complete backend.
type Storage interface {
	UserStorage
	PostStorage

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the backend resources
	Close() error
}
