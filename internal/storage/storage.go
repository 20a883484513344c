// Package storage provides the durable key-value slots that hold the
// in-progress form state, the local submission archive and completion
// markers.
//
// Values are opaque byte strings, typically JSON documents. Backends:
//
//   - Memory: process-local, used in tests and with STORAGE_BACKEND=memory
//   - File: one file per key under a directory
//   - repository.KVRepository: a SurrealDB table
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or has
// been removed.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a durable string-keyed slot store.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}
