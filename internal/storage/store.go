// Package storage provides the key-value abstraction behind every repository.
// Records are opaque bytes to a backend; repositories own their encoding and key
// layout, and the bond engine owns per-key locking. Swapping memory, Redis,
// Postgres or SQLite never touches business code.
package storage

import "context"

// Store is a flat key-value store.
//
// Get returns sentinel.ErrNotFound for missing keys. Deleting a missing key is
// not an error. List returns values whose keys start with prefix, ordered by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([][]byte, error)
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
