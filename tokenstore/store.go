// Package tokenstore persists serialized access tokens between runs.
//
// A Store holds a single opaque document. The sierra client writes the token
// JSON through Save whenever it obtains a fresh token and reads it back with
// Load before every request, so several processes pointed at the same store
// share one token. Nothing is locked: when two writers race, the last Save
// wins.
//
// Implementations:
//
//   - FileStore: a file on any afero filesystem (the OS by default)
//   - MemoryStore: process-local storage, mainly for tests
//   - RedisStore: a key in Redis, shared by hosts that cannot share a disk
package tokenstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("no cached token")

// Store persists the serialized token.
type Store interface {
	// Load returns the saved document or ErrNotFound.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the saved document.
	Save(ctx context.Context, data []byte) error

	// Clear removes the saved document. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
