package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// KV is a durable string key-value store. Values are opaque to the
// store; callers own the encoding.
type KV interface {
	// Get returns the value for key. ok is false when the key has never
	// been written or was deleted.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
