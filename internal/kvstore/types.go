package kvstore

import (
	"context"
	"errors"
)

// returned by Get when the key has no value
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a persistent string key-value store.
// Remove on a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
