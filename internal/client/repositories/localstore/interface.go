package localstore

import (
	"context"
)

// Repository is a durable string key/value store, the CLI counterpart of a
// browser's localStorage.
type Repository interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set inserts or replaces a single value.
	Set(ctx context.Context, key, value string) error

	// SetMany writes all values in one transaction.
	SetMany(ctx context.Context, values map[string]string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// List returns every stored pair.
	List(ctx context.Context) (map[string]string, error)
}
