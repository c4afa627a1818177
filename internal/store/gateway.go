// Package store implements the persistence gateway: a string key/value
// store with optional cross-process change signals, plus typed documents
// and backup helpers layered on top of it.
package store

import "context"

// Gateway is a best-effort string key/value store. Every operation may fail
// (storage disabled, full, unreachable); callers log and carry on.
type Gateway interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// Change is an external write observed on a key. NewValue is nil when the
// key was removed.
type Change struct {
	Key      string  `json:"key"`
	NewValue *string `json:"newValue"`
}

// Watcher is implemented by gateways that can signal writes made by other
// handles on the same underlying storage (another process, another tab).
type Watcher interface {
	// Watch starts delivering changes to fn and returns once delivery is
	// set up. Delivery stops when ctx is cancelled. Writes made through
	// this handle are never delivered back to it.
	Watch(ctx context.Context, fn func(Change)) error
}

// Closer is implemented by gateways holding external resources.
type Closer interface {
	Close() error
}

func strPtr(s string) *string { return &s }
