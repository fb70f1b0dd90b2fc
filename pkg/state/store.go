// Package state persists small process-wide values such as OAuth tokens.
// Keys are independent: no adapter offers transactions across keys.
package state

import "context"

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores or replaces the value for key.
	Set(ctx context.Context, key, value string) error
}
