// Package kv provides the namespaced key-value port the pipeline and UI
// layers use for cached session lists and the simulated message log. Callers
// depend on the Store interface, never on a concrete client.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key has no value in the store.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is a minimal get/set/remove contract over namespaced string keys.
// Values are serialized JSON; the store does not interpret them.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// Key joins a namespace and parts into one store key.
func Key(namespace string, parts ...string) string {
	key := namespace
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
