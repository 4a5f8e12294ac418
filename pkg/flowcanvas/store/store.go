// Package store provides durable key-value storage for saved flows.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/registry"
)

// Store persists opaque values under string keys.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put replaces the value stored under key in a single step.
	// Readers observe either the old value or the new one, never a mix.
	Put(ctx context.Context, key string, value []byte) error

	// Get retrieves the value stored under key.
	// Returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key.
	// Returns nil if the key is absent.
	Delete(ctx context.Context, key string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a key is absent.
	ErrNotFound = errors.New("key not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store closed")

	// ErrUnknownBackend indicates Open was asked for an unregistered backend.
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Params carries backend-specific connection settings for Open.
type Params struct {
	// SQLitePath is a file path or ":memory:".
	SQLitePath string
	// RedisURL is a redis:// URL understood by redis.ParseURL.
	RedisURL string
	// RedisPrefix is prepended to every key.
	RedisPrefix string
}

// Opener creates a Store from Params.
type Opener func(ctx context.Context, p Params) (Store, error)

var backends = registry.New[Opener]()

func init() {
	Register("memory", func(context.Context, Params) (Store, error) {
		return NewMemoryStore(), nil
	})
	Register("sqlite", func(_ context.Context, p Params) (Store, error) {
		return NewSQLiteStore(p.SQLitePath)
	})
	Register("redis", func(ctx context.Context, p Params) (Store, error) {
		return DialRedis(ctx, p.RedisURL, p.RedisPrefix)
	})
}

// Register makes a backend available to Open under name.
func Register(name string, open Opener) {
	backends.Register(name, open)
}

// Backends returns the registered backend names.
func Backends() []string {
	return backends.Keys()
}

// Open creates a store using the named backend.
func Open(ctx context.Context, backend string, p Params) (Store, error) {
	open, ok := backends.Get(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, backend, backends.Keys())
	}
	return open(ctx, p)
}
