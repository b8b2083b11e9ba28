// Package cache stores registry responses between runs.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// reported as ok == false with a nil error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Clear removes every entry.
	Clear(ctx context.Context) error
	Close() error
}

// Options selects a backend.
type Options struct {
	// Backend is none, memory, file or redis.
	Backend string
	// Dir is the file backend's directory.
	Dir string
	// RedisURL is the redis backend's connection URL.
	RedisURL string
	// TTL is how long entries stay valid. Zero keeps them forever.
	TTL time.Duration
}

// Open returns the backend named by o.Backend.
func Open(ctx context.Context, o Options) (Cache, error) {
	switch o.Backend {
	case "", "none":
		return None{}, nil
	case "memory":
		return NewMemory(o.TTL), nil
	case "file":
		if o.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory")
		}
		return NewFile(o.Dir, o.TTL), nil
	case "redis":
		r, err := OpenRedis(ctx, o.RedisURL, o.TTL)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", o.Backend)
}

// None never stores anything.
type None struct{}

func (None) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (None) Set(context.Context, string, []byte) error         { return nil }
func (None) Clear(context.Context) error                       { return nil }
func (None) Close() error                                      { return nil }
