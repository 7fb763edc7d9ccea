// Package cache stores finished summaries keyed by document content so a
// re-upload of the same PDF skips the model.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and sizes a cache driver.
type Config struct {
	Driver     string
	MaxEntries int
	Dir        string
	Redis      RedisConfig
}

// New builds the client named by cfg.Driver.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryClient(cfg.MaxEntries), nil
	case "disk":
		return NewDiskClient(cfg.Dir)
	case "redis":
		return NewRedisClient(cfg.Redis)
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

// Key returns the cache key for a document body and the model that
// summarized it.
func Key(model string, content []byte) string {
	sum := sha256.Sum256(content)
	return "summary:" + model + ":" + hex.EncodeToString(sum[:])
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error)              { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error                     { return nil }
func (Noop) Close() error                                             { return nil }
