// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package storage

import (
	"context"
	"net/url"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/holomush/authclient/internal/xdg"
)

// Store is a durable string key-value sink.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// DefaultRedisPrefix namespaces keys written by the Redis backend.
const DefaultRedisPrefix = "authclient:"

// Config selects and parameterizes a backend.
type Config struct {
	Backend     string
	Path        string // file backend; defaults to xdg.SessionFile()
	RedisURL    string // redis backend, e.g. redis://localhost:6379/0
	RedisPrefix string // redis backend; defaults to DefaultRedisPrefix
}

// Open creates the backend named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		path := cfg.Path
		if path == "" {
			var err error
			path, err = xdg.SessionFile()
			if err != nil {
				return nil, oops.Code("STORAGE_PATH_UNRESOLVED").Wrap(err)
			}
		}
		return NewFile(path), nil
	case BackendRedis:
		return openRedis(ctx, cfg)
	default:
		return nil, oops.Code("STORAGE_UNKNOWN_BACKEND").
			With("backend", cfg.Backend).
			Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func openRedis(ctx context.Context, cfg Config) (Store, error) {
	if cfg.RedisURL == "" {
		return nil, oops.Code("STORAGE_REDIS_URL_REQUIRED").Errorf("redis backend requires a redis URL")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, oops.Code("STORAGE_REDIS_URL_INVALID").
			With("redis_url", redactURL(cfg.RedisURL)).
			Wrap(err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("STORAGE_REDIS_UNAVAILABLE").
			With("addr", opts.Addr).
			Wrap(err)
	}
	prefix := cfg.RedisPrefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return NewRedis(client, prefix), nil
}

// redactURL drops credentials so the URL can be attached to errors.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
