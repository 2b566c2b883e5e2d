package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"eventparticipation/internal/domain"
)

// Cache stores raw lookup results. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis string keys.
type RedisCache struct {
	rdb redis.UniversalClient
}

func NewRedisCache(rdb redis.UniversalClient) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

type CacheOption func(*Cached)

// WithCachePrefix sets the key prefix. Default "directory".
func WithCachePrefix(prefix string) CacheOption {
	return func(c *Cached) { c.prefix = strings.Trim(prefix, ":") }
}

// WithCacheTTL sets how long found events and users are kept. Default 30s.
func WithCacheTTL(d time.Duration) CacheOption {
	return func(c *Cached) { c.ttl = d }
}

// Cached wraps an event and a user directory with a shared cache.
// Concurrent lookups of the same key share one call to the directory.
// Only positive answers are cached so new events and users show up at once.
// Cache failures are logged and the directory is asked directly.
type Cached struct {
	events domain.EventDirectory
	users  domain.UserDirectory
	cache  Cache
	group  singleflight.Group
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(events domain.EventDirectory, users domain.UserDirectory, cache Cache, logger *slog.Logger, opts ...CacheOption) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cached{
		events: events,
		users:  users,
		cache:  cache,
		prefix: "directory",
		ttl:    30 * time.Second,
		logger: logger.With("component", "directory_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) key(kind string, id int64) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, kind, id)
}

func (c *Cached) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	v, err := lookup(ctx, c, c.key("event", eventID), func(ctx context.Context) (domain.Event, bool, error) {
		e, err := c.events.GetEvent(ctx, eventID)
		if err != nil {
			return domain.Event{}, false, err
		}
		return *e, true, nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Cached) ExistsUser(ctx context.Context, userID int64) (bool, error) {
	return lookup(ctx, c, c.key("user_exists", userID), func(ctx context.Context) (bool, bool, error) {
		ok, err := c.users.ExistsUser(ctx, userID)
		return ok, ok, err
	})
}

func (c *Cached) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	v, err := lookup(ctx, c, c.key("user", userID), func(ctx context.Context) (domain.User, bool, error) {
		u, err := c.users.GetUser(ctx, userID)
		if err != nil {
			return domain.User{}, false, err
		}
		// Fallback users carry no profile and are not worth keeping.
		return *u, u.Email != "" || u.Name != "", nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// lookup reads key from the cache, or loads it once for all concurrent
// callers. load reports whether its value may be cached.
func lookup[T any](ctx context.Context, c *Cached, key string, load func(ctx context.Context) (T, bool, error)) (T, error) {
	var zero T
	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "err", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		c.logger.WarnContext(ctx, "cache entry corrupt", "key", key)
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		v, cacheable, err := load(ctx)
		if err != nil {
			return zero, err
		}
		if cacheable {
			raw, err := json.Marshal(v)
			if err == nil {
				err = c.cache.Set(ctx, key, raw, c.ttl)
			}
			if err != nil {
				c.logger.WarnContext(ctx, "cache write failed", "key", key, "err", err)
			}
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}
