// Package query caches the results of keyed fetches and lets mutations
// invalidate and refetch them by key prefix.
package query

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	applog "fintrack/internal/log"
)

// Defaults used when New is given zero values.
const (
	DefaultSize = 100
	DefaultTTL  = 5 * time.Minute
)

// Key identifies a query, for example {"transactions", userID}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "\x00")
}

// HasPrefix reports whether k starts with every element of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	return len(prefix) <= len(k) && slices.Equal(k[:len(prefix)], prefix)
}

// Fetcher loads the data for one key.
type Fetcher func(ctx context.Context) (any, error)

type registration struct {
	key Key
	fn  Fetcher
}

// Client holds fetched results in an LRU cache. Concurrent fetches of the
// same key share one call.
type Client struct {
	data   *cache.LRUCache[any]
	flight singleflight.Group
	logger *applog.Logger

	mu       sync.Mutex
	fetchers map[string]registration
	gen      map[string]uint64
}

func New(size int, ttl time.Duration, logger *applog.Logger) *Client {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Client{
		data:     cache.NewLRUCache[any](size, ttl),
		logger:   logger.WithComponent(applog.ComponentQuery),
		fetchers: make(map[string]registration),
		gen:      make(map[string]uint64),
	}
}

// Cache exposes the backing store so it can be registered with a janitor.
func (c *Client) Cache() cache.Cleaner {
	return c.data
}

// Fetch returns the cached result for key or runs fn to produce it. fn is
// remembered so Refetch can rerun it.
func (c *Client) Fetch(ctx context.Context, key Key, fn Fetcher) (any, error) {
	id := key.String()

	c.mu.Lock()
	c.fetchers[id] = registration{key: slices.Clone(key), fn: fn}
	c.mu.Unlock()

	if v, ok := c.data.Get(id); ok {
		return v, nil
	}
	return c.load(ctx, id, fn)
}

func (c *Client) load(ctx context.Context, id string, fn Fetcher) (any, error) {
	c.mu.Lock()
	gen := c.gen[id]
	c.mu.Unlock()

	v, err, shared := c.flight.Do(id, func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// Results started before an invalidation are returned but not kept.
		if c.gen[id] == gen {
			c.data.Set(id, v)
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		c.logger.DebugContext(ctx, "Query failed", applog.FieldCacheKey, id, applog.FieldError, err)
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "Query result shared", applog.FieldCacheKey, id)
	}
	return v, nil
}

// Get is a typed Fetch.
func Get[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query %v: cached %T is not %T", key, v, zero)
	}
	return t, nil
}

// Peek returns the cached result for key without fetching.
func (c *Client) Peek(key Key) (any, bool) {
	return c.data.Get(key.String())
}

// Invalidate drops cached results whose key starts with prefix. Registered
// fetchers are kept.
func (c *Client) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, reg := range c.fetchers {
		if reg.key.HasPrefix(prefix) {
			c.gen[id]++
		}
	}
	n := c.data.DeleteFunc(func(id string) bool {
		return keyFromString(id).HasPrefix(prefix)
	})
	c.logger.Debug("Queries invalidated", applog.FieldCacheKey, prefix.String(), applog.FieldCount, n)
	return n
}

// Refetch invalidates prefix and reruns every registered fetcher under it.
func (c *Client) Refetch(ctx context.Context, prefix Key) error {
	c.Invalidate(prefix)

	c.mu.Lock()
	var regs []registration
	for _, reg := range c.fetchers {
		if reg.key.HasPrefix(prefix) {
			regs = append(regs, reg)
		}
	}
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	errs := make([]error, len(regs))
	for i, reg := range regs {
		g.Go(func() error {
			if _, err := c.load(gctx, reg.key.String(), reg.fn); err != nil {
				errs[i] = fmt.Errorf("refetch %v: %w", []string(reg.key), err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Clear forgets all results and fetchers.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.fetchers {
		c.gen[id]++
	}
	c.fetchers = make(map[string]registration)
	c.data.Clear()
}

func keyFromString(id string) Key {
	if id == "" {
		return Key{}
	}
	return Key(strings.Split(id, "\x00"))
}
