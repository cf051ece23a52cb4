package listing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// ttlForever keeps an entry for the lifetime of the cache.
	ttlForever time.Duration = 0
	// ttlRetry marks a degraded value. It is displayed until the cache's retry
	// window passes but never served to load, so the next load refetches.
	ttlRetry time.Duration = -1
)

type loadState int

const (
	loadFetched loadState = iota
	loadHit
	loadDegraded
)

type cacheEntry[T any] struct {
	value    T
	storedAt time.Time
	ttl      time.Duration
}

// cache holds fetched values per key with a per-entry freshness window and
// collapses concurrent loads of the same key into one fetch.
type cache[T any] struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry[T]
	group      singleflight.Group
	now        func() time.Time
	retryAfter time.Duration
}

func newCache[T any](now func() time.Time, retryAfter time.Duration) *cache[T] {
	return &cache[T]{
		entries:    make(map[string]cacheEntry[T]),
		now:        now,
		retryAfter: retryAfter,
	}
}

// peek returns the entry for key, fresh or not.
func (c *cache[T]) peek(key string) (value T, fresh bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return value, false, false
	}
	return e.value, c.freshLocked(e), true
}

// fresh returns the value for key when it may be served without a fetch.
func (c *cache[T]) fresh(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.ttl == ttlRetry || !c.freshLocked(e) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (c *cache[T]) freshLocked(e cacheEntry[T]) bool {
	switch e.ttl {
	case ttlForever:
		return true
	case ttlRetry:
		return c.now().Sub(e.storedAt) < c.retryAfter
	default:
		return c.now().Sub(e.storedAt) < e.ttl
	}
}

func (c *cache[T]) store(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[T]{value: value, storedAt: c.now(), ttl: ttl}
}

type loadResult[T any] struct {
	value T
	state loadState
}

// load returns the fresh value for key or fetches it. Errors are never cached.
//
// The shared fetch is detached from the caller that started it: a caller whose
// ctx ends stops waiting and gets ctx.Err(), while the fetch completes for the
// callers still waiting and for the cache.
func (c *cache[T]) load(ctx context.Context, key string, fetch func(ctx context.Context) (T, time.Duration, error)) (value T, state loadState, err error) {
	if v, ok := c.fresh(key); ok {
		return v, loadHit, nil
	}
	if err := ctx.Err(); err != nil {
		return value, loadFetched, err
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.fresh(key); ok {
			return loadResult[T]{value: v, state: loadHit}, nil
		}
		v, ttl, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.store(key, v, ttl)
		state := loadFetched
		if ttl == ttlRetry {
			state = loadDegraded
		}
		return loadResult[T]{value: v, state: state}, nil
	})

	select {
	case <-ctx.Done():
		return value, loadFetched, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return value, loadFetched, r.Err
		}
		res := r.Val.(loadResult[T])
		return res.value, res.state, nil
	}
}
