// Package cache provides a query-key-addressed result cache with entity-wide
// invalidation and optimistic patching. Services record query results under
// composite keys and mark whole entities stale after mutations; views read
// through the cache and refetch only what was invalidated.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key addresses one cached query result. Filter is the canonicalized filter
// parameter string ("" for unfiltered queries).
type Key struct {
	Entity string
	Op     string
	Filter string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Entity, k.Op, k.Filter)
}

// entityPrefix is what InvalidateEntity matches on.
func (k Key) entityPrefix() string { return k.Entity + ":" }

type entry struct {
	key     Key
	payload interface{}
	stale   bool
}

// QueryCache is a bounded, invalidation-driven snapshot store. Eviction only
// forces a refetch, never an inconsistency.
type QueryCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, *entry]
}

// New creates a cache holding at most size entries.
func New(size int) (*QueryCache, error) {
	l, err := lru.New[string, *entry](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &QueryCache{lru: l}, nil
}

// Get returns the cached payload when present and fresh.
func (c *QueryCache) Get(key Key) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key.String())
	if !ok || e.stale {
		return nil, false
	}
	return e.payload, true
}

// Set stores a payload, replacing any prior entry wholesale.
func (c *QueryCache) Set(key Key, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key.String(), &entry{key: key, payload: payload})
}

// GetOrLoad returns the fresh cached payload or runs loader and caches its
// result. A stale entry behaves like a miss.
func (c *QueryCache) GetOrLoad(ctx context.Context, key Key, loader func(context.Context) (interface{}, error)) (interface{}, error) {
	if payload, ok := c.Get(key); ok {
		return payload, nil
	}

	payload, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(key, payload)
	return payload, nil
}

// InvalidateEntity marks every entry whose key belongs to the entity stale.
// The next read of each entry triggers a refetch.
func (c *QueryCache) InvalidateEntity(entity string) {
	prefix := Key{Entity: entity}.entityPrefix()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range c.lru.Keys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if e, ok := c.lru.Peek(k); ok {
			e.stale = true
		}
	}
}

// Update is an in-flight optimistic mutation. Exactly one of Rollback or
// Settle must be called once the backing request resolves.
type Update struct {
	cache     *QueryCache
	entity    string
	snapshots []entry
	done      bool
}

// Optimistic synchronously rewrites every fresh entry of the entity with
// patch and captures pre-mutation snapshots. Because the patch is applied
// before the caller dispatches the backing request, a read issued immediately
// after always sees the speculative state.
func (c *QueryCache) Optimistic(entity string, patch func(key Key, payload interface{}) interface{}) *Update {
	prefix := Key{Entity: entity}.entityPrefix()

	c.mu.Lock()
	defer c.mu.Unlock()

	u := &Update{cache: c, entity: entity}
	for _, k := range c.lru.Keys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		e, ok := c.lru.Peek(k)
		if !ok || e.stale {
			continue
		}
		u.snapshots = append(u.snapshots, *e)
		e.payload = patch(e.key, e.payload)
	}
	return u
}

// Rollback restores the captured snapshots verbatim.
func (u *Update) Rollback() {
	if u.done {
		return
	}
	u.done = true

	u.cache.mu.Lock()
	defer u.cache.mu.Unlock()

	for i := range u.snapshots {
		snap := u.snapshots[i]
		if e, ok := u.cache.lru.Peek(snap.key.String()); ok {
			e.payload = snap.payload
			e.stale = snap.stale
		}
	}
}

// Settle reconciles after a successful mutation: the entity is invalidated so
// the next read picks up server-side derived fields the patch could not
// anticipate.
func (u *Update) Settle() {
	if u.done {
		return
	}
	u.done = true
	u.cache.InvalidateEntity(u.entity)
}
