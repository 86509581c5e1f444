// Package schedule keeps per-exerciser session lists consistent with the
// remote store and sequences calendar mutations against it.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"example.com/schedule/internal/domain"
	"example.com/schedule/internal/observability"
)

// Freshness is the state of a cached session list.
type Freshness string

const (
	FreshnessFresh   Freshness = "fresh"
	FreshnessStale   Freshness = "stale"
	FreshnessLoading Freshness = "loading"
)

// Cache owns the authoritative in-memory copy of each owner's session list.
// All writes to an entry happen through Invalidate and the fetch it schedules.
// At most one fetch is outstanding per owner key; an invalidation arriving
// while a fetch is in flight coalesces into a single follow-up fetch.
type Cache struct {
	store        domain.Store
	fetchTimeout time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	sessions []domain.Session
	state    Freshness
	loaded   bool
	fetching bool
	dirty    bool
	lastErr  error
	ready    chan struct{}
}

// NewCache constructs a Cache over the given store. fetchTimeout bounds each
// background fetch; it is the only timeout the cache imposes.
func NewCache(store domain.Store, fetchTimeout time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:        store,
		fetchTimeout: fetchTimeout,
		logger:       logger,
		entries:      make(map[string]*cacheEntry),
	}
}

// Get returns the owner's session list. The first access blocks until the
// initial load settles; afterwards Get returns the last-known value
// immediately and kicks off a background fetch only when the entry is stale.
// Returned slices are copies, so callers never observe a partial update.
func (c *Cache) Get(ctx context.Context, ownerID string) ([]domain.Session, error) {
	c.mu.Lock()
	e := c.entries[ownerID]
	if e == nil {
		e = &cacheEntry{state: FreshnessStale}
		c.entries[ownerID] = e
	}

	if e.loaded {
		if e.state == FreshnessStale && !e.fetching {
			c.startFetch(ownerID, e)
		}
		out := copySessions(e.sessions)
		c.mu.Unlock()
		return out, nil
	}

	if !e.fetching {
		c.startFetch(ownerID, e)
	}
	ready := e.ready
	c.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !e.loaded {
		if e.lastErr != nil {
			return nil, e.lastErr
		}
		return nil, errors.New("schedule fetch did not complete")
	}
	return copySessions(e.sessions), nil
}

// Invalidate marks the owner's entry stale and schedules a re-fetch. If a
// fetch is already in flight the entry is flagged so a fresh fetch follows
// the current one instead of spawning a concurrent duplicate.
func (c *Cache) Invalidate(ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[ownerID]
	if e == nil {
		return
	}
	if e.fetching {
		e.dirty = true
		return
	}
	e.state = FreshnessStale
	c.startFetch(ownerID, e)
}

// Loading reports whether a fetch is currently outstanding for the owner key.
func (c *Cache) Loading(ownerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[ownerID]
	return e != nil && e.fetching
}

// State exposes the freshness of the owner's entry, FreshnessStale when the
// owner has never been read.
func (c *Cache) State(ownerID string) Freshness {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[ownerID]
	if e == nil {
		return FreshnessStale
	}
	return e.state
}

// startFetch launches the single outstanding fetch for the entry. Callers
// must hold c.mu.
func (c *Cache) startFetch(ownerID string, e *cacheEntry) {
	if e.fetching {
		return
	}
	e.fetching = true
	e.state = FreshnessLoading
	e.ready = make(chan struct{})
	go c.fetch(ownerID, e, e.ready)
}

// fetch runs detached from any caller context so a caller going away while
// the call is outstanding never cancels or crashes the refresh; its result
// lands in the entry under the lock.
func (c *Cache) fetch(ownerID string, e *cacheEntry, ready chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	sessions, err := c.store.ListSessions(ctx, ownerID)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	e.fetching = false
	if err != nil {
		recordCacheFetch("error")
		e.lastErr = err
		e.state = FreshnessStale
		c.logger.Error("schedule fetch failed", "owner_id", ownerID, "error", err)
	} else {
		recordCacheFetch("ok")
		e.sessions = sessions
		e.loaded = true
		e.lastErr = nil
		e.state = FreshnessFresh
		observability.RecordScheduleRefreshed(time.Now().UTC())
	}
	close(ready)

	if e.dirty {
		e.dirty = false
		recordCacheCoalesced()
		e.state = FreshnessStale
		c.startFetch(ownerID, e)
	}
}

func copySessions(sessions []domain.Session) []domain.Session {
	out := make([]domain.Session, len(sessions))
	copy(out, sessions)
	return out
}
