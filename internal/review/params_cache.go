package review

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
	"github.com/conorfennell/memodeck/internal/storage"
)

// SettingsCache caches per-user settings (daily limits plus algorithm
// parameters) for a bounded TTL so the scheduler does not hit the
// settings table on every request. Invalidate is a first-class operation:
// the settings-update path calls it synchronously, so a stale entry never
// outlives an explicit write by more than the TTL.
type SettingsCache struct {
	store *storage.Store
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[uuid.UUID]cacheEntry
}

type cacheEntry struct {
	settings domain.UserSettings
	expires  time.Time
}

// NewSettingsCache creates a cache backed by the given store.
func NewSettingsCache(store *storage.Store, ttl time.Duration) *SettingsCache {
	return &SettingsCache{
		store:   store,
		ttl:     ttl,
		entries: make(map[uuid.UUID]cacheEntry),
	}
}

// Get returns the user's settings, loading and caching them on a miss.
// A user without a settings row gets the defaults.
func (c *SettingsCache) Get(ctx context.Context, userID uuid.UUID) (domain.UserSettings, error) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.settings, nil
	}

	settings, err := c.store.GetSettings(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		settings = domain.DefaultSettings(userID)
	} else if err != nil {
		return domain.UserSettings{}, err
	}

	c.mu.Lock()
	c.entries[userID] = cacheEntry{settings: settings, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return settings, nil
}

// Invalidate drops the cached entry for a user.
func (c *SettingsCache) Invalidate(userID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}
