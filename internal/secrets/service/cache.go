package service

import (
	"sync"
	"time"

	secretsDomain "github.com/allisson/secretgate/internal/secrets/domain"
)

// DefaultSecretCacheTTL is used when the configured TTL is not positive.
const DefaultSecretCacheTTL = 5 * time.Minute

type cacheEntry struct {
	value       string
	source      secretsDomain.Source
	retrievedAt time.Time
}

// SecretCache holds successfully resolved values per name for a fixed TTL.
// Expired entries are evicted on the next read of that name.
type SecretCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// CacheOption customizes a SecretCache.
type CacheOption func(*SecretCache)

// WithCacheClock overrides the time source.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *SecretCache) {
		c.now = now
	}
}

// NewSecretCache creates an empty cache.
func NewSecretCache(ttl time.Duration, opts ...CacheOption) *SecretCache {
	if ttl <= 0 {
		ttl = DefaultSecretCacheTTL
	}
	c := &SecretCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value and its source when a fresh entry exists.
func (c *SecretCache) Get(name string) (string, secretsDomain.Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[name]
	if !ok {
		return "", "", false
	}
	if c.now().Sub(entry.retrievedAt) >= c.ttl {
		delete(c.entries, name)
		return "", "", false
	}
	return entry.value, entry.source, true
}

// Set stores a value. Empty values are refused and Set reports false.
func (c *SecretCache) Set(name, value string, source secretsDomain.Source) bool {
	if value == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = cacheEntry{
		value:       value,
		source:      source,
		retrievedAt: c.now(),
	}
	return true
}

// Delete evicts a single name.
func (c *SecretCache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Len returns the number of stored entries, including ones not yet lazily evicted.
func (c *SecretCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the configured entry lifetime.
func (c *SecretCache) TTL() time.Duration {
	return c.ttl
}
