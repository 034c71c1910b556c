package rates

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// cachedRate is one fetched rate and when it was fetched.
type cachedRate struct {
	rate    decimal.Decimal
	fetched time.Time
}

// Cache is a TTL cache in front of a Fetcher.
type Cache struct {
	source Fetcher
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedRate
	sf      singleflight.Group
}

// NewCache wraps source with a TTL cache. A zero TTL disables caching but
// still collapses concurrent fetches.
func NewCache(source Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedRate),
	}
}

func (c *Cache) expired(entry cachedRate) bool {
	if c.ttl == 0 {
		return true
	}
	return c.now().Sub(entry.fetched) > c.ttl
}

// Rate returns a cached rate, or fetches and stores a fresh one.
func (c *Cache) Rate(ctx context.Context, from string) (decimal.Decimal, error) {
	key := strings.ToUpper(from)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !c.expired(entry) {
		return entry.rate, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after winning the flight
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && !c.expired(entry) {
			return entry.rate, nil
		}

		rate, err := c.source.Rate(ctx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = cachedRate{rate: rate, fetched: c.now()}
		c.mu.Unlock()
		return rate, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.(decimal.Decimal), nil
}

// Invalidate drops every cached rate.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cachedRate)
	c.mu.Unlock()
}
