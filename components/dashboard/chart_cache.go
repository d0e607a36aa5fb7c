package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultChartCacheEntries = 512
	defaultChartCacheTTL     = 5 * time.Minute
)

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartKey identifies one rendering of a widget chart.
type ChartKey struct {
	Definition string
	Instance   string
	ChartType  string
	Theme      string
	Content    any
}

// String joins the key parts with the hashed content.
func (k ChartKey) String() string {
	return strings.Join([]string{k.Definition, k.Instance, k.ChartType, k.Theme, contentHash(k.Content)}, ":")
}

// ChartCache is a bounded in-memory TTL cache for rendered charts. When
// full, expired entries go first, then the entry closest to expiry.
type ChartCache struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cachedChart

	hits   atomic.Int64
	misses atomic.Int64
}

type cachedChart struct {
	html    string
	expires time.Time
}

// ChartCacheOption customizes a ChartCache.
type ChartCacheOption func(*ChartCache)

// WithMaxEntries caps how many rendered charts are kept.
func WithMaxEntries(n int) ChartCacheOption {
	return func(c *ChartCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// NewChartCache builds a cache with the provided TTL. A TTL <= 0 disables caching.
func NewChartCache(ttl time.Duration, opts ...ChartCacheOption) *ChartCache {
	c := &ChartCache{
		ttl:        ttl,
		maxEntries: defaultChartCacheEntries,
		now:        time.Now,
		entries:    make(map[string]cachedChart),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrRender returns the cached HTML for key or renders and stores it.
// Render errors are returned and never cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	if html, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return html, nil
	}
	c.misses.Add(1)
	html, err := render()
	if err != nil {
		return "", err
	}
	c.store(key, html)
	return html, nil
}

// Len reports how many entries are held, expired ones included.
func (c *ChartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *ChartCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge drops every entry.
func (c *ChartCache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]cachedChart)
	c.mu.Unlock()
}

func (c *ChartCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) store(key, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	c.entries[key] = cachedChart{html: html, expires: now.Add(c.ttl)}
}

// evict must be called with mu held.
func (c *ChartCache) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			continue
		}
		if oldestKey == "" || entry.expires.Before(oldest) {
			oldestKey, oldest = key, entry.expires
		}
	}
	if len(c.entries) >= c.maxEntries && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// contentHash returns a deterministic sha1 for any JSON-encodable value.
func contentHash(v any) string {
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return "empty"
	}
	if v == nil {
		return "empty"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
