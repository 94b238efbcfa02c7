package editshell

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested page or draft does not exist.
var ErrNotFound = sql.ErrNoRows

// PageCache is an in-memory cache of loaded content pages with TTL.
type PageCache struct {
	mu      sync.RWMutex
	pages   []Page
	fetched time.Time
	ttl     time.Duration
	source  *ContentSource
}

// NewPageCache creates a PageCache backed by the given ContentSource.
func NewPageCache(s *ContentSource, ttl time.Duration) *PageCache {
	return &PageCache{source: s, ttl: ttl}
}

func (c *PageCache) valid() bool {
	return c.pages != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.pages = nil
	c.mu.Unlock()
}

// ensureLoaded returns cached pages after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PageCache) ensureLoaded() ([]Page, error) {
	c.mu.RLock()
	if c.valid() {
		pages := c.pages
		c.mu.RUnlock()
		return pages, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.pages, nil
	}
	pages, err := c.source.Load()
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []Page{}
	}
	c.pages = pages
	c.fetched = time.Now()
	return c.pages, nil
}

// ListPages returns loaded pages. Pages marked draft are included only when
// includeDrafts is set.
func (c *PageCache) ListPages(includeDrafts bool) ([]Page, error) {
	pages, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if includeDrafts {
		return pages, nil
	}
	var out []Page
	for _, p := range pages {
		if !p.Draft {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetPage returns a single page by slug.
func (c *PageCache) GetPage(slug string, includeDrafts bool) (Page, error) {
	pages, err := c.ensureLoaded()
	if err != nil {
		return Page{}, err
	}
	for _, p := range pages {
		if p.Slug == slug && (includeDrafts || !p.Draft) {
			return p, nil
		}
	}
	return Page{}, ErrNotFound
}
