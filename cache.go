package pubsite

import (
	"errors"
	"io/fs"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/research"
)

// SiteCache is an in-memory snapshot of posts, tags and the research catalog.
// A zero TTL keeps the snapshot until Invalidate is called.
type SiteCache struct {
	mu          sync.RWMutex
	posts       []content.Post
	tags        []string
	catalog     *research.Catalog
	fetched     time.Time
	ttl         time.Duration
	loader      *content.Loader
	catalogPath string
	logger      *zap.Logger
}

// NewSiteCache creates a SiteCache reading posts through loader and the
// catalog from catalogPath.
func NewSiteCache(loader *content.Loader, catalogPath string, ttl time.Duration, logger *zap.Logger) *SiteCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteCache{
		loader:      loader,
		catalogPath: catalogPath,
		ttl:         ttl,
		logger:      logger,
	}
}

func (c *SiteCache) valid() bool {
	if c.catalog == nil {
		return false
	}
	return c.ttl <= 0 || time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *SiteCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.catalog = nil
	c.mu.Unlock()
}

func (c *SiteCache) load() error {
	if c.valid() {
		return nil
	}
	catalog, err := research.Load(c.catalogPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		c.logger.Warn("research catalog not found, serving an empty library", zap.String("path", c.catalogPath))
		catalog = research.Empty()
	}
	posts := c.loader.ListPosts()
	c.posts = posts
	c.tags = content.TagsOf(posts)
	c.catalog = catalog
	c.fetched = time.Now()
	c.logger.Debug("site snapshot loaded",
		zap.Int("posts", len(posts)),
		zap.Int("papers", len(catalog.AllPapers())),
		zap.Bool("drafts", c.loader.Drafts()))
	return nil
}

// ensureLoaded returns the cached snapshot after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *SiteCache) ensureLoaded() ([]content.Post, []string, *research.Catalog, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags, catalog := c.posts, c.tags, c.catalog
		c.mu.RUnlock()
		return posts, tags, catalog, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, nil, err
	}
	return c.posts, c.tags, c.catalog, nil
}

// ListPosts returns visible posts, optionally filtered by tag.
func (c *SiteCache) ListPosts(tag string) ([]content.Post, error) {
	posts, _, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return content.FilterByTag(posts, tag), nil
}

// ListTags returns all unique tags from visible posts.
func (c *SiteCache) ListTags() ([]string, error) {
	_, tags, _, err := c.ensureLoaded()
	return tags, err
}

// GetPost returns a single visible post by slug from the cache.
func (c *SiteCache) GetPost(slug string) (content.Post, bool, error) {
	posts, _, _, err := c.ensureLoaded()
	if err != nil {
		return content.Post{}, false, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, true, nil
		}
	}
	return content.Post{}, false, nil
}

// Catalog returns the cached research catalog.
func (c *SiteCache) Catalog() (*research.Catalog, error) {
	_, _, catalog, err := c.ensureLoaded()
	return catalog, err
}
