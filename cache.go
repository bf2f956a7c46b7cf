package site

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Catalog is a snapshot of everything the public pages list: published
// posts, published docs, projects, categories and authors.
type Catalog struct {
	Posts      []BlogPost
	Categories []Category
	Projects   []Project
	Docs       []Doc
	Authors    []Author
	Fetched    time.Time
}

// ContentCache is an in-memory cache of the public catalogue with TTL.
// Concurrent reloads share a single round of queries.
type ContentCache struct {
	mu      sync.RWMutex
	catalog *Catalog
	gen     uint64
	ttl     time.Duration
	store   *Store
	group   singleflight.Group
	now     func() time.Time
}

// NewContentCache creates a ContentCache backed by the given Store.
func NewContentCache(s *Store, ttl time.Duration) *ContentCache {
	return &ContentCache{store: s, ttl: ttl, now: time.Now}
}

func (c *ContentCache) valid() bool {
	return c.catalog != nil && c.now().Sub(c.catalog.Fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.catalog = nil
	c.gen++
	c.mu.Unlock()
}

// Catalog returns the cached snapshot, reloading it when stale. The returned
// value is shared and must not be modified.
func (c *ContentCache) Catalog(ctx context.Context) (*Catalog, error) {
	c.mu.RLock()
	if c.valid() {
		cat := c.catalog
		c.mu.RUnlock()
		return cat, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	v, err, _ := c.group.Do("catalog", func() (any, error) {
		c.mu.RLock()
		if c.valid() {
			cat := c.catalog
			c.mu.RUnlock()
			return cat, nil
		}
		c.mu.RUnlock()

		cat, err := c.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// A write that landed while loading makes this snapshot stale.
		if c.gen == gen {
			c.catalog = cat
		}
		c.mu.Unlock()
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

func (c *ContentCache) load(ctx context.Context) (*Catalog, error) {
	posts, err := c.store.ListPosts(ctx, PostFilter{PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	categories, err := c.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := c.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := c.store.ListDocs(ctx, DocFilter{PublishedOnly: true})
	if err != nil {
		return nil, err
	}
	authors, err := c.store.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Posts:      posts,
		Categories: categories,
		Projects:   projects,
		Docs:       docs,
		Authors:    authors,
		Fetched:    c.now(),
	}, nil
}

// ListPosts returns published posts, optionally filtered by category slug.
func (c *ContentCache) ListPosts(ctx context.Context, categorySlug string) ([]BlogPost, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if categorySlug == "" {
		return cat.Posts, nil
	}
	var filtered []BlogPost
	for _, p := range cat.Posts {
		for _, pc := range p.Categories {
			if pc.Slug == categorySlug {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// GetPost returns a single published post by slug from the cache.
func (c *ContentCache) GetPost(ctx context.Context, slug string) (BlogPost, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range cat.Posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}

func (c *ContentCache) GetProject(ctx context.Context, slug string) (Project, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return Project{}, err
	}
	for _, p := range cat.Projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Project{}, ErrNotFound
}

func (c *ContentCache) GetDoc(ctx context.Context, slug string) (Doc, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return Doc{}, err
	}
	for _, d := range cat.Docs {
		if d.Slug == slug {
			return d, nil
		}
	}
	return Doc{}, ErrNotFound
}

// ProjectDocs returns the published docs attached to a project.
func (c *ContentCache) ProjectDocs(ctx context.Context, projectID string) ([]Doc, error) {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	var out []Doc
	for _, d := range cat.Docs {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}
