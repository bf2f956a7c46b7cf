package site

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ContentCache, *Store, *fakeClock) {
	t.Helper()
	s := newTestStore(t)
	c := NewContentCache(s, ttl)
	clock := newFakeClock()
	c.now = clock.Now
	return c, s, clock
}

func TestCacheServesSnapshotUntilTTL(t *testing.T) {
	c, s, clock := newTestCache(t, time.Minute)
	ctx := context.Background()
	mustPost(t, s, BlogPost{Slug: "first", TitlePT: "First", Published: true})

	posts, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	mustPost(t, s, BlogPost{Slug: "second", TitlePT: "Second", Published: true})
	posts, err = c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, posts, 1, "served from cache")

	clock.Advance(2 * time.Minute)
	posts, err = c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, posts, 2, "reloaded after TTL")
}

func TestCacheInvalidate(t *testing.T) {
	c, s, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	_, err := c.GetProject(ctx, "nexus-lab")
	assert.ErrorIs(t, err, ErrNotFound)

	p := Project{Slug: "nexus-lab", NamePT: "Nexus Lab"}
	require.NoError(t, s.SaveProject(ctx, &p))
	_, err = c.GetProject(ctx, "nexus-lab")
	assert.ErrorIs(t, err, ErrNotFound, "still cached")

	c.Invalidate()
	got, err := c.GetProject(ctx, "nexus-lab")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestCacheHoldsOnlyPublicContent(t *testing.T) {
	c, s, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	mustPost(t, s, BlogPost{Slug: "draft", TitlePT: "Draft"})
	require.NoError(t, s.SaveDoc(ctx, &Doc{Slug: "hidden", TitlePT: "Hidden"}))

	_, err := c.GetPost(ctx, "draft")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.GetDoc(ctx, "hidden")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheCategoryFilterAndProjectDocs(t *testing.T) {
	c, s, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	design := mustCategory(t, s, "design")
	mustPost(t, s, BlogPost{Slug: "a", TitlePT: "A", Published: true}, design.ID)
	mustPost(t, s, BlogPost{Slug: "b", TitlePT: "B", Published: true})

	p := Project{Slug: "quantum-ui", NamePT: "Quantum UI"}
	require.NoError(t, s.SaveProject(ctx, &p))
	require.NoError(t, s.SaveDoc(ctx, &Doc{Slug: "qui-intro", TitlePT: "Intro", ProjectID: p.ID, Published: true}))
	require.NoError(t, s.SaveDoc(ctx, &Doc{Slug: "general", TitlePT: "General", Published: true}))

	posts, err := c.ListPosts(ctx, "design")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].Slug)

	posts, err = c.ListPosts(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, posts)

	docs, err := c.ProjectDocs(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "qui-intro", docs[0].Slug)
}

func TestCacheConcurrentReads(t *testing.T) {
	c, s, _ := newTestCache(t, time.Hour)
	mustPost(t, s, BlogPost{Slug: "p", TitlePT: "P", Published: true})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetPost(context.Background(), "p"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
