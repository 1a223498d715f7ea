package pubsite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/research"
)

func copyCatalog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.FromSlash(testCatalog))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "research.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestSiteCacheKeepsSnapshotUntilInvalidated(t *testing.T) {
	path := copyCatalog(t)
	c := NewSiteCache(content.NewLoader(testPosts(), content.Options{}), path, 0, nil)

	catalog, err := c.Catalog()
	require.NoError(t, err)
	require.Len(t, catalog.AllPapers(), 4)

	require.NoError(t, os.WriteFile(path, []byte(`{"papers":[],"comics":[]}`), 0o644))

	catalog, err = c.Catalog()
	require.NoError(t, err)
	assert.Len(t, catalog.AllPapers(), 4, "snapshot is reused")

	c.Invalidate()
	catalog, err = c.Catalog()
	require.NoError(t, err)
	assert.Empty(t, catalog.AllPapers())
}

func TestSiteCacheTTLExpires(t *testing.T) {
	path := copyCatalog(t)
	c := NewSiteCache(content.NewLoader(testPosts(), content.Options{}), path, time.Millisecond, nil)

	_, err := c.Catalog()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{"papers":[],"comics":[]}`), 0o644))
	time.Sleep(5 * time.Millisecond)

	catalog, err := c.Catalog()
	require.NoError(t, err)
	assert.Empty(t, catalog.AllPapers())
}

func TestSiteCacheInvalidCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"papers":[{"id":"x"}],"comics":[]}`), 0o644))
	c := NewSiteCache(content.NewLoader(testPosts(), content.Options{}), path, 0, nil)

	_, err := c.Catalog()
	assert.ErrorIs(t, err, research.ErrInvalidCatalog)

	_, err = c.ListPosts("")
	assert.Error(t, err)
}

func TestSiteCachePosts(t *testing.T) {
	c := NewSiteCache(content.NewLoader(testPosts(), content.Options{}), filepath.FromSlash(testCatalog), 0, nil)

	posts, err := c.ListPosts("go")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "second"}, postSlugs(posts))

	tags, err := c.ListTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)

	p, ok, err := c.GetPost("second")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Second", p.Title)

	_, ok, err = c.GetPost("wip")
	require.NoError(t, err)
	assert.False(t, ok)
}
