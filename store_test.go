package pubsite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubsite/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func indexedPosts() []content.Post {
	return []content.Post{
		{Slug: "b", Title: "B", Date: day("2024-03-01"), Tags: []string{"Go", "web"}, Body: "b body", ReadingTime: "1 min read"},
		{Slug: "a", Title: "A", Date: day("2024-03-01"), Tags: []string{"go"}, Body: "a body", ReadingTime: "1 min read"},
		{Slug: "c", Title: "C", Date: day("2023-12-31"), Tags: []string{}, Image: "/img/c.png", Draft: true, ReadingTime: "2 min read"},
	}
}

func TestStoreReplaceAndList(t *testing.T) {
	s := setupTestStore(t)
	want := indexedPosts()
	require.NoError(t, s.ReplacePosts(context.Background(), want))

	got, err := s.ListPosts("")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListPosts mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreMatchesLoaderOrder(t *testing.T) {
	loader := content.NewLoader(testPosts(), content.Options{})
	posts := loader.ListPosts()

	s := setupTestStore(t)
	require.NoError(t, s.ReplacePosts(context.Background(), posts))

	got, err := s.ListPosts("")
	require.NoError(t, err)
	assert.Equal(t, postSlugs(posts), postSlugs(got))
}

func TestStoreListByTag(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.ReplacePosts(context.Background(), indexedPosts()))

	got, err := s.ListPosts("GO")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, postSlugs(got))

	got, err = s.ListPosts("rust")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreListTags(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.ReplacePosts(context.Background(), indexedPosts()))

	tags, err := s.ListTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "web"}, tags, "tags differing only in case collapse")
}

func TestStoreGetPost(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.ReplacePosts(context.Background(), indexedPosts()))

	p, ok, err := s.GetPost("c")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, p.Draft)
	assert.Equal(t, "/img/c.png", p.Image)
	assert.True(t, day("2023-12-31").Equal(p.Date))

	_, ok, err = s.GetPost("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreReplaceDropsOldRows(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplacePosts(ctx, indexedPosts()))
	require.NoError(t, s.ReplacePosts(ctx, indexedPosts()[:1]))

	got, err := s.ListPosts("")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, postSlugs(got))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web"}, ParseTags(",go,web,"))
	assert.Equal(t, []string{}, ParseTags(",,"))
	assert.Equal(t, []string{}, ParseTags(""))
}
