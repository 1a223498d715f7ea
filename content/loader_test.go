package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postFile(title, date string, tags []string, draft bool, body string) *fstest.MapFile {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + title + "\n")
	b.WriteString("description: About " + title + "\n")
	b.WriteString("date: " + date + "\n")
	b.WriteString("author: Ada\n")
	if len(tags) > 0 {
		b.WriteString("tags: [" + strings.Join(tags, ", ") + "]\n")
	}
	if draft {
		b.WriteString("draft: true\n")
	}
	b.WriteString("---\n")
	b.WriteString(body)
	return &fstest.MapFile{Data: []byte(b.String())}
}

func slugs(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestListPostsDraftVisibility(t *testing.T) {
	fsys := fstest.MapFS{
		"post-a.mdx": postFile("Post A", "2024-01-01", nil, false, "Hello"),
		"post-b.mdx": postFile("Post B", "2024-06-01", nil, true, "Draft"),
	}

	prod := NewLoader(fsys, Options{})
	assert.Equal(t, []string{"post-a"}, slugs(prod.ListPosts()))

	dev := NewLoader(fsys, Options{Drafts: true})
	assert.Equal(t, []string{"post-b", "post-a"}, slugs(dev.ListPosts()))
}

func TestListPostsSortedByDateStable(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": postFile("A", "2023-05-01", nil, false, "x"),
		"b.md": postFile("B", "2024-02-10", nil, false, "x"),
		"c.md": postFile("C", "2023-05-01", nil, false, "x"),
		"d.md": postFile("D", "2023-05-01", nil, false, "x"),
		"e.md": postFile("E", "2025-01-01", nil, false, "x"),
	}
	got := slugs(NewLoader(fsys, Options{}).ListPosts())
	want := []string{"e", "b", "a", "c", "d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListPosts order mismatch (-want +got):\n%s", diff)
	}
}

func TestListPostsIgnoresOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"post.md":     postFile("Post", "2024-01-01", nil, false, "x"),
		"notes.txt":   &fstest.MapFile{Data: []byte("not a post")},
		"images/a.md": postFile("Nested", "2024-01-01", nil, false, "x"),
		".md":         &fstest.MapFile{Data: []byte("---\ntitle: nameless\n---\n")},
		"broken.md":   &fstest.MapFile{Data: []byte("---\ndate: [not, a, date]\n---\nbody")},
	}
	got := slugs(NewLoader(fsys, Options{}).ListPosts())
	assert.Equal(t, []string{"post"}, got)
}

func TestListPostsMissingDirectory(t *testing.T) {
	loader := NewLoader(os.DirFS(filepath.Join(t.TempDir(), "missing")), Options{})
	posts := loader.ListPosts()
	require.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.Empty(t, loader.ListAllTags())

	_, ok := loader.GetPost("anything")
	assert.False(t, ok)
}

func TestGetPost(t *testing.T) {
	body := "# Heading\n\nSome words in the body."
	fsys := fstest.MapFS{
		"hello.md":  postFile("Hello", "2024-03-04", []string{"Go", "web"}, false, body),
		"draft.mdx": postFile("Draft", "2024-03-05", nil, true, "secret"),
	}
	loader := NewLoader(fsys, Options{})

	post, ok := loader.GetPost("hello")
	require.True(t, ok)
	assert.Equal(t, "hello", post.Slug)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "About Hello", post.Description)
	assert.Equal(t, "Ada", post.Author)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), post.Date)
	assert.Equal(t, []string{"Go", "web"}, post.Tags)
	assert.Equal(t, body, post.Body)
	assert.Equal(t, "1 min read", post.ReadingTime)
	assert.Equal(t, "/blog/hello/", post.Link())
	assert.False(t, post.Draft)

	_, ok = loader.GetPost("draft")
	assert.False(t, ok, "drafts are hidden outside development")

	draft, ok := NewLoader(fsys, Options{Drafts: true}).GetPost("draft")
	require.True(t, ok)
	assert.True(t, draft.Draft)
}

func TestGetPostNotFound(t *testing.T) {
	loader := NewLoader(fstest.MapFS{
		"hello.md": postFile("Hello", "2024-03-04", nil, false, "x"),
	}, Options{})

	for _, slug := range []string{"", "missing", "../hello", "nested/hello", "hello.md"} {
		_, ok := loader.GetPost(slug)
		assert.False(t, ok, "slug %q", slug)
	}
}

func TestListPostsByTagIgnoresCase(t *testing.T) {
	fsys := fstest.MapFS{
		"one.md":   postFile("One", "2024-01-01", []string{"Go"}, false, "x"),
		"two.md":   postFile("Two", "2024-02-01", []string{"rust"}, false, "x"),
		"three.md": postFile("Three", "2024-03-01", []string{"go", "web"}, false, "x"),
	}
	loader := NewLoader(fsys, Options{})

	upper := loader.ListPostsByTag("GO")
	lower := loader.ListPostsByTag("go")
	assert.Equal(t, upper, lower)
	assert.Equal(t, []string{"three", "one"}, slugs(lower))
	assert.Empty(t, loader.ListPostsByTag("python"))
}

func TestListAllTags(t *testing.T) {
	fsys := fstest.MapFS{
		"one.md":   postFile("One", "2024-01-01", []string{"web", "go"}, false, "x"),
		"two.md":   postFile("Two", "2024-02-01", []string{"go", "design"}, false, "x"),
		"three.md": postFile("Three", "2024-03-01", []string{"hidden"}, true, "x"),
	}
	assert.Equal(t, []string{"design", "go", "web"}, NewLoader(fsys, Options{}).ListAllTags())
	assert.Equal(t, []string{"design", "go", "hidden", "web"}, NewLoader(fsys, Options{Drafts: true}).ListAllTags())
}

func TestListPostsDuplicateSlugPrefersFirstExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"intro.md":  postFile("Intro MD", "2024-01-01", nil, false, "plain"),
		"intro.mdx": postFile("Intro MDX", "2024-02-01", nil, false, "module"),
		"other.md":  postFile("Other", "2024-01-15", nil, false, "x"),
	}
	loader := NewLoader(fsys, Options{})

	posts := loader.ListPosts()
	require.Equal(t, []string{"other", "intro"}, slugs(posts))
	assert.Equal(t, "Intro MD", posts[1].Title)

	post, ok := loader.GetPost("intro")
	require.True(t, ok)
	assert.Equal(t, posts[1], post)
}

func TestListPostsDuplicateSlugFallsBackWhenFirstIsBroken(t *testing.T) {
	fsys := fstest.MapFS{
		"intro.md":  {Data: []byte("---\ndate: [not, a, date]\n---\nbroken")},
		"intro.mdx": postFile("Intro MDX", "2024-02-01", nil, false, "module"),
	}
	loader := NewLoader(fsys, Options{})

	posts := loader.ListPosts()
	require.Len(t, posts, 1)
	assert.Equal(t, "Intro MDX", posts[0].Title)

	post, ok := loader.GetPost("intro")
	require.True(t, ok)
	assert.Equal(t, "Intro MDX", post.Title)
}

func TestModuleLinesStrippedOnlyForMDX(t *testing.T) {
	prose := "We built a tool that lets researchers\nimport their datasets and\nexport results as CSV."
	fsys := fstest.MapFS{
		"plain.md":      postFile("Plain", "2024-01-01", nil, false, prose),
		"component.mdx": postFile("Component", "2024-01-02", nil, false, "import Chart from './chart'\nexport const meta = {}\n\n"+prose),
	}
	loader := NewLoader(fsys, Options{})

	plain, ok := loader.GetPost("plain")
	require.True(t, ok)
	assert.Equal(t, prose, plain.Body)

	component, ok := loader.GetPost("component")
	require.True(t, ok)
	assert.Equal(t, prose, component.Body)
}

func TestListAllTagsIgnoresCase(t *testing.T) {
	fsys := fstest.MapFS{
		"new.md": postFile("New", "2024-02-01", []string{"Go", "web"}, false, "x"),
		"old.md": postFile("Old", "2024-01-01", []string{"go", "Design"}, false, "x"),
	}
	assert.Equal(t, []string{"Design", "Go", "web"}, NewLoader(fsys, Options{}).ListAllTags())
}
