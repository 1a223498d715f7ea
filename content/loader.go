package content

import (
	"errors"
	"io/fs"
	"path"
	"slices"
	"strings"

	goslug "github.com/goliatone/go-slug"
	"go.uber.org/zap"

	"github.com/eringen/pubsite/markdown"
)

// Extensions lists the file extensions treated as posts, in lookup order.
var Extensions = []string{".md", ".mdx"}

// Options configures a Loader.
type Options struct {
	// Drafts includes posts marked draft. Development builds set it.
	Drafts bool
	Logger *zap.Logger
}

// Loader reads posts from a flat directory of Markdown files.
// It holds no state between calls; every operation reads fs afresh.
type Loader struct {
	fs     fs.FS
	drafts bool
	logger *zap.Logger
}

// NewLoader returns a Loader reading post files from the root of fsys.
func NewLoader(fsys fs.FS, opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		fs:     fsys,
		drafts: opts.Drafts,
		logger: logger,
	}
}

// Drafts reports whether draft posts are visible through this loader.
func (l *Loader) Drafts() bool {
	return l.drafts
}

// ListPosts returns visible posts ordered by date, newest first.
// Posts sharing a date keep their filename order. When several files share a
// slug, the one GetPost would return wins and the others are ignored.
func (l *Loader) ListPosts() []Post {
	posts := make([]Post, 0)
	if l.fs == nil {
		return posts
	}
	entries, err := fs.ReadDir(l.fs, ".")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("read content directory", zap.Error(err))
		}
		return posts
	}

	var order []string
	files := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		slug, ok := slugFromName(entry.Name())
		if !ok {
			continue
		}
		if _, seen := files[slug]; !seen {
			order = append(order, slug)
		}
		files[slug] = append(files[slug], entry.Name())
	}

	for _, slug := range order {
		post, name, ok := l.load(slug)
		if len(files[slug]) > 1 {
			l.logger.Warn("duplicate post slug", zap.String("slug", slug),
				zap.Strings("files", files[slug]), zap.String("using", name))
		}
		if !ok || !l.visible(post) {
			continue
		}
		posts = append(posts, post)
	}

	SortByDate(posts)
	return posts
}

// GetPost returns the post stored under slug. The boolean is false when no
// readable file exists for slug or when the post is a hidden draft.
func (l *Loader) GetPost(slug string) (Post, bool) {
	if l.fs == nil || slug == "" || strings.ContainsAny(slug, `/\`) || !fs.ValidPath(slug) {
		return Post{}, false
	}
	post, _, ok := l.load(slug)
	if !ok || !l.visible(post) {
		return Post{}, false
	}
	return post, true
}

// ListPostsByTag returns visible posts tagged with tag, ignoring case.
func (l *Loader) ListPostsByTag(tag string) []Post {
	return FilterByTag(l.ListPosts(), tag)
}

// ListAllTags returns the sorted set of tags across visible posts.
func (l *Loader) ListAllTags() []string {
	return TagsOf(l.ListPosts())
}

// load parses the first readable file for slug in Extensions order and
// returns it with its file name.
func (l *Loader) load(slug string) (Post, string, bool) {
	for _, ext := range Extensions {
		name := slug + ext
		post, err := l.readPost(name, slug)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				l.logger.Warn("skip post", zap.String("file", name), zap.Error(err))
			}
			continue
		}
		return post, name, true
	}
	return Post{}, "", false
}

func (l *Loader) readPost(name, slug string) (Post, error) {
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return Post{}, err
	}
	if !goslug.IsValid(slug) {
		l.logger.Warn("post slug is not url safe", zap.String("slug", slug))
	}
	post, err := ParsePost(slug, data)
	if err != nil {
		return Post{}, err
	}
	if path.Ext(name) == ".mdx" {
		post.Body = strings.TrimSpace(markdown.StripModuleLines(post.Body))
		post.ReadingTime = ReadingTime(post.Body)
	}
	return post, nil
}

func (l *Loader) visible(p Post) bool {
	return l.drafts || !p.Draft
}

// SortByDate orders posts newest first, keeping the relative order of equal dates.
func SortByDate(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		return b.Date.Compare(a.Date)
	})
}

func slugFromName(name string) (string, bool) {
	ext := path.Ext(name)
	if !slices.Contains(Extensions, ext) {
		return "", false
	}
	slug := strings.TrimSuffix(name, ext)
	return slug, slug != ""
}
