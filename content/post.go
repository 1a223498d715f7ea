// Package content loads blog posts from Markdown files with YAML frontmatter.
//
// A Loader reads one file per post from an fs.FS. The filename without its
// extension is the post slug. Loading never fails on absent content: a missing
// directory yields no posts and a missing file yields a not-found result.
package content

import (
	"slices"
	"strings"
	"time"
)

// Post is a single blog entry parsed from a source file.
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Image       string    `json:"image,omitempty"`
	Body        string    `json:"body,omitempty"`
	ReadingTime string    `json:"readingTime"`
	Draft       bool      `json:"draft"`
}

// Link returns the site-relative URL of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// HasTag reports whether the post carries tag, ignoring case and surrounding space.
func (p Post) HasTag(tag string) bool {
	want := normalizeTag(tag)
	for _, t := range p.Tags {
		if normalizeTag(t) == want {
			return true
		}
	}
	return false
}

// FilterByTag returns the posts carrying tag, preserving their order.
// An empty tag returns posts unchanged.
func FilterByTag(posts []Post, tag string) []Post {
	if normalizeTag(tag) == "" {
		return posts
	}
	filtered := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.HasTag(tag) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// TagsOf returns the tags used by posts, sorted and deduplicated ignoring
// case. Each tag keeps the spelling of its first occurrence.
func TagsOf(posts []Post) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, p := range posts {
		for _, t := range p.Tags {
			key := normalizeTag(t)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tags = append(tags, t)
		}
	}
	slices.SortFunc(tags, func(a, b string) int {
		return strings.Compare(normalizeTag(a), normalizeTag(b))
	})
	return tags
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
