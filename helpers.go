package pubsite

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/research"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AbsoluteURL resolves ref (a site-relative path or an absolute URL) against base.
func AbsoluteURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// FilterRelatedPosts finds posts that share at least one tag with current.
func FilterRelatedPosts(current content.Post, posts []content.Post) []content.Post {
	var related []content.Post
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range current.Tags {
			if p.HasTag(t) {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post content.Post, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Description,
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !post.Date.IsZero() {
		data["datePublished"] = post.Date.Format("2006-01-02")
	}
	author := post.Author
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if post.Image != "" {
		data["image"] = AbsoluteURL(cfg.URL, post.Image)
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	return marshalJsonLD(data)
}

// ScholarlyArticleJsonLD returns a JSON-LD string for a research paper.
func ScholarlyArticleJsonLD(paper research.Paper, cfg SiteConfig) string {
	authors := make([]map[string]string, 0, len(paper.Authors))
	for _, name := range paper.Authors {
		authors = append(authors, map[string]string{"@type": "Person", "name": name})
	}
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "ScholarlyArticle",
		"headline":      paper.Title,
		"abstract":      paper.Abstract,
		"author":        authors,
		"datePublished": paper.Year,
		"url":           BuildURL(cfg.URL, "research", paper.ID),
	}
	if paper.Venue != "" {
		data["publisher"] = map[string]string{"@type": "Organization", "name": paper.Venue}
	}
	if len(paper.Topics) > 0 {
		data["keywords"] = strings.Join(paper.Topics, ", ")
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
