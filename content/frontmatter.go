package content

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        postDate `yaml:"date"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`
	Draft       bool     `yaml:"draft"`
}

// postDate accepts bare dates as well as full timestamps.
type postDate struct {
	time.Time
}

func (d *postDate) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("date must be a scalar, got %s", node.Tag)
	}
	value := strings.TrimSpace(node.Value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unsupported date %q", value)
}

// ParsePost builds a Post from the raw source of a post file.
func ParsePost(slug string, source []byte) (Post, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta, yamlFormat)
	if err != nil {
		return Post{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	text := strings.TrimSpace(string(body))
	return Post{
		Slug:        slug,
		Title:       strings.TrimSpace(meta.Title),
		Description: strings.TrimSpace(meta.Description),
		Date:        meta.Date.Time,
		Author:      strings.TrimSpace(meta.Author),
		Tags:        cleanTags(meta.Tags),
		Image:       strings.TrimSpace(meta.Image),
		Body:        text,
		ReadingTime: ReadingTime(text),
		Draft:       meta.Draft,
	}, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}
