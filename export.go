package pubsite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/markdown"
	"github.com/eringen/pubsite/media"
	"github.com/eringen/pubsite/research"
)

// exportWorkers bounds concurrent image processing during export.
const exportWorkers = 4

// ExportReport summarizes a static export.
type ExportReport struct {
	Posts  int
	Papers int
	Comics int
	Images int
}

// ImageInfo describes an exported cover image.
type ImageInfo struct {
	Src   string `json:"src"`
	Thumb string `json:"thumb"`
	media.Dimensions
}

type researchExport struct {
	Papers []research.Paper `json:"papers"`
	Comics []research.Comic `json:"comics"`
	Topics []research.Topic `json:"topics"`
	Hero   []research.Paper `json:"hero"`
	Years  []int            `json:"years"`
}

// Export writes the site data to outDir: JSON listings, feed, sitemap, one
// HTML file per post and thumbnails for local cover images.
func (a *App) Export(ctx context.Context, outDir string) (ExportReport, error) {
	var report ExportReport

	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return report, err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return report, err
	}
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return report, err
	}

	if err := os.MkdirAll(filepath.Join(outDir, "posts"), 0o755); err != nil {
		return report, fmt.Errorf("pubsite: export: %w", err)
	}

	lib := researchExport{
		Papers: catalog.AllPapers(),
		Comics: catalog.AllComics(),
		Topics: catalog.Topics(),
		Hero:   catalog.HeroItems(),
		Years:  catalog.Years(),
	}
	files := map[string]any{
		"posts.json":    posts,
		"tags.json":     tags,
		"research.json": lib,
	}
	for name, v := range files {
		if err := writeJSONFile(filepath.Join(outDir, name), v); err != nil {
			return report, err
		}
	}

	if err := writeFile(filepath.Join(outDir, "feed.xml"), func(buf *bytes.Buffer) error {
		return writeXML(buf, buildFeed(a.Config, posts))
	}); err != nil {
		return report, err
	}
	if err := writeFile(filepath.Join(outDir, "sitemap.xml"), func(buf *bytes.Buffer) error {
		return writeXML(buf, buildSitemap(a.Config, posts))
	}); err != nil {
		return report, err
	}

	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := writeFile(filepath.Join(outDir, "posts", p.Slug+".html"), func(buf *bytes.Buffer) error {
			return a.renderPostFile(ctx, buf, p, posts)
		}); err != nil {
			return report, err
		}
	}

	images, err := a.exportImages(ctx, outDir, coverRefs(posts, lib.Comics))
	if err != nil {
		return report, err
	}
	if err := writeJSONFile(filepath.Join(outDir, "images.json"), images); err != nil {
		return report, err
	}

	report = ExportReport{
		Posts:  len(posts),
		Papers: len(lib.Papers),
		Comics: len(lib.Comics),
		Images: len(images),
	}
	a.logger.Info("export complete",
		zap.String("dir", outDir),
		zap.Int("posts", report.Posts),
		zap.Int("papers", report.Papers),
		zap.Int("comics", report.Comics),
		zap.Int("images", report.Images))
	return report, nil
}

func (a *App) renderPostFile(ctx context.Context, buf *bytes.Buffer, p content.Post, posts []content.Post) error {
	if a.Views.Post == nil {
		return markdown.RenderMarkdown(buf, p.Body)
	}
	meta := PageMeta{
		Title:       p.Title,
		Description: p.Description,
		URL:         BuildURL(a.Config.URL, "blog", p.Slug),
		OGType:      "article",
		JSONLD:      BlogPostingJsonLD(p, a.Config),
	}
	return a.Views.Post(p, markdown.Markdown(p.Body), FilterRelatedPosts(p, posts), meta).Render(ctx, buf)
}

// exportImages probes every local cover image and writes a JPEG thumbnail
// for those wider than media.DefaultMaxWidth. Missing files are skipped.
func (a *App) exportImages(ctx context.Context, outDir string, refs []string) (map[string]ImageInfo, error) {
	var mu sync.Mutex
	images := make(map[string]ImageInfo, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(exportWorkers)
	for _, ref := range refs {
		src, ok := a.staticPath(ref)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dims, _, err := media.ProbeFile(src)
			if errors.Is(err, fs.ErrNotExist) {
				a.logger.Warn("cover image missing", zap.String("ref", ref), zap.String("path", src))
				return nil
			}
			if err != nil {
				return fmt.Errorf("pubsite: probe %s: %w", ref, err)
			}

			info := ImageInfo{Src: ref, Thumb: ref, Dimensions: dims}
			if dims.Width > media.DefaultMaxWidth {
				thumb := path.Join("thumbs", strings.TrimSuffix(strings.TrimPrefix(ref, "/"), path.Ext(ref))+".jpg")
				dims, err := media.ThumbnailFile(src, filepath.Join(outDir, filepath.FromSlash(thumb)), media.DefaultMaxWidth)
				if err != nil {
					return fmt.Errorf("pubsite: thumbnail %s: %w", ref, err)
				}
				info.Thumb = "/" + thumb
				info.Dimensions = dims
			}

			mu.Lock()
			images[ref] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// staticPath maps a site-relative image reference to a file under StaticDir.
func (a *App) staticPath(ref string) (string, bool) {
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return "", false
	}
	rel := strings.TrimPrefix(path.Clean(ref), "/")
	rel = strings.TrimPrefix(rel, "public/")
	if rel == "" || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.Join(a.Config.StaticDir, filepath.FromSlash(rel)), true
}

func coverRefs(posts []content.Post, comics []research.Comic) []string {
	seen := make(map[string]struct{})
	var refs []string
	add := func(ref string) {
		if ref == "" {
			return
		}
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	for _, p := range posts {
		add(p.Image)
	}
	for _, c := range comics {
		add(c.CoverImage)
	}
	return refs
}

func writeJSONFile(name string, v any) error {
	return writeFile(name, func(buf *bytes.Buffer) error {
		enc := json.NewEncoder(buf)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(name string, fill func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		return fmt.Errorf("pubsite: render %s: %w", filepath.Base(name), err)
	}
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("pubsite: write %s: %w", name, err)
	}
	return nil
}
