package pubsite

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/markdown"
	"github.com/eringen/pubsite/research"
)

// postDetail is the JSON shape of a single post: the record plus rendered HTML.
type postDetail struct {
	content.Post
	HTML string `json:"html"`
}

func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.QueryParam("tag"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleGetPost(c echo.Context) error {
	post, ok, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		return err
	}
	if !ok {
		return echo.ErrNotFound
	}
	html, err := markdown.Render(post.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postDetail{Post: post, HTML: html})
}

func (a *App) handleListTags(c echo.Context) error {
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handleListPapers(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	filter, err := paperFilter(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, research.FilterPapers(catalog.AllPapers(), filter))
}

func (a *App) handleGetPaper(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	paper, ok := catalog.Paper(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	return c.JSON(http.StatusOK, paper)
}

func (a *App) handleListComics(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, catalog.ComicsByTopic(strings.TrimSpace(c.QueryParam("topic"))))
}

func (a *App) handleGetComic(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	comic, ok := catalog.Comic(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	return c.JSON(http.StatusOK, comic)
}

func (a *App) handleHero(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, catalog.HeroItems())
}

func (a *App) handleTopics(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, catalog.Topics())
}

func (a *App) handleYears(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, catalog.Years())
}

func (a *App) handleBlogPage(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	meta := PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL, "blog"),
		OGType:      "website",
		JSONLD:      WebsiteJsonLD(a.Config),
	}
	return Render(c, a.Views.Blog(posts, tag, tags, meta))
}

func (a *App) handlePostPage(c echo.Context) error {
	post, ok, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		return err
	}
	if !ok {
		return echo.ErrNotFound
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	meta := PageMeta{
		Title:       post.Title,
		Description: post.Description,
		URL:         BuildURL(a.Config.URL, "blog", post.Slug),
		OGType:      "article",
		JSONLD:      BlogPostingJsonLD(post, a.Config),
	}
	if post.Image != "" {
		meta.Image = AbsoluteURL(a.Config.URL, post.Image)
	}
	return Render(c, a.Views.Post(post, markdown.Markdown(post.Body), FilterRelatedPosts(post, posts), meta))
}

func (a *App) handleResearchPage(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	filter, err := paperFilter(c)
	if err != nil {
		return err
	}
	meta := PageMeta{
		Title:       "Research | " + a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL, "research"),
		OGType:      "website",
	}
	papers := research.FilterPapers(catalog.AllPapers(), filter)
	return Render(c, a.Views.Research(catalog.HeroItems(), papers, catalog.AllComics(), catalog.Topics(), meta))
}

func (a *App) handlePaperPage(c echo.Context) error {
	catalog, err := a.Cache.Catalog()
	if err != nil {
		return err
	}
	paper, ok := catalog.Paper(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	meta := PageMeta{
		Title:       paper.Title,
		Description: paper.Abstract,
		URL:         BuildURL(a.Config.URL, "research", paper.ID),
		OGType:      "article",
		JSONLD:      ScholarlyArticleJsonLD(paper, a.Config),
	}
	return Render(c, a.Views.Paper(paper, meta))
}

// paperFilter reads the optional topic and year query parameters.
func paperFilter(c echo.Context) (research.Filter, error) {
	filter := research.Filter{Topic: strings.TrimSpace(c.QueryParam("topic"))}
	if raw := strings.TrimSpace(c.QueryParam("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return research.Filter{}, echo.NewHTTPError(http.StatusBadRequest, "year must be a positive integer")
		}
		filter.Year = year
	}
	return filter, nil
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeXML(c.Response(), buildFeed(a.Config, posts))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeXML(c.Response(), buildSitemap(a.Config, posts))
}

// handleRobots allows crawling everywhere except the JSON API.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s\n", AbsoluteURL(a.Config.URL, "/sitemap.xml"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")
	if ok && he.Code == http.StatusNotFound && !isAPI && a.Views.NotFound != nil {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.logger.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
