// Package pubsite serves the data side of a content website: blog posts
// loaded from Markdown files and a research library loaded from a JSON catalog.
// It provides JSON endpoints, RSS, sitemap, static export and a SQLite index.
//
// Users may provide their own templ templates via the ViewFuncs struct; routes
// for pages whose view is nil are not registered.
package pubsite

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/pubsite/content"
	"github.com/eringen/pubsite/research"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Blog     func(posts []content.Post, activeTag string, tags []string, meta PageMeta) templ.Component
	Post     func(post content.Post, body templ.Component, related []content.Post, meta PageMeta) templ.Component
	Research func(hero []research.Paper, papers []research.Paper, comics []research.Comic, topics []research.Topic, meta PageMeta) templ.Component
	Paper    func(paper research.Paper, meta PageMeta) templ.Component
	NotFound func() templ.Component
}

// App is the central pubsite application. It wires together the content
// loader, snapshot cache, handlers, middleware and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Loader *content.Loader
	Cache  *SiteCache
	Views  ViewFuncs

	logger       *zap.Logger
	limiter      *RateLimiter
	contentFS    fs.FS
	customRoutes []func(*App)
}

// New creates a pubsite App with routes and middleware installed.
// Loading is lazy: the first request or export reads the sources.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.contentFS == nil {
		a.contentFS = os.DirFS(cfg.ContentDir)
	}

	a.Loader = content.NewLoader(a.contentFS, content.Options{
		Drafts: cfg.Development,
		Logger: a.logger.Named("content"),
	})
	a.Cache = NewSiteCache(a.Loader, cfg.CatalogPath, cfg.CacheTTL, a.logger.Named("cache"))

	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a
}

// Start warms the cache and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if _, err := a.Cache.Catalog(); err != nil {
		return err
	}
	a.logger.Info("listening",
		zap.String("addr", a.Config.Addr),
		zap.Bool("development", a.Config.Development))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)

	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/robots.txt", a.handleRobots)

	api := e.Group("/api")
	if a.Config.RateLimit > 0 {
		a.limiter = NewRateLimiter(a.Config.RateLimit, time.Minute)
		api.Use(a.rateLimitMiddleware(a.limiter))
	}
	api.GET("/posts", a.handleListPosts)
	api.GET("/posts/:slug", a.handleGetPost)
	api.GET("/tags", a.handleListTags)
	api.GET("/research/papers", a.handleListPapers)
	api.GET("/research/papers/:id", a.handleGetPaper)
	api.GET("/research/comics", a.handleListComics)
	api.GET("/research/comics/:id", a.handleGetComic)
	api.GET("/research/hero", a.handleHero)
	api.GET("/research/topics", a.handleTopics)
	api.GET("/research/years", a.handleYears)

	if a.Views.Blog != nil {
		e.GET("/blog/", a.handleBlogPage)
	}
	if a.Views.Post != nil {
		e.GET("/blog/:slug/", a.handlePostPage)
	}
	if a.Views.Research != nil {
		e.GET("/research/", a.handleResearchPage)
	}
	if a.Views.Paper != nil {
		e.GET("/research/:id/", a.handlePaperPage)
	}
}
