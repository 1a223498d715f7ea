package pubsite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a pubsite site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr        string `yaml:"addr"`         // Listen address (default ":3000")
	ContentDir  string `yaml:"content_dir"`  // Post files (default "content/blog")
	CatalogPath string `yaml:"catalog_path"` // Research catalog (default "data/research.json")
	StaticDir   string `yaml:"static_dir"`   // Static assets (default "public")
	IndexPath   string `yaml:"index_path"`   // SQLite index written by `pubsite index` (default "data/content.db")
	OutputDir   string `yaml:"output_dir"`   // Static export target (default "dist")

	// Development shows draft posts. It is the only environment-dependent switch.
	Development bool `yaml:"development"`

	CacheTTL  time.Duration `yaml:"cache_ttl"`  // Snapshot TTL; zero keeps the snapshot until invalidated
	RateLimit int           `yaml:"rate_limit"` // API requests per minute per client IP; zero disables
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/blog"
	}
	if c.CatalogPath == "" {
		c.CatalogPath = "data/research.json"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.IndexPath == "" {
		c.IndexPath = "data/content.db"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
}

// applyEnv overrides file values with PUBSITE_* environment variables.
func (c *SiteConfig) applyEnv() error {
	c.Name = EnvOr("PUBSITE_NAME", c.Name)
	c.URL = EnvOr("PUBSITE_URL", c.URL)
	c.Description = EnvOr("PUBSITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("PUBSITE_AUTHOR", c.Author)
	c.Addr = EnvOr("PUBSITE_ADDR", c.Addr)
	c.ContentDir = EnvOr("PUBSITE_CONTENT_DIR", c.ContentDir)
	c.CatalogPath = EnvOr("PUBSITE_CATALOG_PATH", c.CatalogPath)
	c.StaticDir = EnvOr("PUBSITE_STATIC_DIR", c.StaticDir)
	c.IndexPath = EnvOr("PUBSITE_INDEX_PATH", c.IndexPath)
	c.OutputDir = EnvOr("PUBSITE_OUTPUT_DIR", c.OutputDir)

	if env := strings.ToLower(strings.TrimSpace(os.Getenv("PUBSITE_ENV"))); env != "" {
		c.Development = env == "development" || env == "dev"
	}
	if limit := os.Getenv("PUBSITE_RATE_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return fmt.Errorf("PUBSITE_RATE_LIMIT: %w", err)
		}
		c.RateLimit = n
	}
	if ttl := os.Getenv("PUBSITE_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("PUBSITE_CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c SiteConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.URL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.CatalogPath, validation.Required),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.RateLimit, validation.Min(0)),
	)
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

// LoadConfig reads path (if it exists), applies environment overrides and
// defaults, and validates the result. An empty path skips the file.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return SiteConfig{}, fmt.Errorf("pubsite: parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return SiteConfig{}, fmt.Errorf("pubsite: read config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return SiteConfig{}, fmt.Errorf("pubsite: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, fmt.Errorf("pubsite: invalid config: %w", err)
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger used by the app and its loaders.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithContentFS reads posts from fsys instead of Config.ContentDir.
func WithContentFS(fsys fs.FS) Option {
	return func(a *App) {
		a.contentFS = fsys
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
