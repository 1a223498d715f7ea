package pubsite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "content/blog", cfg.ContentDir)
	assert.Equal(t, "data/research.json", cfg.CatalogPath)
	assert.Equal(t, "dist", cfg.OutputDir)
	assert.False(t, cfg.Development)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Research Lab
url: https://lab.example.com
content_dir: posts
cache_ttl: 5m
`), 0o644))

	t.Setenv("PUBSITE_CONTENT_DIR", "content/posts")
	t.Setenv("PUBSITE_ENV", "development")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Research Lab", cfg.Name)
	assert.Equal(t, "https://lab.example.com", cfg.URL)
	assert.Equal(t, "content/posts", cfg.ContentDir)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Development)
}

func TestLoadConfigEnvProduction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("development: true\n"), 0o644))
	t.Setenv("PUBSITE_ENV", "production")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Development)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "relative url", yaml: "url: example.com\n"},
		{name: "bad yaml", yaml: "name: [unterminated\n"},
		{name: "bad ttl", env: map[string]string{"PUBSITE_CACHE_TTL": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "site.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("PUBSITE_TEST_VALUE", "set")
	assert.Equal(t, "set", EnvOr("PUBSITE_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", EnvOr("PUBSITE_TEST_UNSET", "fallback"))
}
