package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eringen/pubsite"
)

func testCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// newProject scaffolds a site and makes it the working directory.
func newProject(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	configPath = "site.yaml"
	devMode = false
	t.Cleanup(func() {
		outDir = ""
		indexPath = ""
	})

	dir := filepath.Join(t.TempDir(), "my-lab")
	cmd, out := testCmd()
	require.NoError(t, runNew(cmd, []string{dir}))
	assert.Contains(t, out.String(), "created")
	t.Chdir(dir)
	return dir
}

func TestRunNewRefusesExisting(t *testing.T) {
	cmd, _ := testCmd()
	assert.Error(t, runNew(cmd, []string{t.TempDir()}))
}

func TestRunBuild(t *testing.T) {
	dir := newProject(t)

	cmd, out := testCmd()
	require.NoError(t, runBuild(cmd, nil))
	assert.Contains(t, out.String(), "exported 1 posts, 1 papers, 0 comics")

	for _, name := range []string{"posts.json", "research.json", "feed.xml", "posts/hello-world.html"} {
		assert.FileExists(t, filepath.Join(dir, "dist", filepath.FromSlash(name)))
	}
}

func TestRunIndex(t *testing.T) {
	dir := newProject(t)
	indexPath = filepath.Join(dir, "out", "index.db")

	cmd, out := testCmd()
	require.NoError(t, runIndex(cmd, nil))
	assert.Contains(t, out.String(), "indexed 1 posts")

	store, err := pubsite.NewStore(indexPath)
	require.NoError(t, err)
	defer store.Close()
	_, ok, err := store.GetPost("hello-world")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunPostCreatesDraft(t *testing.T) {
	dir := newProject(t)

	cmd, out := testCmd()
	require.NoError(t, runPost(cmd, []string{"Second", "Post"}))
	assert.Contains(t, out.String(), "(draft)")

	entries, err := os.ReadDir(filepath.Join(dir, "content", "blog"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Drafts stay out of the export unless development mode is on.
	cmd, out = testCmd()
	require.NoError(t, runBuild(cmd, nil))
	assert.Contains(t, out.String(), "exported 1 posts")

	devMode = true
	defer func() { devMode = false }()
	cmd, out = testCmd()
	require.NoError(t, runBuild(cmd, nil))
	assert.Contains(t, out.String(), "exported 2 posts")
}
