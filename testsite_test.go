package pubsite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/a-h/templ"
)

const testCatalog = "research/testdata/catalog.json"

func testPosts() fstest.MapFS {
	return fstest.MapFS{
		"hello.md": {Data: []byte(`---
title: Hello
description: First post
date: 2024-03-01
author: Ada
tags: [go, web]
image: /images/hello.png
---
# Hello

Some words here.
`)},
		"second.mdx": {Data: []byte(`---
title: Second
description: Another post
date: 2024-02-01
tags: [go]
---
import Chart from './chart'

Body of the second post.
`)},
		"wip.md": {Data: []byte(`---
title: Work in progress
date: 2024-04-01
tags: [draft-only]
draft: true
---
Not yet.
`)},
		"notes.txt": {Data: []byte("ignored")},
	}
}

func testConfig(t *testing.T) SiteConfig {
	t.Helper()
	return SiteConfig{
		Name:        "Test Site",
		URL:         "https://example.com",
		Description: "A test site",
		Author:      "Site Author",
		CatalogPath: filepath.FromSlash(testCatalog),
		StaticDir:   t.TempDir(),
	}
}

func newTestApp(t *testing.T, cfg SiteConfig, views ViewFuncs) *App {
	t.Helper()
	return New(cfg, views, WithContentFS(testPosts()))
}

func doGet(t *testing.T, a *App, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

// textView renders a fixed string, enough to prove a route reached its view.
func textView(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}
