// Package scaffold writes starter sites and new post files for the pubsite CLI.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	goslug "github.com/goliatone/go-slug"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// ErrExists is returned when a target file or directory already exists.
var ErrExists = errors.New("scaffold: target already exists")

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	URL         string
	Date        string
}

// NewData derives template data for a project directory.
func NewData(dir string, now time.Time) Data {
	name := filepath.Base(filepath.Clean(dir))
	return Data{
		ProjectName: name,
		SiteName:    toTitle(name),
		URL:         "http://localhost:3000",
		Date:        now.Format("2006-01-02"),
	}
}

// Site renders the embedded templates into dir, which must not exist yet.
// It returns the created file paths in walk order.
func Site(dir string, data Data) ([]string, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, dir)
	}

	const root = "templates"
	var created []string
	err := fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, filepath.FromSlash(path))
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, rel), ".tmpl")

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		raw, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(d.Name()).Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		created = append(created, outPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

var postTemplate = template.Must(template.New("post").Parse(`---
title: {{printf "%q" .Title}}
description: ""
date: {{.Date}}
author: ""
tags: []
draft: true
---

Start writing here.
`))

// Post writes a draft post named after the slug of title into contentDir
// and returns its path.
func Post(contentDir, title string, now time.Time) (string, error) {
	slug, err := goslug.Normalize(title)
	if err != nil {
		return "", fmt.Errorf("scaffold: slug for %q: %w", title, err)
	}
	if slug == "" {
		return "", fmt.Errorf("scaffold: title %q has no usable characters", title)
	}

	path := filepath.Join(contentDir, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}

	var buf bytes.Buffer
	if err := postTemplate.Execute(&buf, struct{ Title, Date string }{title, now.Format("2006-01-02")}); err != nil {
		return "", err
	}
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
