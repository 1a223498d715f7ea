// Package markdown renders post bodies to sanitized HTML as templ components.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	engine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	policy = newPolicy()

	reLanguageClass = regexp.MustCompile(`^language-[\w+-]+$`)
	reModuleLine    = regexp.MustCompile(`^(import\s.+\sfrom\s+['"]|import\s+['"]|export\s+(const|let|var|default|function|async\s+function)\b)`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(reLanguageClass).OnElements("code")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^(lazy|eager)$`)).OnElements("img")
	return p
}

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := RenderMarkdown(&buf, content); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render returns the sanitized HTML for md.
func Render(md string) (string, error) {
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, md); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderMarkdown writes the sanitized HTML representation of md to buf.
func RenderMarkdown(buf *bytes.Buffer, md string) error {
	var raw bytes.Buffer
	if err := engine.Convert([]byte(md), &raw); err != nil {
		return fmt.Errorf("markdown: convert: %w", err)
	}
	buf.Write(policy.SanitizeReader(&raw).Bytes())
	return nil
}

// StripModuleLines removes MDX import/export statements that sit outside
// fenced code blocks. Only MDX sources should be passed through it.
func StripModuleLines(md string) string {
	lines := strings.Split(md, "\n")
	kept := lines[:0]
	inCode := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
		}
		if !inCode && reModuleLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
