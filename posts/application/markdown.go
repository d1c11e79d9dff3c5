package application

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/rrajath/hugowriter/posts/frontmatter"
)

const snippetMaxLength = 200

// MarkdownRenderer converts a post's Markdown body to preview HTML.
type MarkdownRenderer interface {
	Render(content string) ([]byte, error)
}

type markdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer builds a GFM-flavored renderer for the editor preview.
func NewMarkdownRenderer() MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	return &markdownRenderer{md: md}
}

// Render converts content to HTML. The frontmatter block is stripped first;
// metadata is not part of the rendered document.
func (r *markdownRenderer) Render(content string) ([]byte, error) {
	body := content
	if block, ok := frontmatter.Extract(content); ok {
		body = strings.TrimPrefix(block.Body, "\n")
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return buf.Bytes(), nil
}

// Snippet extracts the first paragraph of the Markdown body as plain text,
// truncated at a word boundary. Frontmatter, headings, lists, tables and
// code fences are skipped.
func Snippet(content string) string {
	body := content
	if block, ok := frontmatter.Extract(content); ok {
		body = block.Body
	}

	var paragraph []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" ||
			strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "---") ||
			strings.HasPrefix(trimmed, "***") ||
			strings.HasPrefix(trimmed, "- ") ||
			strings.HasPrefix(trimmed, "* ") ||
			strings.HasPrefix(trimmed, "+ ") ||
			strings.HasPrefix(trimmed, "|") {
			if len(paragraph) > 0 {
				break
			}
			continue
		}

		paragraph = append(paragraph, trimmed)
	}

	snippet := strings.Join(paragraph, " ")
	if len(snippet) > snippetMaxLength {
		snippet = snippet[:snippetMaxLength]
		if lastSpace := strings.LastIndexAny(snippet, " \t"); lastSpace > 0 {
			snippet = snippet[:lastSpace]
		}
		snippet += "..."
	}
	return snippet
}
