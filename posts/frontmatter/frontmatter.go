// Package frontmatter reads and rewrites the metadata block at the top of a
// Markdown document. Hugo accepts both YAML (---) and TOML (+++) delimiters,
// and we only ever need three scalar fields (title, date, draft), so the
// block is handled as text rather than parsed with a full YAML/TOML parser.
package frontmatter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// DelimYAML and DelimTOML are the two delimiter styles Hugo recognizes.
	DelimYAML = "---"
	DelimTOML = "+++"

	// DateLayout is the timestamp format written into generated frontmatter
	// and tried first when parsing the date field.
	DateLayout = "2006-01-02T15:04:05Z07:00"

	dayLayout = "2006-01-02"
)

// DefaultTemplate is the frontmatter prepended to new posts unless the user
// has configured their own. {TITLE} and {DATE} are substituted on generation.
const DefaultTemplate = `---
title: "{TITLE}"
date: {DATE}
draft: true
tags: []
---

`

var (
	yamlBlockRe = regexp.MustCompile(`(?s)\A---\n(.*?)\n---`)
	tomlBlockRe = regexp.MustCompile(`(?s)\A\+\+\+\n(.*?)\n\+\+\+`)

	yamlTitleRe = regexp.MustCompile(`(?m)^title\s*:\s*["']?[^"'` + "\n" + `]*["']?`)
	tomlTitleRe = regexp.MustCompile(`(?m)^title\s*=\s*["']?[^"'` + "\n" + `]*["']?`)
)

// Block is a frontmatter section detached from its document.
type Block struct {
	// Delimiter is DelimYAML or DelimTOML, whichever opened the block.
	Delimiter string
	// Fields is the raw inner text of the block, delimiters excluded.
	Fields string
	// Body is the document content following the closing delimiter.
	Body string
}

// Extract detects a metadata block at the very start of content. YAML is
// checked before TOML; the first match wins. Returns false when the document
// has no frontmatter.
func Extract(content string) (*Block, bool) {
	for _, candidate := range []struct {
		re    *regexp.Regexp
		delim string
	}{
		{yamlBlockRe, DelimYAML},
		{tomlBlockRe, DelimTOML},
	} {
		if m := candidate.re.FindStringSubmatchIndex(content); m != nil {
			return &Block{
				Delimiter: candidate.delim,
				Fields:    content[m[2]:m[3]],
				Body:      content[m[1]:],
			}, true
		}
	}
	return nil, false
}

// Has reports whether content opens with a frontmatter delimiter.
func Has(content string) bool {
	return strings.HasPrefix(content, DelimYAML) || strings.HasPrefix(content, DelimTOML)
}

// Field finds a scalar field inside a frontmatter block by name, accepting
// both YAML ("name: value") and TOML ("name = value") syntax. Field names are
// case-sensitive. Surrounding quotes and whitespace are trimmed from the value.
func Field(fields string, name string) (string, bool) {
	re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(name) + `\s*[=:]\s*["']?([^"'` + "\n" + `]+)["']?`)
	m := re.FindStringSubmatch(fields)
	if m == nil {
		return "", false
	}
	value := strings.Trim(strings.TrimSpace(m[1]), `"'`)
	if value == "" {
		return "", false
	}
	return value, true
}

// Date resolves the date of a post from its frontmatter. The date field is
// tried first, then lastmod. Values are parsed as ISO-8601 with an explicit
// offset, then as a bare calendar date (local midnight). Whenever no field is
// present or nothing parses, fallback is returned; Date never fails.
func Date(fields string, fallback time.Time) time.Time {
	value, ok := Field(fields, "date")
	if !ok {
		value, ok = Field(fields, "lastmod")
	}
	if !ok {
		return fallback
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(dayLayout, value, time.Local); err == nil {
		return t
	}
	return fallback
}

// Draft reports the draft flag of a frontmatter block. Absent or unparseable
// values are treated as false.
func Draft(fields string) bool {
	value, ok := Field(fields, "draft")
	return ok && value == "true"
}

// RewriteTitle replaces the title field inside the document's frontmatter
// block, or prepends one as the first field when the block has none. The
// delimiter style and every other field are preserved verbatim. Documents
// without frontmatter are returned unchanged.
func RewriteTitle(content string, newTitle string) string {
	block, ok := Extract(content)
	if !ok {
		return content
	}

	var fields string
	switch block.Delimiter {
	case DelimTOML:
		replacement := fmt.Sprintf(`title = %q`, newTitle)
		if tomlTitleRe.MatchString(block.Fields) {
			fields = tomlTitleRe.ReplaceAllLiteralString(block.Fields, replacement)
		} else {
			fields = replacement + "\n" + block.Fields
		}
	default:
		replacement := fmt.Sprintf(`title: %q`, newTitle)
		if yamlTitleRe.MatchString(block.Fields) {
			fields = yamlTitleRe.ReplaceAllLiteralString(block.Fields, replacement)
		} else {
			fields = replacement + "\n" + block.Fields
		}
	}

	return block.Delimiter + "\n" + fields + "\n" + block.Delimiter + block.Body
}

// Generate renders a frontmatter template for a new post, substituting the
// {TITLE} and {DATE} placeholders. The date is the current local time in
// DateLayout format.
func Generate(title string, template string) string {
	out := strings.ReplaceAll(template, "{TITLE}", title)
	return strings.ReplaceAll(out, "{DATE}", time.Now().Format(DateLayout))
}
