package domain

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rrajath/hugowriter/posts/frontmatter"
)

// Post is a Markdown document plus its metadata. The frontmatter block
// embedded in Content duplicates Title and the post date in text form;
// Title is the canonical value and the block tracks it best-effort.
type Post struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// PublishedAt is zero until the first successful remote publish.
	PublishedAt time.Time
	IsPublished bool

	// PublishedFilename is the exact remote filename used at the last
	// successful publish. It is set if and only if IsPublished is true, and
	// is what lets a publish detect that the title changed since (a rename).
	PublishedFilename string
}

// NewID returns a fresh opaque post identifier.
func NewID() string {
	return uuid.NewString()
}

// FileName derives the remote filename this post would publish under.
func (p *Post) FileName() string {
	return DeriveFilename(p.Title)
}

// WordCount counts whitespace-separated words in the post content.
func (p *Post) WordCount() int {
	trimmed := strings.TrimSpace(p.Content)
	if trimmed == "" {
		return 0
	}
	return len(strings.Fields(trimmed))
}

// ResolvedDate is the post's display/sort date: the frontmatter date when the
// content carries one, otherwise UpdatedAt.
func (p *Post) ResolvedDate() time.Time {
	block, ok := frontmatter.Extract(p.Content)
	if !ok {
		return p.UpdatedAt
	}
	return frontmatter.Date(block.Fields, p.UpdatedAt)
}

var (
	hyphenRunRe    = regexp.MustCompile(`\s*-\s*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	disallowedRe   = regexp.MustCompile(`[^a-z0-9-]`)
	capitalBreakRe = regexp.MustCompile(`[-\s]+`)
)

// DeriveFilename maps a post title to a normalized, URL-safe Markdown
// filename: lowercase, hyphen-separated, restricted to [a-z0-9-], with a .md
// suffix. It is pure and total; a title with no usable characters yields
// just ".md". Applying it to its own output returns the same filename.
func DeriveFilename(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	name = strings.TrimSuffix(name, ".md")
	name = hyphenRunRe.ReplaceAllString(name, "-")
	name = whitespaceRe.ReplaceAllString(name, "-")
	name = disallowedRe.ReplaceAllString(name, "")
	return name + ".md"
}

// TitleFromFilename recovers a human-readable title from a remote filename:
// the .md suffix is stripped, hyphens become spaces, and each word is
// capitalized. Used when an imported file has no frontmatter title.
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(name, ".md")
	words := capitalBreakRe.Split(base, -1)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// PostRepository is the local post store. The storage key of a record always
// equals the post's ID; List and GetByTitle operate on the reconciled,
// deduplicated collection sorted by resolved date descending.
type PostRepository interface {
	Get(ctx context.Context, id string) (*Post, error)
	GetByTitle(ctx context.Context, title string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	Search(ctx context.Context, query string) ([]*Post, error)
	Save(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
}
