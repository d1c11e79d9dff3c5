package application

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rrajath/hugowriter/posts/domain"
	"github.com/rrajath/hugowriter/posts/frontmatter"
	"github.com/rrajath/hugowriter/settings"
	"github.com/rrajath/hugowriter/shared/apperr"
)

// Importer fetches every Markdown file under the configured content
// directory and turns each into a post.
type Importer struct {
	contents ContentRepositoryFactory
	now      func() time.Time
}

func NewImporter(contents ContentRepositoryFactory) *Importer {
	return &Importer{
		contents: contents,
		now:      time.Now,
	}
}

// FetchAll lists the .md files under the target directory and fetches each
// one sequentially. A file that fails to fetch or decode is skipped with a
// warning; it never aborts the batch. The returned posts carry fresh
// identifiers and are marked published; reconciling them against the local
// store is the caller's job.
func (im *Importer) FetchAll(ctx context.Context, cfg settings.GitHubConfig) ([]*domain.Post, error) {
	if !cfg.Valid() {
		return nil, apperr.ErrInvalidConfig
	}

	contents := im.contents(cfg)
	files, err := contents.ListMarkdown(ctx, strings.TrimSuffix(cfg.TargetDirectory, "/"))
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(files))
	for _, file := range files {
		fetched, err := contents.GetFile(ctx, file.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", file.Path).Msg("Skipping remote post")
			continue
		}
		posts = append(posts, im.toPost(file.Name, string(fetched.Content)))
	}
	return posts, nil
}

// toPost builds a post from a fetched file. Title and date come from the
// frontmatter when present; otherwise the title is humanized from the
// filename and the date defaults to now. All three timestamps are set to the
// resolved date.
func (im *Importer) toPost(filename string, content string) *domain.Post {
	title := domain.TitleFromFilename(filename)
	date := im.now()

	if block, ok := frontmatter.Extract(content); ok {
		if t, ok := frontmatter.Field(block.Fields, "title"); ok {
			title = t
		}
		date = frontmatter.Date(block.Fields, date)
	}

	return &domain.Post{
		ID:                domain.NewID(),
		Title:             title,
		Content:           content,
		CreatedAt:         date,
		UpdatedAt:         date,
		PublishedAt:       date,
		IsPublished:       true,
		PublishedFilename: filename,
	}
}
