package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rrajath/hugowriter/posts/domain"
	"github.com/rrajath/hugowriter/settings"
	"github.com/rrajath/hugowriter/shared/apperr"
)

// ContentRepositoryFactory builds a content repository for a publish target.
// Constructing per call keeps the client stateless with respect to token
// changes.
type ContentRepositoryFactory func(cfg settings.GitHubConfig) domain.ContentRepository

// Publisher reconciles a post's remote representation: create, update,
// rename and delete of the single file the post maps to.
type Publisher struct {
	contents ContentRepositoryFactory
}

func NewPublisher(contents ContentRepositoryFactory) *Publisher {
	return &Publisher{contents: contents}
}

// Publish writes the post to its derived path in the configured content
// directory and returns the file's web-viewable URL.
//
// When the post was previously published under a different filename, the old
// file is deleted first, best-effort: its absence (or any failure removing
// it) never blocks the publish. The write itself carries the existing file's
// SHA when one is found, so the remote rejects blind overwrites.
//
// The caller is expected to have persisted the post locally before calling;
// a failed publish must never cost local edits.
func (p *Publisher) Publish(ctx context.Context, post *domain.Post, cfg settings.GitHubConfig) (string, error) {
	if !cfg.Valid() {
		return "", apperr.ErrInvalidConfig
	}

	contents := p.contents(cfg)
	newFilename := post.FileName()
	newPath := cfg.TargetDirectory + newFilename

	if post.PublishedFilename != "" && post.PublishedFilename != newFilename {
		p.deleteRenamedFile(ctx, contents, cfg, post.PublishedFilename, newFilename)
	}

	// Probe for an existing file at the new path to get the SHA an update
	// must present. A transport failure here aborts: treating it as "absent"
	// could turn an update into a duplicate create.
	var existingSHA string
	switch res := contents.Resolve(ctx, newPath); res.State {
	case domain.Found:
		existingSHA = res.SHA
	case domain.TransportError:
		return "", res.Err
	}

	message := fmt.Sprintf("Create post: %s", post.Title)
	if existingSHA != "" {
		message = fmt.Sprintf("Update post: %s", post.Title)
	}

	url, err := contents.PutFile(ctx, newPath, []byte(post.Content), message, existingSHA)
	if err != nil {
		return "", err
	}

	if url == "" {
		url = fmt.Sprintf("https://github.com/%s/blob/%s/%s", cfg.FullRepositoryName(), cfg.Branch, newPath)
	}
	return url, nil
}

// deleteRenamedFile removes the file the post was previously published under.
// Best-effort: the old file being gone already is the expected case after an
// external cleanup, and a failed delete only leaves a stray file behind.
func (p *Publisher) deleteRenamedFile(ctx context.Context, contents domain.ContentRepository, cfg settings.GitHubConfig, oldFilename string, newFilename string) {
	oldPath := cfg.TargetDirectory + oldFilename

	res := contents.Resolve(ctx, oldPath)
	if res.State != domain.Found {
		return
	}

	message := fmt.Sprintf("Rename post: %s -> %s", oldFilename, newFilename)
	if err := contents.DeleteFile(ctx, oldPath, message, res.SHA); err != nil {
		log.Warn().Err(err).Str("path", oldPath).Msg("Failed to delete renamed post file")
	}
}

// Delete removes the post's remote file. The filename recorded at the last
// publish wins over the derived one, so a title edited after publishing
// still deletes the file that actually exists.
func (p *Publisher) Delete(ctx context.Context, post *domain.Post, cfg settings.GitHubConfig) error {
	if !cfg.Valid() {
		return apperr.ErrInvalidConfig
	}

	contents := p.contents(cfg)
	filename := post.PublishedFilename
	if filename == "" {
		filename = post.FileName()
	}
	path := cfg.TargetDirectory + filename

	res := contents.Resolve(ctx, path)
	switch res.State {
	case domain.NotFound:
		return apperr.NotFound(fmt.Sprintf("file %s", path))
	case domain.TransportError:
		return res.Err
	}

	message := fmt.Sprintf("Delete post: %s", post.Title)
	return contents.DeleteFile(ctx, path, message, res.SHA)
}
