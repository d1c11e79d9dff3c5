// Package persistence stores posts as one JSON record per file, keyed by
// post ID.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rrajath/hugowriter/posts/domain"
	"github.com/rrajath/hugowriter/shared/apperr"
)

var _ domain.PostRepository = (*FilePostRepository)(nil)

// FilePostRepository implements domain.PostRepository on a directory of
// {id}.json records. Writes are atomic (temp file + rename); a
// reconciliation pass before every listing collapses records that ended up
// under the wrong key.
type FilePostRepository struct {
	dir string

	// mu serializes reconciliation passes against concurrent writes.
	mu sync.Mutex
}

func NewFilePostRepository(dir string) (*FilePostRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create posts directory: %w", err)
	}
	return &FilePostRepository{dir: dir}, nil
}

// postRecord is the on-disk JSON shape. Timestamps are Unix milliseconds.
type postRecord struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Content           string  `json:"content"`
	CreatedAt         int64   `json:"createdAt"`
	UpdatedAt         int64   `json:"updatedAt"`
	PublishedAt       *int64  `json:"publishedAt,omitempty"`
	IsPublished       bool    `json:"isPublished"`
	PublishedFilename *string `json:"publishedFilename,omitempty"`
}

func toRecord(p *domain.Post) *postRecord {
	rec := &postRecord{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
		IsPublished: p.IsPublished,
	}
	if !p.PublishedAt.IsZero() {
		millis := p.PublishedAt.UnixMilli()
		rec.PublishedAt = &millis
	}
	if p.PublishedFilename != "" {
		name := p.PublishedFilename
		rec.PublishedFilename = &name
	}
	return rec
}

func (r *postRecord) toDomain() *domain.Post {
	p := &domain.Post{
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		CreatedAt:   time.UnixMilli(r.CreatedAt),
		UpdatedAt:   time.UnixMilli(r.UpdatedAt),
		IsPublished: r.IsPublished,
	}
	if r.PublishedAt != nil {
		p.PublishedAt = time.UnixMilli(*r.PublishedAt)
	}
	if r.PublishedFilename != nil {
		p.PublishedFilename = *r.PublishedFilename
	}
	return p
}

func (r *FilePostRepository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

func (r *FilePostRepository) readPost(path string) (*domain.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec postRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse post record %s: %w", filepath.Base(path), err)
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("post record %s has no id", filepath.Base(path))
	}
	return rec.toDomain(), nil
}

// Get retrieves a single post by ID.
func (r *FilePostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	if id == "" {
		return nil, fmt.Errorf("post ID cannot be empty")
	}
	post, err := r.readPost(r.path(id))
	if os.IsNotExist(err) {
		return nil, apperr.NotFound(fmt.Sprintf("post %s", id))
	}
	if err != nil {
		return nil, apperr.Unknown(fmt.Sprintf("getting post %s", id), err)
	}
	return post, nil
}

// GetByTitle returns the first post whose title matches, case-insensitively.
func (r *FilePostRepository) GetByTitle(ctx context.Context, title string) (*domain.Post, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, post := range posts {
		if strings.EqualFold(post.Title, title) {
			return post, nil
		}
	}
	return nil, apperr.NotFound(fmt.Sprintf("post titled %q", title))
}

// List reconciles the directory, then returns all parseable posts
// deduplicated by ID and sorted by resolved date descending. Unparseable
// records are skipped.
func (r *FilePostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	r.reconcile()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read posts directory: %w", err)
	}

	seen := make(map[string]bool)
	posts := make([]*domain.Post, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		post, err := r.readPost(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable post record")
			continue
		}
		if seen[post.ID] {
			continue
		}
		seen[post.ID] = true
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].ResolvedDate().After(posts[j].ResolvedDate())
	})
	return posts, nil
}

// Search returns posts whose title or content contains query,
// case-insensitively.
func (r *FilePostRepository) Search(ctx context.Context, query string) ([]*domain.Post, error) {
	posts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	matches := make([]*domain.Post, 0, len(posts))
	for _, post := range posts {
		if strings.Contains(strings.ToLower(post.Title), needle) ||
			strings.Contains(strings.ToLower(post.Content), needle) {
			matches = append(matches, post)
		}
	}
	return matches, nil
}

// Save writes the post under its canonical key, atomically.
func (r *FilePostRepository) Save(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}
	if p.ID == "" {
		return fmt.Errorf("post ID cannot be empty")
	}

	data, err := json.Marshal(toRecord(p))
	if err != nil {
		return fmt.Errorf("failed to encode post: %w", err)
	}

	path := r.path(p.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write post record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit post record: %w", err)
	}
	return nil
}

// Delete removes the post's record.
func (r *FilePostRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("post ID cannot be empty")
	}
	err := os.Remove(r.path(id))
	if os.IsNotExist(err) {
		return apperr.NotFound(fmt.Sprintf("post %s", id))
	}
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

type fileEntry struct {
	name string
	post *domain.Post
}

// reconcile collapses duplicate records: for any post ID backed by more than
// one file, records stored under the wrong key are removed, and when no
// record sits at the canonical {id}.json key, the one with the latest
// resolved date is renamed into place. Recovers from partial writes and a
// historical wrong-key bug; failures here are logged and ignored since
// listing remains usable either way.
func (r *FilePostRepository) reconcile() {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return
	}

	byID := make(map[string][]fileEntry)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		post, err := r.readPost(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			continue
		}
		byID[post.ID] = append(byID[post.ID], fileEntry{name: entry.Name(), post: post})
	}

	for id, files := range byID {
		if len(files) < 2 {
			continue
		}

		canonical := id + ".json"
		hasCanonical := false
		for _, f := range files {
			if f.name == canonical {
				hasCanonical = true
				break
			}
		}

		if !hasCanonical {
			// Promote the record with the latest resolved date.
			latest := files[0]
			for _, f := range files[1:] {
				if f.post.ResolvedDate().After(latest.post.ResolvedDate()) {
					latest = f
				}
			}
			if err := os.Rename(filepath.Join(r.dir, latest.name), filepath.Join(r.dir, canonical)); err != nil {
				log.Warn().Err(err).Str("file", latest.name).Msg("Failed to promote post record to canonical key")
				continue
			}
			log.Info().Str("postID", id).Str("from", latest.name).Msg("Promoted post record to canonical key")
		}

		for _, f := range files {
			if f.name == canonical {
				continue
			}
			if !hasCanonical {
				// The promoted record's old file is already gone.
				if _, err := os.Stat(filepath.Join(r.dir, f.name)); os.IsNotExist(err) {
					continue
				}
			}
			if err := os.Remove(filepath.Join(r.dir, f.name)); err != nil {
				log.Warn().Err(err).Str("file", f.name).Msg("Failed to remove duplicate post record")
			}
		}
	}
}
