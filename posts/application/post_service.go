package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rrajath/hugowriter/posts/domain"
	"github.com/rrajath/hugowriter/posts/frontmatter"
	"github.com/rrajath/hugowriter/settings"
	"github.com/rrajath/hugowriter/shared/apperr"
)

// maxTitleLength caps post titles; longer titles are ignored on edit.
const maxTitleLength = 80

// PostService orchestrates the local store, the editor auto-save sessions,
// and the remote publish/import reconcilers.
type PostService struct {
	repo      domain.PostRepository
	settings  settings.Repository
	publisher *Publisher
	importer  *Importer

	autoSaveDelay time.Duration

	// Service lifecycle context - cancelled when Close() is called
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*editorSession
}

func NewPostService(repo domain.PostRepository, settingsRepo settings.Repository, publisher *Publisher, importer *Importer, autoSaveDelay time.Duration) *PostService {
	ctx, cancel := context.WithCancel(context.Background())
	if autoSaveDelay <= 0 {
		autoSaveDelay = DefaultAutoSaveDelay
	}
	return &PostService{
		repo:          repo,
		settings:      settingsRepo,
		publisher:     publisher,
		importer:      importer,
		autoSaveDelay: autoSaveDelay,
		ctx:           ctx,
		cancel:        cancel,
		wg:            &sync.WaitGroup{},
		sessions:      make(map[string]*editorSession),
	}
}

// Close flushes every open editor session and waits for background work.
func (s *PostService) Close() error {
	s.mu.Lock()
	sessions := make([]*editorSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[string]*editorSession)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.saver.Flush()
	}

	s.cancel()
	s.wg.Wait()
	return nil
}

// editorSession holds a post's pending edits between debounced saves.
type editorSession struct {
	mu      sync.Mutex
	post    *domain.Post
	title   string
	content string
	saver   *AutoSaver
}

// CreatePost opens an editor session for a fresh, empty post. Nothing is
// persisted until the first save with actual content.
func (s *PostService) CreatePost(ctx context.Context) *domain.Post {
	now := time.Now()
	post := &domain.Post{
		ID:        domain.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[post.ID] = s.newSession(post)
	s.mu.Unlock()

	copied := *post
	return &copied
}

func (s *PostService) newSession(post *domain.Post) *editorSession {
	sess := &editorSession{
		post:    post,
		title:   post.Title,
		content: post.Content,
	}
	id := post.ID
	sess.saver = NewAutoSaver(s.autoSaveDelay, func() { s.savePost(id) })
	return sess
}

// session returns the open editor session for id, opening one from the
// stored post when none exists yet.
func (s *PostService) session(ctx context.Context, id string) (*editorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sess := s.newSession(post)
	s.sessions[id] = sess
	return sess, nil
}

// GetPost returns the stored post, or the unsaved in-session post when the
// id was created but never persisted.
func (s *PostService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err == nil {
		return post, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, err
	}

	sess.mu.Lock()
	copied := *sess.post
	sess.mu.Unlock()
	return &copied, nil
}

func (s *PostService) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.repo.List(ctx)
}

func (s *PostService) SearchPosts(ctx context.Context, query string) ([]*domain.Post, error) {
	return s.repo.Search(ctx, query)
}

// EditPost records the editor's current title and content for the post and
// (re)schedules the debounced save. A title over the length cap is ignored;
// the previous title stays.
func (s *PostService) EditPost(ctx context.Context, id string, title string, content string) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if len(title) <= maxTitleLength {
		sess.title = title
	}
	sess.content = content
	sess.mu.Unlock()

	sess.saver.Schedule()
	return nil
}

// FlushPost saves any pending edits immediately and closes the editor
// session. Safe to call for a post with no open session.
func (s *PostService) FlushPost(ctx context.Context, id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.saver.Flush()
	}
}

// savePost is the auto-save target: it applies the editor save rules to the
// session's pending state and persists the post.
//
// A first save of a new post with a title and no frontmatter gets a
// frontmatter block generated from the configured template. A later save
// with a changed title gets the frontmatter title rewritten in place. Blank
// posts are not persisted at all.
func (s *PostService) savePost(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	title := strings.TrimSpace(sess.title)
	content := sess.content
	if title == "" && strings.TrimSpace(content) == "" {
		return
	}

	isNewPost := sess.post.Content == ""
	switch {
	case isNewPost && title != "" && !frontmatter.Has(content):
		content = frontmatter.Generate(title, s.frontmatterTemplate()) + content
	case frontmatter.Has(content) && title != sess.post.Title:
		content = frontmatter.RewriteTitle(content, title)
	}

	sess.post.Title = title
	sess.post.Content = content
	sess.post.UpdatedAt = time.Now()

	if err := s.repo.Save(s.ctx, sess.post); err != nil {
		log.Error().Err(err).Str("postID", id).Msg("Failed to auto-save post")
		return
	}

	sess.title = title
	sess.content = content
}

func (s *PostService) frontmatterTemplate() string {
	appSettings, err := s.settings.AppSettings(s.ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load settings, using default frontmatter template")
		return frontmatter.DefaultTemplate
	}
	return appSettings.FrontmatterTemplate
}

// PublishPost publishes the post to the configured repository and returns
// its web URL. Pending edits are flushed and the post is persisted before
// the remote write, so a failed publish never loses local work. On success
// the post is marked published under the filename just used.
func (s *PostService) PublishPost(ctx context.Context, id string) (string, error) {
	s.FlushPost(ctx, id)

	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	cfg, err := s.settings.GitHubConfig(ctx)
	if err != nil {
		return "", err
	}

	if err := s.repo.Save(ctx, post); err != nil {
		return "", fmt.Errorf("failed to save post before publish: %w", err)
	}

	url, err := s.publisher.Publish(ctx, post, cfg)
	if err != nil {
		return "", err
	}

	now := time.Now()
	post.IsPublished = true
	post.PublishedAt = now
	post.UpdatedAt = now
	post.PublishedFilename = post.FileName()
	if err := s.repo.Save(ctx, post); err != nil {
		return "", fmt.Errorf("failed to record publish state: %w", err)
	}

	log.Info().Str("postID", id).Str("filename", post.PublishedFilename).Msg("Published post")
	return url, nil
}

// DeletePost removes the post locally, deleting the remote file first when
// the post has been published. A failed remote delete leaves the local post
// in place.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.saver.Stop()
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if post.IsPublished {
		cfg, err := s.settings.GitHubConfig(ctx)
		if err != nil {
			return err
		}
		if err := s.publisher.Delete(ctx, post, cfg); err != nil {
			return err
		}
	}

	return s.repo.Delete(ctx, id)
}

// SyncFromGitHub imports every remote post and reconciles it against the
// local store by case-insensitive title match: a matching local post keeps
// its identifier and creation time and takes the imported content and dates;
// anything else is inserted as new. Returns the number of posts imported.
func (s *PostService) SyncFromGitHub(ctx context.Context) (int, error) {
	cfg, err := s.settings.GitHubConfig(ctx)
	if err != nil {
		return 0, err
	}

	fetched, err := s.importer.FetchAll(ctx, cfg)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, post := range fetched {
		existing, err := s.repo.GetByTitle(ctx, post.Title)
		switch {
		case err == nil:
			post.ID = existing.ID
			post.CreatedAt = existing.CreatedAt
		case !apperr.IsNotFound(err):
			return imported, err
		}

		if err := s.repo.Save(ctx, post); err != nil {
			log.Error().Err(err).Str("title", post.Title).Msg("Failed to save imported post")
			continue
		}
		imported++
	}

	log.Info().Int("imported", imported).Msg("Synced posts from GitHub")
	return imported, nil
}

// SyncAsync runs a sync import in the background, detached from the
// caller's request. Used by the push webhook.
func (s *PostService) SyncAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.SyncFromGitHub(s.ctx); err != nil {
			log.Error().Err(err).Msg("Background sync failed")
		}
	}()
}
