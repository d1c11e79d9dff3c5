package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v68/github"
	"github.com/rs/zerolog/log"

	"github.com/rrajath/hugowriter/posts/application"
	"github.com/rrajath/hugowriter/settings"
)

// WebhookHandler triggers an import when the publish repository receives a
// push touching the configured content directory. This keeps the local store
// in step with edits made directly on GitHub.
type WebhookHandler struct {
	webhookSecret []byte
	postService   *application.PostService
	settings      settings.Repository
}

func NewWebhookHandler(secret string, postService *application.PostService, settingsRepo settings.Repository) *WebhookHandler {
	return &WebhookHandler{
		webhookSecret: []byte(secret),
		postService:   postService,
		settings:      settingsRepo,
	}
}

func (h *WebhookHandler) RegisterRoutes(engine *gin.Engine) {
	engine.POST("/webhook/git", h.HandleGitWebhook)
}

func (h *WebhookHandler) HandleGitWebhook(c *gin.Context) {
	payload, err := github.ValidatePayload(c.Request, h.webhookSecret)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid payload")
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(c.Request), payload)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid event")
		return
	}

	if push, ok := event.(*github.PushEvent); ok {
		h.handlePush(c, push)
	}

	c.Status(http.StatusNoContent)
}

func (h *WebhookHandler) handlePush(c *gin.Context, push *github.PushEvent) {
	cfg, err := h.settings.GitHubConfig(c.Request.Context())
	if err != nil {
		log.Err(err).Msg("Failed to load GitHub config for webhook")
		return
	}
	if !cfg.Valid() {
		return
	}

	if push.GetRepo().GetFullName() != cfg.FullRepositoryName() {
		return
	}
	if !touchesContent(push, cfg.TargetDirectory) {
		return
	}

	log.Info().
		Str("repository", push.GetRepo().GetFullName()).
		Str("ref", push.GetRef()).
		Msg("Push to content directory, scheduling import")
	h.postService.SyncAsync()
}

func touchesContent(push *github.PushEvent, targetDir string) bool {
	prefix := strings.TrimSuffix(targetDir, "/") + "/"
	for _, commit := range push.Commits {
		for _, files := range [][]string{commit.Added, commit.Modified, commit.Removed} {
			for _, f := range files {
				if strings.HasPrefix(f, prefix) {
					return true
				}
			}
		}
	}
	return false
}
