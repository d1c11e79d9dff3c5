package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rrajath/hugowriter/api"
	"github.com/rrajath/hugowriter/posts/application"
	"github.com/rrajath/hugowriter/posts/domain"
)

func toAPIPost(p *domain.Post) api.Post {
	out := api.Post{
		ID:                p.ID,
		Title:             p.Title,
		Content:           p.Content,
		CreatedAt:         p.CreatedAt.UnixMilli(),
		UpdatedAt:         p.UpdatedAt.UnixMilli(),
		IsPublished:       p.IsPublished,
		PublishedFilename: p.PublishedFilename,
		WordCount:         p.WordCount(),
	}
	if !p.PublishedAt.IsZero() {
		out.PublishedAt = p.PublishedAt.UnixMilli()
	}
	return out
}

func toAPISummary(p *domain.Post) api.PostSummary {
	return api.PostSummary{
		ID:          p.ID,
		Title:       p.Title,
		Snippet:     application.Snippet(p.Content),
		Date:        p.ResolvedDate().UnixMilli(),
		IsPublished: p.IsPublished,
	}
}

// ListPosts returns post summaries, filtered by the q query parameter when
// present.
func (h *Handler) ListPosts(c *gin.Context) {
	var (
		posts []*domain.Post
		err   error
	)
	if query := c.Query("q"); query != "" {
		posts, err = h.service.SearchPosts(c.Request.Context(), query)
	} else {
		posts, err = h.service.ListPosts(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}

	summaries := make([]api.PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, toAPISummary(p))
	}
	c.JSON(http.StatusOK, summaries)
}

// CreatePost opens a new empty post and returns it.
func (h *Handler) CreatePost(c *gin.Context) {
	post := h.service.CreatePost(c.Request.Context())
	c.JSON(http.StatusCreated, toAPIPost(post))
}

func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAPIPost(post))
}

// EditPost records the editor's current state; persistence happens on the
// auto-save timer or an explicit save.
func (h *Handler) EditPost(c *gin.Context) {
	var req api.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.EditPost(c.Request.Context(), c.Param("postId"), req.Title, req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// SavePost flushes any pending edits immediately.
func (h *Handler) SavePost(c *gin.Context) {
	h.service.FlushPost(c.Request.Context(), c.Param("postId"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) PublishPost(c *gin.Context) {
	url, err := h.service.PublishPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.PublishResponse{URL: url})
}

// PreviewPost renders the post body as HTML.
func (h *Handler) PreviewPost(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		writeError(c, err)
		return
	}

	html, err := h.renderer.Render(post.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.service.DeletePost(c.Request.Context(), c.Param("postId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SyncPosts imports all remote posts and reconciles them locally.
func (h *Handler) SyncPosts(c *gin.Context) {
	imported, err := h.service.SyncFromGitHub(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SyncResponse{Imported: imported})
}
