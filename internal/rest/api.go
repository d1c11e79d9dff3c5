package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rrajath/hugowriter/posts/application"
	"github.com/rrajath/hugowriter/settings"
	"github.com/rrajath/hugowriter/shared/apperr"
)

// Handler exposes the post service and settings store over HTTP.
type Handler struct {
	service  *application.PostService
	settings settings.Repository
	renderer application.MarkdownRenderer
}

// NewApi registers all routes on the router.
func NewApi(router *gin.Engine, service *application.PostService, settingsRepo settings.Repository, renderer application.MarkdownRenderer) {
	h := &Handler{
		service:  service,
		settings: settingsRepo,
		renderer: renderer,
	}

	postsV1 := router.Group("posts/v1")
	{
		postsV1.GET("/", h.ListPosts)
		postsV1.POST("/", h.CreatePost)
		postsV1.GET("/:postId", h.GetPost)
		postsV1.PUT("/:postId", h.EditPost)
		postsV1.POST("/:postId/save", h.SavePost)
		postsV1.POST("/:postId/publish", h.PublishPost)
		postsV1.GET("/:postId/preview", h.PreviewPost)
		postsV1.DELETE("/:postId", h.DeletePost)
	}

	syncV1 := router.Group("sync/v1")
	{
		syncV1.POST("/", h.SyncPosts)
	}

	settingsV1 := router.Group("settings/v1")
	{
		settingsV1.GET("/app", h.GetAppSettings)
		settingsV1.PUT("/app", h.UpdateAppSettings)
		settingsV1.GET("/github", h.GetGitHubConfig)
		settingsV1.PUT("/github", h.UpdateGitHubConfig)
	}
}

// writeError maps application errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalidConfig):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case apperr.IsTransport(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
