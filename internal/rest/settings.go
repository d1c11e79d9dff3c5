package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rrajath/hugowriter/api"
)

func (h *Handler) GetAppSettings(c *gin.Context) {
	appSettings, err := h.settings.AppSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.AppSettings{
		IsDarkMode:          appSettings.IsDarkMode,
		FrontmatterTemplate: appSettings.FrontmatterTemplate,
	})
}

func (h *Handler) UpdateAppSettings(c *gin.Context) {
	var req api.AppSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.settings.SetDarkMode(ctx, req.IsDarkMode); err != nil {
		writeError(c, err)
		return
	}
	if err := h.settings.SetFrontmatterTemplate(ctx, req.FrontmatterTemplate); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetGitHubConfig returns the publish target without the stored token.
func (h *Handler) GetGitHubConfig(c *gin.Context) {
	cfg, err := h.settings.GitHubConfig(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.GitHubConfig{
		HasToken:        cfg.PersonalAccessToken != "",
		RepositoryOwner: cfg.RepositoryOwner,
		RepositoryName:  cfg.RepositoryName,
		Branch:          cfg.Branch,
		TargetDirectory: cfg.TargetDirectory,
	})
}

// UpdateGitHubConfig replaces the publish target. An empty token in the
// request keeps the token already stored.
func (h *Handler) UpdateGitHubConfig(c *gin.Context) {
	var req api.GitHubConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	current, err := h.settings.GitHubConfig(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	current.RepositoryOwner = req.RepositoryOwner
	current.RepositoryName = req.RepositoryName
	current.Branch = req.Branch
	current.TargetDirectory = req.TargetDirectory
	if req.PersonalAccessToken != "" {
		current.PersonalAccessToken = req.PersonalAccessToken
	}

	if err := h.settings.SetGitHubConfig(ctx, current); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
