package settings

import (
	"context"
	"fmt"

	"github.com/rrajath/hugowriter/posts/frontmatter"
)

// AppSettings are the writer-facing preferences.
type AppSettings struct {
	IsDarkMode          bool
	FrontmatterTemplate string
}

// DefaultAppSettings returns the settings applied before the user has
// configured anything.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		IsDarkMode:          false,
		FrontmatterTemplate: frontmatter.DefaultTemplate,
	}
}

// GitHubConfig is the publish target: a repository, branch and content
// directory reachable with a personal access token.
type GitHubConfig struct {
	PersonalAccessToken string
	RepositoryOwner     string
	RepositoryName      string
	Branch              string
	TargetDirectory     string
}

// DefaultGitHubConfig returns an (invalid) config preset with the usual Hugo
// content layout.
func DefaultGitHubConfig() GitHubConfig {
	return GitHubConfig{
		Branch:          "main",
		TargetDirectory: "content/posts/",
	}
}

// Valid reports whether every field required for remote operations is set.
func (c GitHubConfig) Valid() bool {
	return c.PersonalAccessToken != "" &&
		c.RepositoryOwner != "" &&
		c.RepositoryName != "" &&
		c.Branch != "" &&
		c.TargetDirectory != ""
}

// FullRepositoryName returns "owner/name".
func (c GitHubConfig) FullRepositoryName() string {
	return fmt.Sprintf("%s/%s", c.RepositoryOwner, c.RepositoryName)
}

// Repository stores application settings and the GitHub publish
// target. Reads return defaults for keys that were never written.
type Repository interface {
	AppSettings(ctx context.Context) (AppSettings, error)
	GitHubConfig(ctx context.Context) (GitHubConfig, error)

	SetDarkMode(ctx context.Context, isDarkMode bool) error
	SetFrontmatterTemplate(ctx context.Context, template string) error
	SetGitHubConfig(ctx context.Context, cfg GitHubConfig) error
}
