package api

// AppSettings mirrors the writer preferences.
type AppSettings struct {
	IsDarkMode          bool   `json:"is_dark_mode"`
	FrontmatterTemplate string `json:"frontmatter_template"`
}

// GitHubConfig mirrors the publish target. The token is write-only: reads
// report only whether one is set.
type GitHubConfig struct {
	PersonalAccessToken string `json:"personal_access_token,omitempty"`
	HasToken            bool   `json:"has_token"`
	RepositoryOwner     string `json:"repository_owner"`
	RepositoryName      string `json:"repository_name"`
	Branch              string `json:"branch"`
	TargetDirectory     string `json:"target_directory"`
}
