// Package sqlite persists settings as key-value rows, the server-side
// equivalent of a preferences store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rrajath/hugowriter/settings"
	"github.com/rrajath/hugowriter/shared/db"
)

var _ settings.Repository = (*SettingsStore)(nil)

const (
	keyDarkMode            = "is_dark_mode"
	keyFrontmatterTemplate = "frontmatter_template"
	keyGitHubPAT           = "github_pat"
	keyGitHubRepoOwner     = "github_repo_owner"
	keyGitHubRepoName      = "github_repo_name"
	keyGitHubBranch        = "github_branch"
	keyGitHubTargetDir     = "github_target_dir"
)

// SettingsStore implements settings.Repository on the settings table.
type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(conn *sql.DB) *SettingsStore {
	return &SettingsStore{db: conn}
}

const getSettingQuery = `SELECT value FROM settings WHERE key = ?`

const setSettingQuery = `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
`

func (s *SettingsStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.GetExecutor(ctx, s.db).QueryRowContext(ctx, getSettingQuery, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SettingsStore) set(ctx context.Context, key string, value string) error {
	if _, err := db.GetExecutor(ctx, s.db).ExecContext(ctx, setSettingQuery, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// AppSettings returns the stored preferences, defaulting any key never
// written.
func (s *SettingsStore) AppSettings(ctx context.Context) (settings.AppSettings, error) {
	out := settings.DefaultAppSettings()

	if v, ok, err := s.get(ctx, keyDarkMode); err != nil {
		return out, err
	} else if ok {
		out.IsDarkMode, _ = strconv.ParseBool(v)
	}

	if v, ok, err := s.get(ctx, keyFrontmatterTemplate); err != nil {
		return out, err
	} else if ok {
		out.FrontmatterTemplate = v
	}

	return out, nil
}

// GitHubConfig returns the stored publish target, defaulting branch and
// target directory for keys never written.
func (s *SettingsStore) GitHubConfig(ctx context.Context) (settings.GitHubConfig, error) {
	out := settings.DefaultGitHubConfig()

	fields := []struct {
		key  string
		dest *string
	}{
		{keyGitHubPAT, &out.PersonalAccessToken},
		{keyGitHubRepoOwner, &out.RepositoryOwner},
		{keyGitHubRepoName, &out.RepositoryName},
		{keyGitHubBranch, &out.Branch},
		{keyGitHubTargetDir, &out.TargetDirectory},
	}

	for _, f := range fields {
		v, ok, err := s.get(ctx, f.key)
		if err != nil {
			return out, err
		}
		if ok {
			*f.dest = v
		}
	}

	return out, nil
}

func (s *SettingsStore) SetDarkMode(ctx context.Context, isDarkMode bool) error {
	return s.set(ctx, keyDarkMode, strconv.FormatBool(isDarkMode))
}

func (s *SettingsStore) SetFrontmatterTemplate(ctx context.Context, template string) error {
	return s.set(ctx, keyFrontmatterTemplate, template)
}

// SetGitHubConfig writes all five target fields in one transaction so a
// partially-updated config is never observable.
func (s *SettingsStore) SetGitHubConfig(ctx context.Context, cfg settings.GitHubConfig) error {
	return db.RunInTransaction(ctx, s.db, func(txCtx context.Context) error {
		pairs := map[string]string{
			keyGitHubPAT:       cfg.PersonalAccessToken,
			keyGitHubRepoOwner: cfg.RepositoryOwner,
			keyGitHubRepoName:  cfg.RepositoryName,
			keyGitHubBranch:    cfg.Branch,
			keyGitHubTargetDir: cfg.TargetDirectory,
		}
		for key, value := range pairs {
			if err := s.set(txCtx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
