package sqlite

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/rrajath/hugowriter/settings"
	dbsqlite "github.com/rrajath/hugowriter/shared/db/sqlite"
)

func newTestStore(t *testing.T) *SettingsStore {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := dbsqlite.RunMigrations(conn); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return NewSettingsStore(conn)
}

func TestAppSettingsDefaults(t *testing.T) {
	store := newTestStore(t)

	got, err := store.AppSettings(context.Background())
	if err != nil {
		t.Fatalf("AppSettings() returned error: %v", err)
	}
	want := settings.DefaultAppSettings()
	if got != want {
		t.Errorf("AppSettings() = %+v, want defaults %+v", got, want)
	}
}

func TestAppSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetDarkMode(ctx, true); err != nil {
		t.Fatalf("SetDarkMode() returned error: %v", err)
	}
	if err := store.SetFrontmatterTemplate(ctx, "+++\ntitle = \"{TITLE}\"\n+++\n"); err != nil {
		t.Fatalf("SetFrontmatterTemplate() returned error: %v", err)
	}

	got, err := store.AppSettings(ctx)
	if err != nil {
		t.Fatalf("AppSettings() returned error: %v", err)
	}
	if !got.IsDarkMode {
		t.Error("dark mode not persisted")
	}
	if got.FrontmatterTemplate != "+++\ntitle = \"{TITLE}\"\n+++\n" {
		t.Errorf("template = %q", got.FrontmatterTemplate)
	}
}

func TestGitHubConfigDefaults(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GitHubConfig(context.Background())
	if err != nil {
		t.Fatalf("GitHubConfig() returned error: %v", err)
	}
	if got.Branch != "main" || got.TargetDirectory != "content/posts/" {
		t.Errorf("GitHubConfig() = %+v, want branch and target directory defaulted", got)
	}
	if got.Valid() {
		t.Error("default config should not be valid")
	}
}

func TestGitHubConfigRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cfg := settings.GitHubConfig{
		PersonalAccessToken: "ghp_secret",
		RepositoryOwner:     "rrajath",
		RepositoryName:      "blog",
		Branch:              "main",
		TargetDirectory:     "content/posts/",
	}
	if err := store.SetGitHubConfig(ctx, cfg); err != nil {
		t.Fatalf("SetGitHubConfig() returned error: %v", err)
	}

	got, err := store.GitHubConfig(ctx)
	if err != nil {
		t.Fatalf("GitHubConfig() returned error: %v", err)
	}
	if got != cfg {
		t.Errorf("GitHubConfig() = %+v, want %+v", got, cfg)
	}
	if !got.Valid() {
		t.Error("stored config should be valid")
	}
}

func TestSetOverwritesExistingKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetDarkMode(ctx, true); err != nil {
		t.Fatal(err)
	}
	if err := store.SetDarkMode(ctx, false); err != nil {
		t.Fatal(err)
	}

	got, err := store.AppSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsDarkMode {
		t.Error("dark mode not overwritten")
	}
}
