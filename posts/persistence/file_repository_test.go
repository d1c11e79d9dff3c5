package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rrajath/hugowriter/posts/domain"
	"github.com/rrajath/hugowriter/shared/apperr"
)

func newTestRepository(t *testing.T) *FilePostRepository {
	t.Helper()
	repo, err := NewFilePostRepository(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilePostRepository() returned error: %v", err)
	}
	return repo
}

func testPost(id string, title string, updated time.Time) *domain.Post {
	return &domain.Post{
		ID:        id,
		Title:     title,
		Content:   "content of " + title,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	published := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	post := testPost("p1", "First", published)
	post.IsPublished = true
	post.PublishedAt = published
	post.PublishedFilename = "first.md"

	if err := repo.Save(ctx, post); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	got, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() returned error: %v", err)
	}
	if got.Title != "First" || got.Content != "content of First" {
		t.Errorf("Get() = %+v", got)
	}
	if !got.IsPublished || got.PublishedFilename != "first.md" {
		t.Errorf("publish state lost: %+v", got)
	}
	if !got.PublishedAt.Equal(published) {
		t.Errorf("publishedAt = %v, want %v", got.PublishedAt, published)
	}
}

func TestGetMissingPost(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.Get(context.Background(), "nope")
	if !apperr.IsNotFound(err) {
		t.Fatalf("Get() error = %v, want not found", err)
	}
}

func TestUnpublishedPostOmitsPublishFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testPost("p1", "Draft", time.Now())); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(repo.dir, "p1.json"))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["publishedAt"]; ok {
		t.Error("publishedAt serialized for an unpublished post")
	}
	if _, ok := raw["publishedFilename"]; ok {
		t.Error("publishedFilename serialized for an unpublished post")
	}

	got, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.PublishedAt.IsZero() {
		t.Errorf("publishedAt = %v, want zero", got.PublishedAt)
	}
}

func TestListSortsByResolvedDateDescending(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	older := testPost("p1", "Older", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := testPost("p2", "Newer", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	frontmatterDated := testPost("p3", "Dated", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	frontmatterDated.Content = "---\ntitle: \"Dated\"\ndate: 2025-06-01\n---\nbody"

	for _, p := range []*domain.Post{older, newer, frontmatterDated} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	posts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("List() returned %d posts, want 3", len(posts))
	}

	// The frontmatter date outranks the file timestamps.
	wantOrder := []string{"p3", "p2", "p1"}
	for i, want := range wantOrder {
		if posts[i].ID != want {
			t.Errorf("posts[%d].ID = %q, want %q", i, posts[i].ID, want)
		}
	}
}

func TestListSkipsUnparseableRecords(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testPost("p1", "Good", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repo.dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	posts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "p1" {
		t.Fatalf("List() = %d posts, want just the parseable one", len(posts))
	}
}

func TestGetByTitleCaseInsensitive(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testPost("p1", "My Post", time.Now())); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByTitle(ctx, "my post")
	if err != nil {
		t.Fatalf("GetByTitle() returned error: %v", err)
	}
	if got.ID != "p1" {
		t.Errorf("GetByTitle() id = %q, want p1", got.ID)
	}

	if _, err := repo.GetByTitle(ctx, "unknown"); !apperr.IsNotFound(err) {
		t.Errorf("GetByTitle() error = %v, want not found", err)
	}
}

func TestSearch(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	recipes := testPost("p1", "Cooking Notes", time.Now())
	recipes.Content = "A post about pasta."
	travel := testPost("p2", "Travel Log", time.Now())
	travel.Content = "Nothing culinary here."
	for _, p := range []*domain.Post{recipes, travel} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.Search(ctx, "pasta")
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("Search(pasta) = %v, want just p1", got)
	}

	all, err := repo.Search(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("Search(\"\") = %d posts, want all", len(all))
	}
}

func writeRecordAs(t *testing.T, repo *FilePostRepository, filename string, p *domain.Post) {
	t.Helper()
	data, err := json.Marshal(toRecord(p))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repo.dir, filename), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReconcileCollapsesDuplicates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// Same post id stored under its canonical key and a stray key.
	canonical := testPost("p1", "Canonical", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	stray := testPost("p1", "Stray Copy", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	writeRecordAs(t, repo, "p1.json", canonical)
	writeRecordAs(t, repo, "stray.json", stray)

	posts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("List() = %d posts, want the duplicate collapsed", len(posts))
	}
	if posts[0].Title != "Canonical" {
		t.Errorf("surviving record = %q, want the canonical one", posts[0].Title)
	}

	if _, err := os.Stat(filepath.Join(repo.dir, "stray.json")); !os.IsNotExist(err) {
		t.Error("stray record still on disk after reconciliation")
	}
}

func TestReconcilePromotesLatestWhenCanonicalMissing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	older := testPost("p1", "Older Copy", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := testPost("p1", "Newer Copy", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	writeRecordAs(t, repo, "copy-a.json", older)
	writeRecordAs(t, repo, "copy-b.json", newer)

	posts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() returned error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("List() = %d posts, want 1", len(posts))
	}
	if posts[0].Title != "Newer Copy" {
		t.Errorf("surviving record = %q, want the more recently dated copy", posts[0].Title)
	}

	// The survivor now lives under the canonical key.
	got, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() after promotion returned error: %v", err)
	}
	if got.Title != "Newer Copy" {
		t.Errorf("Get() = %q, want the promoted record", got.Title)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, testPost("p1", "Doomed", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if _, err := repo.Get(ctx, "p1"); !apperr.IsNotFound(err) {
		t.Errorf("post still retrievable after delete, err = %v", err)
	}
	if err := repo.Delete(ctx, "p1"); !apperr.IsNotFound(err) {
		t.Errorf("second delete error = %v, want not found", err)
	}
}
