package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v68/github"

	"github.com/rrajath/hugowriter/posts/domain"
	"github.com/rrajath/hugowriter/shared/apperr"
)

// newTestClient points a ContentClient at a local test server.
func newTestClient(t *testing.T, handler http.Handler) *ContentClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	client.BaseURL = baseURL
	client.UploadURL = baseURL

	return NewContentClient(client, "rrajath", "blog", "main")
}

const contentsPath = "/repos/rrajath/blog/contents/"

func TestResolveFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts/a.md", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("ref = %q, want main", got)
		}
		fmt.Fprint(w, `{"type":"file","name":"a.md","path":"content/posts/a.md","sha":"abc123"}`)
	})

	client := newTestClient(t, mux)
	res := client.Resolve(context.Background(), "content/posts/a.md")
	if res.State != domain.Found {
		t.Fatalf("state = %v, want Found", res.State)
	}
	if res.SHA != "abc123" {
		t.Errorf("sha = %q, want abc123", res.SHA)
	}
}

func TestResolveNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts/missing.md", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	client := newTestClient(t, mux)
	res := client.Resolve(context.Background(), "content/posts/missing.md")
	if res.State != domain.NotFound {
		t.Fatalf("state = %v, want NotFound", res.State)
	}
}

func TestResolveTransportError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts/a.md", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"upstream broke"}`)
	})

	client := newTestClient(t, mux)
	res := client.Resolve(context.Background(), "content/posts/a.md")
	if res.State != domain.TransportError {
		t.Fatalf("state = %v, want TransportError", res.State)
	}
	if !apperr.IsTransport(res.Err) {
		t.Errorf("err = %v, want a transport error", res.Err)
	}
}

func TestListMarkdownFiltersEntries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"type":"file","name":"a.md","path":"content/posts/a.md","sha":"s1"},
			{"type":"file","name":"image.png","path":"content/posts/image.png","sha":"s2"},
			{"type":"dir","name":"drafts","path":"content/posts/drafts","sha":"s3"},
			{"type":"file","name":"b.md","path":"content/posts/b.md","sha":"s4"}
		]`)
	})

	client := newTestClient(t, mux)
	files, err := client.ListMarkdown(context.Background(), "content/posts")
	if err != nil {
		t.Fatalf("ListMarkdown() returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ListMarkdown() = %d files, want the two .md files", len(files))
	}
	if files[0].Name != "a.md" || files[1].Name != "b.md" {
		t.Errorf("files = %+v", files)
	}
}

func TestGetFileDecodesContent(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("# Hello\n\nworld"))
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts/a.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"type":"file","name":"a.md","path":"content/posts/a.md","sha":"s1","encoding":"base64","content":%q}`, encoded)
	})

	client := newTestClient(t, mux)
	file, err := client.GetFile(context.Background(), "content/posts/a.md")
	if err != nil {
		t.Fatalf("GetFile() returned error: %v", err)
	}
	if string(file.Content) != "# Hello\n\nworld" {
		t.Errorf("content = %q", file.Content)
	}
	if file.SHA != "s1" {
		t.Errorf("sha = %q", file.SHA)
	}
}

func TestPutFileCreate(t *testing.T) {
	var body struct {
		Message string  `json:"message"`
		Branch  string  `json:"branch"`
		SHA     *string `json:"sha"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts/a.md", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(w, `{"content":{"html_url":"https://github.com/rrajath/blog/blob/main/content/posts/a.md"}}`)
	})

	client := newTestClient(t, mux)
	url, err := client.PutFile(context.Background(), "content/posts/a.md", []byte("body"), "Create post: A", "")
	if err != nil {
		t.Fatalf("PutFile() returned error: %v", err)
	}
	if url != "https://github.com/rrajath/blog/blob/main/content/posts/a.md" {
		t.Errorf("url = %q", url)
	}
	if body.Message != "Create post: A" || body.Branch != "main" {
		t.Errorf("request body = %+v", body)
	}
	if body.SHA != nil {
		t.Errorf("create carried a sha: %v", *body.SHA)
	}
}

func TestPutFileUpdateCarriesSHA(t *testing.T) {
	var body struct {
		SHA *string `json:"sha"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts/a.md", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(w, `{"content":{}}`)
	})

	client := newTestClient(t, mux)
	if _, err := client.PutFile(context.Background(), "content/posts/a.md", []byte("body"), "Update post: A", "existing-sha"); err != nil {
		t.Fatalf("PutFile() returned error: %v", err)
	}
	if body.SHA == nil || *body.SHA != "existing-sha" {
		t.Errorf("sha = %v, want existing-sha", body.SHA)
	}
}

func TestDeleteFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts/a.md", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		fmt.Fprint(w, `{}`)
	})

	client := newTestClient(t, mux)
	if err := client.DeleteFile(context.Background(), "content/posts/a.md", "Delete post: A", "s1"); err != nil {
		t.Fatalf("DeleteFile() returned error: %v", err)
	}
}

func TestDeleteFileNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(contentsPath+"content/posts/gone.md", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	client := newTestClient(t, mux)
	err := client.DeleteFile(context.Background(), "content/posts/gone.md", "Delete post: Gone", "s1")
	if !apperr.IsNotFound(err) {
		t.Fatalf("DeleteFile() error = %v, want not found", err)
	}
}
