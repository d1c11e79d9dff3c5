package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v68/github"

	"github.com/rrajath/hugowriter/posts/domain"
	"github.com/rrajath/hugowriter/settings"
	"github.com/rrajath/hugowriter/shared/apperr"
)

var _ domain.ContentRepository = (*ContentClient)(nil)

// ContentClient implements domain.ContentRepository against the GitHub
// contents API, scoped to one repository and branch.
type ContentClient struct {
	client *github.Client
	owner  string
	repo   string
	branch string
}

// NewContentClient wraps an already-configured go-github client.
func NewContentClient(client *github.Client, owner string, repo string, branch string) *ContentClient {
	return &ContentClient{
		client: client,
		owner:  owner,
		repo:   repo,
		branch: branch,
	}
}

// NewForConfig builds an authenticated client for the configured publish
// target. Clients are cheap; one is constructed per operation rather than
// cached against a mutable token.
func NewForConfig(cfg settings.GitHubConfig) *ContentClient {
	client := github.NewClient(nil).WithAuthToken(cfg.PersonalAccessToken)
	return NewContentClient(client, cfg.RepositoryOwner, cfg.RepositoryName, cfg.Branch)
}

// Resolve looks up path on the branch. Lookup failures never surface as
// errors; a 404 is NotFound and anything else is TransportError, leaving the
// caller to decide whether unknown existence aborts its operation.
func (c *ContentClient) Resolve(ctx context.Context, path string) domain.Resolution {
	fileContent, _, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, &github.RepositoryContentGetOptions{
		Ref: c.branch,
	})
	if err != nil {
		if isNotFound(err) {
			return domain.Resolution{State: domain.NotFound}
		}
		return domain.Resolution{
			State: domain.TransportError,
			Err:   contentError(fmt.Sprintf("resolving %s", path), err),
		}
	}
	if fileContent == nil {
		// The path names a directory.
		return domain.Resolution{State: domain.NotFound}
	}
	return domain.Resolution{State: domain.Found, SHA: fileContent.GetSHA()}
}

// ListMarkdown lists the regular .md files directly under dir.
func (c *ContentClient) ListMarkdown(ctx context.Context, dir string) ([]domain.RemoteFile, error) {
	op := fmt.Sprintf("listing %s", dir)
	_, entries, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, strings.TrimSuffix(dir, "/"), &github.RepositoryContentGetOptions{
		Ref: c.branch,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(fmt.Sprintf("directory %s", dir))
		}
		return nil, contentError(op, err)
	}

	var files []domain.RemoteFile
	for _, entry := range entries {
		if entry.GetType() != "file" || !strings.HasSuffix(entry.GetName(), ".md") {
			continue
		}
		files = append(files, domain.RemoteFile{
			Name: entry.GetName(),
			Path: entry.GetPath(),
			SHA:  entry.GetSHA(),
		})
	}
	return files, nil
}

// GetFile fetches path with its content decoded from base64.
func (c *ContentClient) GetFile(ctx context.Context, path string) (*domain.RemoteFile, error) {
	op := fmt.Sprintf("getting file %s", path)
	fileContent, _, _, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, &github.RepositoryContentGetOptions{
		Ref: c.branch,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound(fmt.Sprintf("file %s", path))
		}
		return nil, contentError(op, err)
	}
	if fileContent == nil {
		return nil, apperr.NotFound(fmt.Sprintf("file %s", path))
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, &apperr.DecodeError{Path: path, Err: err}
	}

	return &domain.RemoteFile{
		Name:    fileContent.GetName(),
		Path:    fileContent.GetPath(),
		SHA:     fileContent.GetSHA(),
		Content: []byte(content),
	}, nil
}

// PutFile creates or updates path. An empty sha creates; a non-empty sha is
// the optimistic-concurrency token required to overwrite the existing
// revision. Returns the file's web URL when the response carries one.
func (c *ContentClient) PutFile(ctx context.Context, path string, content []byte, message string, sha string) (string, error) {
	op := fmt.Sprintf("writing %s", path)
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: content,
		Branch:  github.Ptr(c.branch),
	}

	var resp *github.RepositoryContentResponse
	var err error
	if sha == "" {
		resp, _, err = c.client.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts)
	} else {
		opts.SHA = github.Ptr(sha)
		resp, _, err = c.client.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts)
	}
	if err != nil {
		return "", contentError(op, err)
	}

	if resp != nil && resp.Content != nil {
		return resp.Content.GetHTMLURL(), nil
	}
	return "", nil
}

// DeleteFile removes path; sha must match the current revision.
func (c *ContentClient) DeleteFile(ctx context.Context, path string, message string, sha string) error {
	op := fmt.Sprintf("deleting %s", path)
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		SHA:     github.Ptr(sha),
		Branch:  github.Ptr(c.branch),
	}
	if _, _, err := c.client.Repositories.DeleteFile(ctx, c.owner, c.repo, path, opts); err != nil {
		if isNotFound(err) {
			return apperr.NotFound(fmt.Sprintf("file %s", path))
		}
		return contentError(op, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

// contentError converts a go-github error into the transport error the rest
// of the app understands.
func contentError(op string, err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return &apperr.TransportError{
			Op:     op,
			Status: errResp.Response.StatusCode,
			Body:   errResp.Message,
			Err:    err,
		}
	}
	return &apperr.TransportError{Op: op, Err: err}
}
