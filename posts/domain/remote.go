package domain

import "context"

// RemoteFile is an entry in the remote repository's content tree.
type RemoteFile struct {
	Name string
	Path string
	// SHA is the content fingerprint of the file's current revision. The
	// remote rejects overwrites and deletes that do not present it.
	SHA string
	// Content is the decoded file body; populated by GetFile only.
	Content []byte
}

// ResolutionState classifies the outcome of a remote path lookup.
type ResolutionState int

const (
	// Found means the path exists; the Resolution carries its SHA.
	Found ResolutionState = iota
	// NotFound means the remote answered and the path does not exist.
	NotFound
	// TransportError means the lookup itself failed, so existence is
	// unknown. Callers decide per site whether that aborts or degrades
	// to NotFound.
	TransportError
)

// Resolution is the three-state result of Resolve.
type Resolution struct {
	State ResolutionState
	SHA   string
	Err   error
}

// ContentRepository speaks to the remote repository's content API. All paths
// are relative to the repository root; implementations are scoped to a single
// repository and branch.
type ContentRepository interface {
	// Resolve checks whether a file exists at path and, if so, returns its
	// SHA. It never returns an error; failures are reported in the
	// Resolution state.
	Resolve(ctx context.Context, path string) Resolution

	// ListMarkdown lists the regular .md files directly under dir.
	// The returned entries carry no content.
	ListMarkdown(ctx context.Context, dir string) ([]RemoteFile, error)

	// GetFile fetches a single file with its decoded content.
	GetFile(ctx context.Context, path string) (*RemoteFile, error)

	// PutFile creates or updates the file at path. sha must be the current
	// fingerprint when overwriting an existing file and empty when creating
	// a new one. Returns the web-viewable URL of the file if the remote
	// reports one.
	PutFile(ctx context.Context, path string, content []byte, message string, sha string) (string, error)

	// DeleteFile removes the file at path; sha must match its current
	// revision.
	DeleteFile(ctx context.Context, path string, message string, sha string) error
}
