package api

// Post is the full wire representation of a post. Timestamps are Unix
// milliseconds; published_at is omitted until the post has been published.
type Post struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Content           string `json:"content"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
	PublishedAt       int64  `json:"published_at,omitempty"`
	IsPublished       bool   `json:"is_published"`
	PublishedFilename string `json:"published_filename,omitempty"`
	WordCount         int    `json:"word_count"`
}

// PostSummary is the list view of a post: no content, just a snippet.
type PostSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Date        int64  `json:"date"`
	IsPublished bool   `json:"is_published"`
}

// EditRequest carries the editor's current title and content.
type EditRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PublishResponse reports where a published post can be viewed.
type PublishResponse struct {
	URL string `json:"url"`
}

// SyncResponse reports how many posts a sync imported.
type SyncResponse struct {
	Imported int `json:"imported"`
}
