package post

import (
	"io"
	"time"
)

// FileType is the kind of media attached to a post.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// UnknownAuthor is shown in the feed when a post's owner no longer exists.
const UnknownAuthor = "Unknown"

// Post is a single media-plus-caption share by a user.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Caption   string    `json:"caption"`
	URL       string    `json:"url"`
	FileType  FileType  `json:"file_type"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedItem is a post enriched with its author's email and the requester's ownership.
type FeedItem struct {
	Post
	IsOwner bool   `json:"is_owner"`
	Email   string `json:"email"`
}

// Author is the subset of a user the feed needs.
type Author struct {
	ID    string
	Email string
}

// UploadRequest carries a media upload from an authenticated user.
type UploadRequest struct {
	UserID      string
	Caption     string
	FileName    string
	ContentType string
	Body        io.Reader
}

// DeleteResult confirms a successful deletion.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MediaUpload is the staged payload forwarded to the media store.
type MediaUpload struct {
	Body        io.Reader
	Size        int64
	FileName    string
	ContentType string
	Tags        []string
}

// MediaResult is the media store's response to an upload. StatusCode mirrors
// the store's HTTP semantics; only 2xx results count as success.
type MediaResult struct {
	StatusCode int
	URL        string
	Name       string
	FileID     string
}
