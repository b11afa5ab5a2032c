package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const feedSeparator = "----------------------------------------"

// allowedMedia maps the file extensions the upload view accepts to the
// content type sent when the file's bytes are not recognized.
var allowedMedia = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

// Views renders the client screens as text. Each view takes the session
// explicitly and reports failures as errors that carry the server's detail.
type Views struct {
	api   *APIClient
	store *SessionStore
	out   io.Writer
}

func NewViews(api *APIClient, store *SessionStore, out io.Writer) *Views {
	return &Views{api: api, store: store, out: out}
}

// LoginView logs in, loads the current user and persists the session.
func (v *Views) LoginView(ctx context.Context, sess *Session, email, password string) error {
	token, err := v.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("invalid email or password: %w", err)
	}

	sess.Token = token.AccessToken
	user, err := v.api.CurrentUser(ctx, sess)
	if err != nil {
		sess.Clear()
		return fmt.Errorf("failed to get user info: %w", err)
	}
	sess.User = user

	if err := v.store.Save(sess); err != nil {
		return err
	}
	fmt.Fprintf(v.out, "Hi %s! You are logged in.\n", user.Email)
	return nil
}

// SignupView registers a new account. It does not log in.
func (v *Views) SignupView(ctx context.Context, email, password string) error {
	if _, err := v.api.Register(ctx, email, password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Fprintln(v.out, "Account created! Run login now.")
	return nil
}

// WhoAmIView prints the session user.
func (v *Views) WhoAmIView(sess *Session) error {
	if !sess.LoggedIn() {
		return ErrNotLoggedIn
	}
	fmt.Fprintf(v.out, "%s (%s)\n", sess.User.Email, sess.User.ID)
	return nil
}

// UploadView shares a local media file with an optional caption.
func (v *Views) UploadView(ctx context.Context, sess *Session, path, caption string) error {
	if !sess.LoggedIn() {
		return ErrNotLoggedIn
	}

	ext := strings.ToLower(filepath.Ext(path))
	fallbackType, ok := allowedMedia[ext]
	if !ok {
		return fmt.Errorf("unsupported media type %q: choose png, jpg, jpeg, mp4, avi, mov, mkv or webm", ext)
	}

	contentType := fallbackType
	if detected, err := mimetype.DetectFile(path); err == nil && isMediaType(detected.String()) {
		contentType = detected.String()
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open media: %w", err)
	}
	defer file.Close()

	created, err := v.api.Upload(ctx, sess, filepath.Base(path), contentType, file, caption)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Fprintf(v.out, "Posted! %s\n", created.ID)
	return nil
}

// FeedView prints every post newest first. Owned posts carry a delete hint.
func (v *Views) FeedView(ctx context.Context, sess *Session) error {
	if !sess.LoggedIn() {
		return ErrNotLoggedIn
	}

	items, err := v.api.Feed(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load feed: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintln(v.out, "No posts yet! Be the first to share something.")
		return nil
	}

	for _, item := range items {
		v.renderItem(item)
	}
	return nil
}

// DeleteView deletes a post and re-renders the feed on success.
func (v *Views) DeleteView(ctx context.Context, sess *Session, id string) error {
	if !sess.LoggedIn() {
		return ErrNotLoggedIn
	}

	if _, err := v.api.DeletePost(ctx, sess, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	fmt.Fprintln(v.out, "Post deleted!")
	return v.FeedView(ctx, sess)
}

// LogoutView forgets the session locally.
func (v *Views) LogoutView(sess *Session) error {
	sess.Clear()
	if err := v.store.Remove(); err != nil {
		return err
	}
	fmt.Fprintln(v.out, "Logged out.")
	return nil
}

func (v *Views) renderItem(item FeedItem) {
	email := item.Email
	if email == "" {
		email = "Unknown"
	}
	date := ""
	if !item.CreatedAt.IsZero() {
		date = item.CreatedAt.Format("2006-01-02")
	}

	fmt.Fprintln(v.out, feedSeparator)
	header := fmt.Sprintf("%s • %s", email, date)
	if item.IsOwner {
		header += fmt.Sprintf("  [delete: social-cli delete %s]", item.ID)
	}
	fmt.Fprintln(v.out, header)

	if item.FileType == "image" {
		fmt.Fprintf(v.out, "image: %s\n", TransformURL(item.URL, "", item.Caption))
	} else {
		fmt.Fprintf(v.out, "video: %s\n", TransformURL(item.URL, VideoTransform, ""))
	}
	if item.Caption != "" {
		fmt.Fprintf(v.out, "caption: %s\n", item.Caption)
	}
}

func isMediaType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}
