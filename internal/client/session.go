package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotLoggedIn is returned by views that need an authenticated session.
var ErrNotLoggedIn = errors.New("not logged in: run `social-cli login` first")

// Session is the client's authentication state. It is passed explicitly to
// every view and persisted between CLI invocations by a SessionStore.
type Session struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token,omitempty"`
	User    *User  `yaml:"user,omitempty"`
}

// LoggedIn reports whether the session holds both a token and a user.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Headers returns the authorization header for the session token.
func (s *Session) Headers() map[string]string {
	if s == nil || s.Token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + s.Token}
}

// Clear drops the token and user.
func (s *Session) Clear() {
	s.Token = ""
	s.User = nil
}

// SessionStore persists a Session as a YAML file readable only by its owner.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is <user config dir>/simple-social/session.yaml.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "simple-social", "session.yaml"), nil
}

func (s *SessionStore) Path() string {
	return s.path
}

// Load reads the stored session. A missing file yields an empty session.
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	return &sess, nil
}

func (s *SessionStore) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Remove deletes the stored session file, if any.
func (s *SessionStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
