package client

import (
	"encoding/json"
	"fmt"
	"os"

	"photofolio/internal/models"
)

// Session is the client-side authentication state: the bearer token and the
// user it belongs to.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Valid reports whether the session carries a token.
func (s Session) Valid() bool {
	return s.Token != ""
}

// SessionStore persists a session across client runs. Its lifecycle is load
// on start, save on change, clear on logout.
type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileSessionStore keeps the session in a JSON file.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore creates a store backed by the given file path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Load reads the stored session. A missing file yields an empty session.
func (s *FileSessionStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return sess, nil
}

// Save writes the session to disk, readable by the owner only.
func (s *FileSessionStore) Save(sess Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the stored session.
func (s *FileSessionStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
