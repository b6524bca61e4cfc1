package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/user/linkedin-connector/internal/entity"
	"github.com/user/linkedin-connector/internal/repository"
)

// SessionRepoImpl stores cookies as a pretty-printed JSON array on disk.
type SessionRepoImpl struct {
	path string
}

// NewSessionRepo creates a new instance of SessionRepoImpl.
func NewSessionRepo(path string) *SessionRepoImpl {
	return &SessionRepoImpl{path: path}
}

// Load reads the cookie file. A missing or blank file yields repository.ErrNoSession.
func (r *SessionRepoImpl) Load(_ context.Context) (entity.Session, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repository.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read cookies file %s: %w", r.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, repository.ErrNoSession
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse cookies file %s: %w", r.path, err)
	}
	if session.Empty() {
		return nil, repository.ErrNoSession
	}
	return session, nil
}

// Save overwrites the cookie file with the given session.
func (r *SessionRepoImpl) Save(_ context.Context, session entity.Session) error {
	if session == nil {
		session = entity.Session{}
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cookies dir: %w", err)
		}
	}
	// Replace the jar atomically.
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cookies file: %w", err)
	}
	return os.Rename(tmp, r.path)
}
