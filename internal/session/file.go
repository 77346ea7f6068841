package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/audictl/pkg/model"
)

// FileStore keeps the session as a JSON document, readable only by the
// owner. Writes go through a temporary file and a rename so a reader never
// sees a half-written session.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With("component", "session", "backend", "file"),
	}
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the session. A missing file is an empty session.
func (f *FileStore) Load(ctx context.Context) (model.Session, error) {
	var sess model.Session
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return sess, nil
	}
	if err != nil {
		return sess, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &sess); err != nil {
		return model.Session{}, fmt.Errorf("parse session %s: %w", f.path, err)
	}
	return sess, nil
}

// Save replaces the stored session.
func (f *FileStore) Save(ctx context.Context, sess model.Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}

	f.logger.Debug("session saved", "path", f.path, "username", sess.Username)
	return nil
}

// Clear deletes the session file. Clearing an absent session is not an error.
func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	f.logger.Debug("session cleared", "path", f.path)
	return nil
}
