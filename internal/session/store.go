// Package session persists the client's login state: the bearer token plus
// the role and username returned at login.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/me/audictl/internal/config"
	"github.com/me/audictl/pkg/model"
)

// Fixed keys under which the session fields are persisted.
const (
	KeyToken    = "token"
	KeyRole     = "role"
	KeyUsername = "username"
)

// Store holds the single client session. Save replaces all three fields at
// once, Clear removes them, Load returns whatever is present. There is no
// expiry: a token stays until Clear, and the server remains the authority
// on whether it is still valid.
type Store interface {
	Load(ctx context.Context) (model.Session, error)
	Save(ctx context.Context, sess model.Session) error
	Clear(ctx context.Context) error
}

// TokenSource adapts a Store to the function the API clients call before
// each request. Load errors yield no token.
func TokenSource(st Store, logger *slog.Logger) func(context.Context) string {
	return func(ctx context.Context) string {
		sess, err := st.Load(ctx)
		if err != nil {
			logger.Warn("session unreadable, sending request without credential", "error", err)
			return ""
		}
		return sess.Token
	}
}

// Open returns the Store selected by backend, creating parent directories
// as needed. Callers must Close stores that implement io.Closer.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	switch backend {
	case config.SessionBackendFile, "":
		return NewFileStore(path, logger), nil
	case config.SessionBackendSQLite:
		return NewSQLiteStore(path, logger)
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

// MemoryStore keeps the session in process memory. It backs tests and
// one-shot invocations that must not touch disk.
type MemoryStore struct {
	mu   sync.Mutex
	sess model.Session
}

// NewMemoryStore returns a store seeded with sess.
func NewMemoryStore(sess model.Session) *MemoryStore {
	return &MemoryStore{sess: sess}
}

func (m *MemoryStore) Load(ctx context.Context) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, nil
}

func (m *MemoryStore) Save(ctx context.Context, sess model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = model.Session{}
	return nil
}
