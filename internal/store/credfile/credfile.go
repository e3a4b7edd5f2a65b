// Package credfile persists the current session to a JSON file.
package credfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/DauSyQuan/marin-portal/internal/core/session"
)

// credFile is the root JSON structure stored on disk.
type credFile struct {
	Token     string        `json:"token,omitempty"`
	User      *session.User `json:"user,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store implements session.Store using a JSON file for persistence.
//
// Token and user are written as one record via temp-file-and-rename, so a
// crash between mutations can never leave a half-populated session behind.
// A corrupt or partial record rehydrates as the anonymous session.
type Store struct {
	path string
	log  zerolog.Logger
	mu   sync.RWMutex
}

// New creates a credential store backed by the file at path.
func New(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Get returns the persisted session, or the anonymous session when the
// file is missing, unreadable, or violates the pairing invariant.
func (s *Store) Get(ctx context.Context) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(), nil
}

// Set replaces the persisted session.
func (s *Store) Set(ctx context.Context, sess session.Session) error {
	if !sess.IsAuthenticated() || !sess.Valid() {
		return session.ErrPartialSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(credFile{
		Token:     sess.Token,
		User:      sess.User,
		UpdatedAt: time.Now(),
	})
}

// Clear drops the persisted session. Clearing when no file exists is a
// no-op.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials file: %w", err)
	}

	return nil
}

// load reads the credentials file from disk. Any failure degrades to the
// anonymous session: a corrupt local record must never crash the client.
func (s *Store) load() session.Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("credentials file unreadable, treating as logged out")
		}
		return session.Anonymous()
	}

	if len(data) == 0 {
		return session.Anonymous()
	}

	var file credFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("credentials file corrupt, treating as logged out")
		return session.Anonymous()
	}

	sess := session.Session{Token: file.Token, User: file.User}
	if !sess.Valid() || !sess.IsAuthenticated() {
		s.log.Warn().Str("path", s.path).Msg("credentials file incomplete, treating as logged out")
		return session.Anonymous()
	}

	return sess
}

// save writes the credentials file to disk atomically.
// Uses write-to-temp-then-rename to prevent corruption from interrupted writes.
func (s *Store) save(file credFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
