// Package credential persists the bearer token that authenticates the console
// against the Attendo API.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultTTL is how long a stored token stays usable after login.
const DefaultTTL = 7 * 24 * time.Hour

// Credential is the persisted form of a bearer token.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store holds at most one credential. A Store with an empty path keeps the
// credential in memory only. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string
	cred *Credential
	now  func() time.Time
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return &Store{now: time.Now}
}

// Open loads the credential file at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credential.Open: %w", err)
	}
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("credential.Open: decode %s: %w", path, err)
	}
	if c.Token != "" {
		s.cred = &c
	}
	return s, nil
}

// Path returns the backing file, or "" for a memory store.
func (s *Store) Path() string {
	return s.path
}

// Set stores token with an expiry ttl from now and persists it.
func (s *Store) Set(token string, ttl time.Duration) error {
	if token == "" {
		return errors.New("credential.Set: empty token")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Credential{Token: token, ExpiresAt: s.now().Add(ttl).UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path != "" {
		if err := write(s.path, c); err != nil {
			return fmt.Errorf("credential.Set: %w", err)
		}
	}
	s.cred = c
	return nil
}

// Get returns the stored token, or false when none is stored or it expired.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return "", false
	}
	return s.cred.Token, true
}

// ExpiresAt returns the expiry of the stored credential, zero when empty.
func (s *Store) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return time.Time{}
	}
	return s.cred.ExpiresAt
}

// IsActive reports whether a non-expired token is present.
func (s *Store) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked()
}

// Clear forgets the credential and removes its file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credential.Clear: %w", err)
	}
	return nil
}

func (s *Store) validLocked() bool {
	return s.cred != nil && s.cred.Token != "" && s.now().Before(s.cred.ExpiresAt)
}

// write replaces the file atomically: temp file in the same dir, then rename.
func write(path string, c *Credential) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
