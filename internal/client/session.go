// Package client implements the TaskKeeper command-line client: a small API
// wrapper, a persisted login session and an interactive shell.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// DefaultSessionFile is where the shell keeps the current token.
const DefaultSessionFile = "session.json"

// Session is the locally persisted login state.
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`

	path string
	mu   sync.Mutex
}

// NewSession returns an empty session bound to path.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// Load reads the session file. A missing file leaves the session empty.
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.Username, s.Token = "", ""
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	return nil
}

// Set stores a new login and writes it to disk.
func (s *Session) Set(username, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Username, s.Token = username, token
	return s.save()
}

// Clear forgets the token and removes the session file.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Username, s.Token = "", ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Current returns the logged-in username and token, empty when logged out.
func (s *Session) Current() (username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Username, s.Token
}

func (s *Session) save() error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
