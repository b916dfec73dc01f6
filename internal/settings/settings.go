// Package settings persists the capture enable/disable gate and answers
// status queries from the control surface.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// state is the on-disk shape of the settings file.
type state struct {
	Enabled bool `json:"enabled"`
}

// Store holds the persisted enabled flag. Toggling writes through to disk
// synchronously before returning.
type Store struct {
	mu      sync.Mutex
	path    string
	enabled bool
}

// Load reads the settings file at path. A missing file means capture is
// enabled; the file appears on first toggle.
func Load(path string) (*Store, error) {
	store := &Store{path: path, enabled: true}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
	}
	store.enabled = s.Enabled
	return store, nil
}

// Enabled reports whether capture relay is enabled. Checked before every
// relay invocation.
func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled toggles the gate and persists it immediately.
func (s *Store) SetEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.enabled
	s.enabled = enabled

	if err := s.persistLocked(); err != nil {
		s.enabled = previous
		return err
	}
	return nil
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(state{Enabled: s.enabled}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
