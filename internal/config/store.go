package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store owns the runtime configuration file. It re-reads the file on every
// Reload and falls back to the last good snapshot when a reload fails, so a
// half-saved edit never stops the poller.
//
// All methods are safe for concurrent use.
type Store struct {
	path string

	mu   sync.RWMutex
	last *RuntimeConfig
}

// NewStore creates a Store for the configuration file at path. The file is
// read and validated immediately; an unreadable or invalid file is a startup
// error.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	cfg, err := s.read()
	if err != nil {
		return nil, err
	}
	s.last = cfg
	return s, nil
}

// read loads and validates the configuration file from disk.
func (s *Store) read() (*RuntimeConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", s.path, err)
	}

	var cfg RuntimeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", s.path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", s.path, err)
	}

	return &cfg, nil
}

// Reload re-reads the configuration file. On failure it logs a warning and
// returns the last good snapshot, so pause edits and selection edits are
// picked up live but a broken file never kills a cycle.
func (s *Store) Reload() *RuntimeConfig {
	cfg, err := s.read()
	if err != nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		slog.Warn("Config reload failed, keeping last good snapshot",
			slog.String("path", s.path),
			slog.Any("error", err))
		return s.last
	}

	s.mu.Lock()
	s.last = cfg
	s.mu.Unlock()
	return cfg
}

// Current returns the last good snapshot without touching the filesystem.
func (s *Store) Current() *RuntimeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Save writes cfg back to the configuration file atomically (temp file then
// rename) and adopts it as the last good snapshot.
func (s *Store) Save(cfg *RuntimeConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}

	s.mu.Lock()
	s.last = cfg
	s.mu.Unlock()
	return nil
}

// ClearSelection empties selected_batch_ids in the configuration file. It is
// called when the tracked selection no longer intersects the purchased
// catalog, so the operator starts from a clean slate on the next edit.
func (s *Store) ClearSelection() error {
	cfg, err := s.read()
	if err != nil {
		// Fall back to the in-memory snapshot; losing a concurrent manual
		// edit here is acceptable.
		s.mu.RLock()
		snapshot := *s.last
		s.mu.RUnlock()
		cfg = &snapshot
	}

	cfg.SelectedBatchIDs = nil
	return s.Save(cfg)
}
