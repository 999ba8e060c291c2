package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/fredcamaral/carouselkit/internal/domain/ports"
)

// FileStore keeps every key in one JSON object on disk. Writes go to a
// temp file that is renamed over the original.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	fs     ports.FileSystem
	logger ports.Logger
	data   map[string]string
	loaded bool
}

// NewFileStore creates a store backed by path. Nothing is read until the
// first access.
func NewFileStore(path string, fsys ports.FileSystem, logger ports.Logger) *FileStore {
	if fsys == nil {
		fsys = ports.NewRealFileSystem()
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &FileStore{
		path:   path,
		fs:     fsys,
		logger: logger,
		data:   make(map[string]string),
	}
}

// Get returns the value stored under key
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return "", false, err
	}
	value, ok := s.data[key]
	return value, ok, nil
}

// Set stores value under key and flushes the file
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	previous, existed := s.data[key]
	s.data[key] = value
	if err := s.save(); err != nil {
		if existed {
			s.data[key] = previous
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// load reads the file once. A missing file is an empty store and a corrupt
// one is logged and replaced on the next write.
// Must be called with lock held
func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}

	raw, err := s.fs.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading store %s: %w", s.path, err)
	default:
		var data map[string]string
		if err := json.Unmarshal(raw, &data); err != nil {
			s.logger.Warn("store file is corrupt, starting empty", "path", s.path, "error", err)
		} else if data != nil {
			s.data = data
		}
	}

	s.loaded = true
	return nil
}

// save writes the whole map atomically
// Must be called with lock held
func (s *FileStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := s.fs.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}
