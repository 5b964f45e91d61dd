package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// localStore implements StateStore on the local filesystem, one file per key
type localStore struct {
	basePath string
}

// NewLocalStore creates a new localStore rooted at basePath
func NewLocalStore(basePath string) (*localStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &localStore{
		basePath: basePath,
	}, nil
}

// generatePath maps a key to a file path.
// The namespace before ":" becomes a directory; path separators in keys are neutralized.
func (s *localStore) generatePath(key string) string {
	namespace, name, found := strings.Cut(key, ":")
	if !found {
		namespace, name = "_", key
	}
	clean := func(part string) string {
		part = strings.ReplaceAll(part, "/", "_")
		part = strings.ReplaceAll(part, "\\", "_")
		part = strings.ReplaceAll(part, "..", "_")
		return part
	}
	return filepath.Join(s.basePath, clean(namespace), clean(name))
}

// Get reads the file of key
func (s *localStore) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.generatePath(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes the file of key through a temp file and rename
func (s *localStore) Set(ctx context.Context, key, value string) error {
	path := s.generatePath(key)

	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store state %q: %w", key, err)
	}
	return nil
}

// Delete removes the file of key
func (s *localStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.generatePath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}
