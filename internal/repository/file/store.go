// Package file keeps every collection in its own JSON file under
// <dir>/<owner>/<collection>.json.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/repository"
)

// Store is a repository.BlobStore on the local filesystem.
type Store struct {
	dir string
}

// NewStore creates the data directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(owner string, c domain.Collection) (string, error) {
	if !repository.ValidOwner(owner) {
		return "", fmt.Errorf("%w: %q", repository.ErrInvalidOwner, owner)
	}
	return filepath.Join(s.dir, owner, string(c)+".json"), nil
}

// Load reads a collection file.
func (s *Store) Load(ctx context.Context, owner string, c domain.Collection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(owner, c)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Save replaces a collection file atomically.
func (s *Store) Save(ctx context.Context, owner string, c domain.Collection, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(owner, c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating owner dir: %w", err)
	}
	return writeAtomic(path, blob)
}

// writeAtomic writes through a temp file in the same directory, fsyncs it and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".collection-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
