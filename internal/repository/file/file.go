// Package file implements repository.DocumentStore as one JSON file per document
// inside a data directory (upload_history.json, threads.json).
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sakif/imageboard/internal/repository"
)

var _ repository.DocumentStore = (*Store)(nil)

type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("file: creating data directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// path resolves a document name. Names are plain file names; anything that
// would escape the data directory is rejected.
func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("file: invalid document name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *Store) Read(_ context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file: %s: %w", path, repository.ErrNoDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("file: reading %s: %w", path, err)
	}
	return data, nil
}

// Write truncates and rewrites the document file.
func (s *Store) Write(_ context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("file: writing %s: %w", path, err)
	}
	return nil
}
