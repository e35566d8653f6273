package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ImageStore is the blob-storage collaborator: it persists an uploaded image
// and returns the public URL the achievement should carry.
type ImageStore interface {
	Save(name string, r io.Reader) (string, error)
}

// LocalStore writes images under a directory served as static files.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: urlPrefix}
}

func (s *LocalStore) Save(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return s.urlPrefix + "/" + name, nil
}
