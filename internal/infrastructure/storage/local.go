package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/you/nirogsvc/domain"
)

const localScheme = "file://"

// LocalStore keeps blobs under a directory on the local filesystem.
// Refs are file:// URIs of the absolute object path.
type LocalStore struct {
	path string
}

// NewLocalStore initializes a local store, creating the root if necessary.
func NewLocalStore(path string) (*LocalStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to make path %q absolute: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, fmt.Errorf("storage: failed to create path %q: %w", abs, err)
	}
	return &LocalStore{path: abs}, nil
}

func (s *LocalStore) pathForName(name string) (string, error) {
	full := filepath.Join(s.path, strings.TrimPrefix(name, "/"))
	if full != s.path && !strings.HasPrefix(full, s.path+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: invalid object name %q", name)
	}
	return full, nil
}

// Put implements domain.BlobStore
func (s *LocalStore) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := s.pathForName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o700); err != nil {
		return "", fmt.Errorf("storage: create directory: %w", err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("storage: create object: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("storage: write object: %w", err)
	}
	if err := f.Sync(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("storage: sync object: %w", err)
	}
	return localScheme + fullPath, nil
}

// Delete implements domain.BlobStore
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if !strings.HasPrefix(ref, localScheme) {
		return fmt.Errorf("storage: not a local ref %q", ref)
	}
	fullPath := strings.TrimPrefix(ref, localScheme)
	if !strings.HasPrefix(fullPath, s.path+string(filepath.Separator)) {
		return fmt.Errorf("storage: ref %q is outside the store", ref)
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrBlobNotFound
		}
		return err
	}
	return nil
}
