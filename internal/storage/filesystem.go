// Package storage caches generated artefacts such as certificate QR codes
// under a single directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var errNoStore = errors.New("storage: no store configured")

// FileStore reads and writes slash-separated keys below a root directory.
// All access goes through an os.Root, so keys cannot leave it.
type FileStore struct {
	root *os.Root
}

// NewFileStore creates basePath when needed and opens it as the store root.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", basePath, err)
	}
	root, err := os.OpenRoot(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", basePath, err)
	}
	return &FileStore{root: root}, nil
}

// BasePath returns the root directory.
func (s *FileStore) BasePath() string {
	if s == nil || s.root == nil {
		return ""
	}
	return s.root.Name()
}

// Write stores data at key, replacing any previous content, and returns the
// cleaned key.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil || s.root == nil {
		return "", errNoStore
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if err := s.mkdirs(path.Dir(clean)); err != nil {
		return "", err
	}
	f, err := s.root.OpenFile(filepath.FromSlash(clean), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create %s: %w", clean, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("storage: write %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: close %s: %w", clean, err)
	}
	return clean, nil
}

// Read returns the content at key. A missing key yields an error matching
// fs.ErrNotExist.
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.root == nil {
		return nil, errNoStore
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	f, err := s.root.Open(filepath.FromSlash(clean))
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", clean, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", clean, err)
	}
	return data, nil
}

// Close releases the root directory handle.
func (s *FileStore) Close() error {
	if s == nil || s.root == nil {
		return nil
	}
	return s.root.Close()
}

// mkdirs creates every directory of dir below the root.
func (s *FileStore) mkdirs(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	var built string
	for _, part := range strings.Split(dir, "/") {
		built = path.Join(built, part)
		err := s.root.Mkdir(filepath.FromSlash(built), 0o755)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("storage: mkdir %s: %w", built, err)
		}
	}
	return nil
}

// sanitizeKey turns key into a clean relative slash path inside the root.
func sanitizeKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	clean := path.Clean(key)
	if clean == "." || !fs.ValidPath(clean) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return clean, nil
}
