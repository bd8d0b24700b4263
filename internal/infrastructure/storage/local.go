package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalInvoiceStorage stores invoice files on the local filesystem under a
// base directory, typically a bind-mounted volume.
type LocalInvoiceStorage struct {
	baseDir string
}

// NewLocalInvoiceStorage creates a filesystem-backed invoice store,
// creating the base directory if needed
func NewLocalInvoiceStorage(baseDir string) (*LocalInvoiceStorage, error) {
	if baseDir == "" {
		return nil, errors.New("storage base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalInvoiceStorage{baseDir: baseDir}, nil
}

// resolve maps a storage key to a filesystem path, rejecting traversal
func (s *LocalInvoiceStorage) resolve(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

// Save writes the object under the given key
func (s *LocalInvoiceStorage) Save(_ context.Context, key string, _ string, r io.Reader) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create storage subdirectory: %w", err)
	}

	// Write to a temp file first so a failed upload never leaves a
	// half-written invoice behind
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write invoice file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close invoice file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Open returns a reader for the object and its content type
func (s *LocalInvoiceStorage) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", fmt.Errorf("failed to open invoice file: %w", err)
	}
	return f, ContentTypeForKey(key), nil
}

// Delete removes the object; missing objects are ignored
func (s *LocalInvoiceStorage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete invoice file: %w", err)
	}
	return nil
}

// Exists reports whether the object is present
func (s *LocalInvoiceStorage) Exists(_ context.Context, key string) (bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ InvoiceStorage = (*LocalInvoiceStorage)(nil)
