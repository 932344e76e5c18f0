// Package storage persists uploaded document files on the local filesystem.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store saves and retrieves uploaded document files.
type Store interface {
	// Save writes the upload to disk and returns the stored path.
	Save(filename string, r io.Reader) (string, error)

	// Open opens a previously stored file for reading.
	Open(path string) (io.ReadCloser, error)

	// Delete removes a stored file. Missing files are not an error.
	Delete(path string) error
}

type filesystemStore struct {
	baseDir string
}

// NewFilesystemStore creates a store rooted at baseDir, creating the
// directory if needed.
func NewFilesystemStore(baseDir string) (Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &filesystemStore{baseDir: baseDir}, nil
}

var _ Store = (*filesystemStore)(nil)

func (s *filesystemStore) Save(filename string, r io.Reader) (string, error) {
	// Prefix with a UUID so colliding upload names never overwrite each
	// other.
	name := uuid.New().String() + "_" + sanitizeFilename(filename)
	path := filepath.Join(s.baseDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}

	return path, nil
}

func (s *filesystemStore) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *filesystemStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// sanitizeFilename strips path components and characters that are unsafe in
// a filename, keeping the extension intact.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
