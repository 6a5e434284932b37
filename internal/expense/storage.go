package expense

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageStore defines the interface for archiving receipt images
type ImageStore interface {
	// Save stores data under name
	Save(name string, data []byte) error

	// Get retrieves the data stored under name
	Get(name string) ([]byte, error)

	// Delete removes the data stored under name
	Delete(name string) error
}

// LocalImageStore implements the ImageStore interface using the local filesystem
type LocalImageStore struct {
	basePath string
}

// NewLocalImageStore creates a new LocalImageStore instance
func NewLocalImageStore(basePath string) (*LocalImageStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalImageStore{
		basePath: basePath,
	}, nil
}

// path resolves name inside the base directory; names never address subdirectories
func (l *LocalImageStore) path(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || base == "." || base == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name: %q", name)
	}
	return filepath.Join(l.basePath, base), nil
}

// Save writes a file to local storage
func (l *LocalImageStore) Save(name string, data []byte) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// Get reads a file from local storage
func (l *LocalImageStore) Get(name string) ([]byte, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete removes a file from local storage
func (l *LocalImageStore) Delete(name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// receiptFileName names an archived receipt after its ID and content type
func receiptFileName(id, contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext := ".bin"
	switch ct {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	case "image/heic":
		ext = ".heic"
	case "image/heif":
		ext = ".heif"
	case "application/pdf":
		ext = ".pdf"
	}
	return id + ext
}
