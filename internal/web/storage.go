package web

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageStorage holds the raw bill images uploaded through the capture
// screen, so the preview can be served back after the parse.
type ImageStorage interface {
	// Save saves an image and returns the path/filename
	Save(filename string, data []byte) (string, error)

	// Get retrieves an image by path
	Get(path string) ([]byte, error)

	// Delete removes an image
	Delete(path string) error
}

// LocalImageStorage implements ImageStorage on the local filesystem.
type LocalImageStorage struct {
	basePath string
}

// NewLocalImageStorage creates a LocalImageStorage rooted at basePath,
// creating the directory if needed.
func NewLocalImageStorage(basePath string) (*LocalImageStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalImageStorage{
		basePath: basePath,
	}, nil
}

// Save writes an image under the base path.
func (l *LocalImageStorage) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(l.basePath, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return filename, nil
}

// Get reads an image back.
func (l *LocalImageStorage) Get(path string) ([]byte, error) {
	fullPath := filepath.Join(l.basePath, path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// Delete removes an image.
func (l *LocalImageStorage) Delete(path string) error {
	fullPath := filepath.Join(l.basePath, path)
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
