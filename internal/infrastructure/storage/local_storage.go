// Package storage persists image blobs on the local filesystem. Blobs are
// write-once; deletion and garbage collection are out of scope.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStorage stores blobs as uniquely named files under one directory and
// addresses them as <baseURL>/<name>.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

// NewLocalStorage creates the blob directory if needed.
func NewLocalStorage(basePath, baseURL string, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, fmt.Errorf("blob storage path is required")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		log:      logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

// SaveImage writes data under a fresh unique name and returns the public
// path (e.g. /uploads/img_<uuid>.png).
func (l *LocalStorage) SaveImage(data []byte, ext string) (string, error) {
	if ext == "" {
		ext = ".png"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := "img_" + uuid.NewString() + ext

	fullPath := filepath.Join(l.basePath, name)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	l.log.Debug().
		Str("name", name).
		Int("bytes", len(data)).
		Msg("image blob stored")

	return l.baseURL + "/" + name, nil
}

// Read returns the bytes of a stored blob by name.
func (l *LocalStorage) Read(name string) ([]byte, error) {
	// Reject anything that could escape the blob directory.
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid blob name: %s", name)
	}
	return os.ReadFile(filepath.Join(l.basePath, name))
}

// Dir returns the blob directory for static file serving.
func (l *LocalStorage) Dir() string {
	return l.basePath
}

// BaseURL returns the public URL prefix blobs are addressed under.
func (l *LocalStorage) BaseURL() string {
	return l.baseURL
}
