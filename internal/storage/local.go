package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// LocalStorage writes objects to a directory on disk. It exists for
// development environments without cloud credentials.
type LocalStorage struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewLocalStorage creates a LocalStorage rooted at dir. Served URLs are
// baseURL plus the object path.
func NewLocalStorage(dir, baseURL string, logger *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &LocalStorage{root: dir, baseURL: baseURL, logger: logger}, nil
}

// Upload writes the object under the storage root.
func (s *LocalStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating object dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing object %s: %w", path, err)
	}

	s.logger.Debug("object written locally", zap.String("path", path))
	return s.baseURL + "/" + path, nil
}
