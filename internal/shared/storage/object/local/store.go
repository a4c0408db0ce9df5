package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"createkit-backend/internal/shared/storage/object"
)

// Store keeps media on the local filesystem. The API serves baseDir
// statically so URLs resolve in development.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local store rooted at baseDir, served under baseURL.
func New(baseDir, baseURL string) *Store {
	return &Store{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (object.Object, error) {
	key, err := object.NewKey(ownerID, fileName)
	if err != nil {
		return object.Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}

	mimeType, body, err := object.Sniff(r)
	if err != nil {
		return object.Object{}, err
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return object.Object{}, fmt.Errorf("create file: %w", err)
	}
	size, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(fullPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return object.Object{}, fmt.Errorf("write file: %w", copyErr)
	}

	return object.Object{Key: key, SizeBytes: size, MimeType: mimeType}, nil
}

func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash(storageKey))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid storage key")
	}
	return os.Open(filepath.Join(s.baseDir, clean))
}

func (s *Store) URL(storageKey string) string {
	return s.baseURL + "/" + strings.TrimLeft(storageKey, "/")
}

var _ object.ObjectStore = (*Store)(nil)
