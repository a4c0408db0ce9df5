package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"createkit-backend/internal/shared/storage/object"
)

// ObjectStore hosts images on a plain object store (local disk or S3).
// It cannot apply effects.
type ObjectStore struct {
	store      object.ObjectStore
	httpClient *http.Client
	maxBytes   int64
}

// NewObjectStore wraps store. Remote images larger than maxBytes are rejected.
func NewObjectStore(store object.ObjectStore, maxBytes int64) *ObjectStore {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &ObjectStore{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxBytes:   maxBytes,
	}
}

func (s *ObjectStore) UploadURL(ctx context.Context, ownerID, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch source image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch source image: status %d", resp.StatusCode)
	}
	return s.save(ctx, ownerID, remoteFileName(sourceURL), io.LimitReader(resp.Body, s.maxBytes))
}

func (s *ObjectStore) save(ctx context.Context, ownerID, fileName string, r io.Reader) (string, error) {
	obj, err := s.store.Save(ctx, ownerID, fileName, r)
	if err != nil {
		return "", err
	}
	if obj.SizeBytes == 0 {
		return "", ErrNoURL
	}
	return s.store.URL(obj.Key), nil
}

func (s *ObjectStore) RemoveBackground(ctx context.Context, ownerID, fileName string, r io.Reader) (string, error) {
	return "", ErrEffectUnsupported
}

func (s *ObjectStore) RemoveObject(ctx context.Context, ownerID, fileName string, r io.Reader, object string) (string, error) {
	return "", ErrEffectUnsupported
}

func remoteFileName(raw string) string {
	name := "image.png"
	if u, err := url.Parse(raw); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	return strings.ReplaceAll(name, "..", "_")
}

var _ Store = (*ObjectStore)(nil)
