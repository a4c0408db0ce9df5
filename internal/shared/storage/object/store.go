package object

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"createkit-backend/internal/shared/util"
)

// CacheControl is sent with stored media. Keys are never reused.
const CacheControl = "public, max-age=31536000, immutable"

// Object describes a stored blob.
type Object struct {
	Key       string
	SizeBytes int64
	MimeType  string
}

// ObjectStore saves media blobs and resolves their public URLs.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	URL(storageKey string) string
}

// NewKey builds "<owner key>/<uuid>_<file name>" for ownerID.
func NewKey(ownerID, fileName string) (string, error) {
	name, err := util.SafeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("file name: %w", err)
	}
	return path.Join(util.OwnerKey(ownerID), uuid.NewString()+"_"+name), nil
}

// Sniff detects the content type of r from its first 512 bytes and returns
// a reader that replays them.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read head: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}
