package media

import (
	"context"
	"errors"
	"io"
)

// ErrEffectUnsupported is returned by backends that can store images but
// cannot transform them.
var ErrEffectUnsupported = errors.New("media: image effects not supported by this backend")

// ErrNoURL means the backend accepted an upload but returned no URL.
var ErrNoURL = errors.New("media: upload returned no url")

// Store hosts images and applies CDN-side effects. Every method returns a
// permanent public URL.
type Store interface {
	// UploadURL re-hosts an image fetched from sourceURL.
	UploadURL(ctx context.Context, ownerID, sourceURL string) (string, error)
	// RemoveBackground uploads the image with the background stripped.
	RemoveBackground(ctx context.Context, ownerID, fileName string, r io.Reader) (string, error)
	// RemoveObject uploads the image and returns a delivery URL with object erased.
	RemoveObject(ctx context.Context, ownerID, fileName string, r io.Reader, object string) (string, error)
}
