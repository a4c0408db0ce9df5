package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"unicode"
)

const (
	ownerKeyLen     = 32
	maxFileNameLen  = 100
	defaultFileName = "upload"
)

var ErrInvalidFileName = errors.New("invalid file name")

// OwnerKey maps an owner id to a stable, path-safe directory name. Raw ids
// from the identity provider never reach storage paths.
func OwnerKey(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])[:ownerKeyLen]
}

// SafeFileName returns a single path segment for name. Separators and
// whitespace become underscores, control characters are dropped and long
// names are cut while keeping the extension. Traversal is rejected.
func SafeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			b.WriteByte('_')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if strings.Trim(s, "_.") == "" {
		if name == "" {
			return defaultFileName, nil
		}
		return "", ErrInvalidFileName
	}
	if runes := []rune(s); len(runes) > maxFileNameLen {
		ext := path.Ext(s)
		if len([]rune(ext)) >= maxFileNameLen {
			ext = ""
		}
		s = string(runes[:maxFileNameLen-len([]rune(ext))]) + ext
	}
	return s, nil
}
