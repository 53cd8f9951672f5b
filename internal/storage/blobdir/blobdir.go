// Package blobdir is the binary object store behind image uploads: files
// land in a local directory served as static content (or a mounted volume
// fronted by a CDN), and callers get back a public URL.
package blobdir

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// MaxSize is the upload size limit.
const MaxSize = 4 << 20 // 4 MiB

// Upload validation errors.
var (
	ErrEmptyFile   = errors.New("no file provided")
	ErrTooLarge    = errors.New("file too large, max 4MB")
	ErrBadType     = errors.New("invalid file type, use JPEG, PNG, WebP, or GIF")
	ErrBadFilename = errors.New("invalid file name")
)

// allowedTypes maps accepted content types to their canonical extension.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Store writes uploaded images under Dir and reports their URL under
// BaseURL.
type Store struct {
	dir     string
	baseURL string
}

// New creates the store, ensuring the directory exists.
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &Store{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save validates and stores one uploaded image, returning its public URL.
// The stored name is unique per upload; the original name contributes only
// a sanitized suffix for operator readability.
func (s *Store) Save(_ context.Context, name, contentType string, size int64, r io.Reader) (string, error) {
	if size <= 0 {
		return "", ErrEmptyFile
	}
	if size > MaxSize {
		return "", ErrTooLarge
	}
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", ErrBadType
	}

	base := sanitizeName(name)
	if base == "" {
		base = "image"
	}
	filename := uuid.New().String() + "-" + base + ext

	f, err := os.OpenFile(filepath.Join(s.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create file")
	}
	defer f.Close()

	// LimitReader guards against a size header smaller than the stream.
	if _, err := io.Copy(f, io.LimitReader(r, MaxSize)); err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, "write file")
	}

	return s.baseURL + "/" + filename, nil
}

// sanitizeName strips path components and keeps a short portable stem.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
