// Package imagestore persists product images under randomly generated
// filenames, either on the local filesystem or in AWS S3.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists and serves product image files.
type Store interface {
	// Save writes the image under the given filename.
	Save(ctx context.Context, filename string, r io.Reader) error

	// Open returns a reader for a stored image. Returns ErrNotExist when
	// the file is missing.
	Open(ctx context.Context, filename string) (io.ReadCloser, error)

	// Remove deletes a stored image.
	Remove(ctx context.Context, filename string) error
}

// ErrNotExist is returned by Open when the requested image is not stored.
var ErrNotExist = fmt.Errorf("image does not exist")

// allowedExtensions lists the accepted upload file types.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// AllowedExtension reports whether the file's extension is an accepted
// image type.
func AllowedExtension(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// RandomFilename generates a unique filename preserving the original's
// extension, lowercased.
func RandomFilename(original string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(original))
}

// sanitize rejects filenames that could escape the storage root.
func sanitize(filename string) (string, error) {
	base := filepath.Base(filename)
	if base != filename || base == "." || base == ".." || strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("invalid image filename: %q", filename)
	}
	return base, nil
}
