// Package storage keeps the bytes of uploaded media. Records in the
// database only hold the object key and the public URL a backend returns.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Backend stores and removes objects by key.
type Backend interface {
	// Put writes body under key and returns the URL clients fetch it from.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Remove deletes the object. Removing a missing object is not an error.
	Remove(ctx context.Context, key string) error
}

// ObjectKey builds a collision-free key that keeps the original extension,
// e.g. "file-<uuid>.png".
func ObjectKey(originalName string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(originalName, "\\", "/")))
	if len(ext) > 10 || strings.ContainsAny(ext, " /?#%") {
		ext = ""
	}
	return fmt.Sprintf("file-%s%s", uuid.NewString(), ext)
}
