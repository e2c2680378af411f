// Package storage contains read access to the objects the service serves
// (sample templates and data fixtures) and a writable variant for
// S3-compatible buckets. Keys are slash separated, e.g. "templates/factura-simple.odt".
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"time"

	"odtplayground/internal/merge"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is read-only object access. Methods use context and streaming readers.
type Storage interface {
	// Get retrieves an object's content as a streaming reader alongside its info.
	// The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info without reading the content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}

// ObjectStore is a Storage that also accepts uploads.
type ObjectStore interface {
	Storage
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
}

// ContentType guesses the media type of key from its extension.
func ContentType(key string) string {
	switch ext := path.Ext(key); ext {
	case ".odt":
		return merge.MediaTypeODT
	case ".json":
		return "application/json"
	case "":
		return "application/octet-stream"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}
