// Package filestore stores uploaded document files. Drivers: local disk and
// S3-compatible object storage.
package filestore

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Delete when the object does not exist.
var ErrNotFound = errors.New("filestore: object not found")

type FileStore interface {
	// Put stores r under key and returns the public URL of the object.
	Put(ctx context.Context, key string, r io.ReadSeeker, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// KeyFromURL recovers an object key from a public URL by locating prefix
// ("services/") in its path. Used for rows stored without a key.
func KeyFromURL(rawURL, prefix string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p, err := url.PathUnescape(u.EscapedPath())
	if err != nil {
		p = u.Path
	}
	idx := strings.Index(p, prefix)
	if idx < 0 {
		return ""
	}
	return p[idx:]
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
