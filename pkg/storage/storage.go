// Package storage abstracts where uploaded media ends up.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore persists an object and returns the URL clients should use to fetch it.
type ObjectStore interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error)
	Ping(ctx context.Context) error
}

// ObjectName builds a collision-free object path such as "users/profile/<uuid>.png".
func ObjectName(prefix, ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext)
}
