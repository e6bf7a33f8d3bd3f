package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("object not found")

// Object describes a stored blob.
type Object struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
}

// BlobStore holds uploaded résumé files. Put returns the identifier that
// records keep in resumeFileId; Get and Delete take that identifier.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, id string) (io.ReadCloser, *Object, error)
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores that can report their own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

const maxNameLen = 100

// ObjectName returns a collision-resistant name for an upload, keeping a
// sanitized form of the original filename as a suffix.
func ObjectName(filename string) string {
	return uuid.NewString() + "-" + SanitizeName(filename)
}

// SanitizeName reduces a client-supplied filename to a safe base name made of
// letters, digits, dot, dash and underscore.
func SanitizeName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if len(out) > maxNameLen {
		out = out[len(out)-maxNameLen:]
	}
	if out == "" {
		return "file"
	}
	return out
}
