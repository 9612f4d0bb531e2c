// Package storage holds small binary objects, such as synthesized speech
// clips, on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"mime"
	"path"
	"strings"
)

// ErrNotExist is returned, wrapped, when an object is missing.
var ErrNotExist = errors.New("storage: object does not exist")

// Object is a stored blob with its media type.
type Object struct {
	Data        []byte
	ContentType string
}

// FileStore stores objects by slash-separated name relative to the store
// root. Implementations must be safe for concurrent use.
type FileStore interface {
	// Get returns ErrNotExist, wrapped, when name is missing.
	Get(ctx context.Context, name string) (*Object, error)

	// Put overwrites name atomically: readers see the old or the new
	// object, never a partial one.
	Put(ctx context.Context, name string, obj *Object) error

	// Delete is a no-op for a missing name.
	Delete(ctx context.Context, name string) error
}

var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".opus": "audio/ogg",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

// contentType guesses the media type from the name's extension. Audio types
// are fixed; the rest comes from the system's mime tables.
func contentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
