package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"path"

	"github.com/haivivi/celebguess/pkg/storage"
)

// CachedSynthesizer serves clips from a FileStore and synthesizes only on a
// miss. Cache failures are logged and never fail a synthesis.
type CachedSynthesizer struct {
	Synthesizer Synthesizer
	Store       storage.FileStore

	// Key distinguishes synthesizer settings (model, voice, format) that
	// produce different audio for the same text. Synthesizers with a
	// CacheKey method supply it when Key is empty.
	Key string

	// Dir is the name prefix inside Store. Defaults to "tts".
	Dir string

	// Ext is the object name extension, which also selects the content
	// type on stores that infer it. Defaults to ".mp3".
	Ext string
}

func (c *CachedSynthesizer) key() string {
	if c.Key != "" {
		return c.Key
	}
	if k, ok := c.Synthesizer.(interface{ CacheKey() string }); ok {
		return k.CacheKey()
	}
	return ""
}

// name returns the object name for text: {dir}/{hash[:2]}/{hash}{ext}.
func (c *CachedSynthesizer) name(text string) string {
	sum := sha256.Sum256([]byte(c.key() + "\x00" + text))
	h := hex.EncodeToString(sum[:])
	dir := c.Dir
	if dir == "" {
		dir = "tts"
	}
	ext := c.Ext
	if ext == "" {
		ext = ".mp3"
	}
	return path.Join(dir, h[:2], h+ext)
}

func (c *CachedSynthesizer) Synthesize(ctx context.Context, text string) (*Clip, error) {
	name := c.name(text)
	obj, err := c.Store.Get(ctx, name)
	switch {
	case err == nil:
		slog.Debug("tts cache hit", "name", name)
		return &Clip{Data: obj.Data, MIMEType: obj.ContentType}, nil
	case !errors.Is(err, storage.ErrNotExist):
		slog.Warn("tts cache read failed", "name", name, "err", err)
	}

	clip, err := c.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Put(ctx, name, &storage.Object{Data: clip.Data, ContentType: clip.MIMEType}); err != nil {
		slog.Warn("tts cache write failed", "name", name, "err", err)
	}
	return clip, nil
}
