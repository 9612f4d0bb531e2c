// Package speech converts between text and audio for the voice front end.
//
// A Synthesizer turns a line of text into an audio Clip; a Transcriber turns
// one recorded utterance into text. OpenAISynthesizer and OpenAITranscriber
// call the OpenAI audio API, and CachedSynthesizer keeps synthesized clips in
// a storage.FileStore so that fixed lines are synthesized once.
package speech

import (
	"context"
	"errors"
	"io"
)

// ErrEmptyText is returned when asked to synthesize blank text.
var ErrEmptyText = errors.New("speech: empty text")

// ErrEmptyAudio is returned when asked to transcribe an empty utterance.
var ErrEmptyAudio = errors.New("speech: empty audio")

// Clip is a complete encoded audio clip.
type Clip struct {
	Data     []byte
	MIMEType string
}

// Synthesizer is a text-to-speech engine.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Clip, error)
}

// SynthesizeFunc adapts a function to the Synthesizer interface.
type SynthesizeFunc func(ctx context.Context, text string) (*Clip, error)

func (f SynthesizeFunc) Synthesize(ctx context.Context, text string) (*Clip, error) {
	return f(ctx, text)
}

// Transcriber is a speech-to-text engine. mimeType describes the encoding of
// audio, e.g. "audio/webm".
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, mimeType string) (string, error)
}

// TranscribeFunc adapts a function to the Transcriber interface.
type TranscribeFunc func(ctx context.Context, audio io.Reader, mimeType string) (string, error)

func (f TranscribeFunc) Transcribe(ctx context.Context, audio io.Reader, mimeType string) (string, error) {
	return f(ctx, audio, mimeType)
}

// extension maps an audio MIME type to a file extension.
func extension(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	case "audio/flac":
		return ".flac"
	case "audio/aac":
		return ".aac"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	case "audio/pcm":
		return ".pcm"
	}
	return ".bin"
}
