package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
)

var (
	_ Synthesizer = (*OpenAISynthesizer)(nil)
	_ Transcriber = (*OpenAITranscriber)(nil)
)

// Defaults for the OpenAI audio API.
const (
	DefaultTTSModel  = openai.SpeechModelTTS1
	DefaultTTSVoice  = "alloy"
	DefaultTTSFormat = "mp3"
	DefaultASRModel  = openai.AudioModelWhisper1
)

// OpenAISynthesizer synthesizes speech with the OpenAI speech endpoint.
type OpenAISynthesizer struct {
	Client *openai.Client

	// Zero values select DefaultTTSModel, DefaultTTSVoice and
	// DefaultTTSFormat.
	Model  string
	Voice  string
	Format string

	// Instructions steer the delivery on models that support it.
	Instructions string
	Speed        float64
}

func (s *OpenAISynthesizer) model() string {
	if s.Model != "" {
		return s.Model
	}
	return DefaultTTSModel
}

func (s *OpenAISynthesizer) voice() string {
	if s.Voice != "" {
		return s.Voice
	}
	return DefaultTTSVoice
}

func (s *OpenAISynthesizer) format() string {
	if s.Format != "" {
		return s.Format
	}
	return DefaultTTSFormat
}

// CacheKey identifies the clips this synthesizer produces for the same text.
func (s *OpenAISynthesizer) CacheKey() string {
	return strings.Join([]string{"openai", s.model(), s.voice(), s.format(), s.Instructions, fmt.Sprint(s.Speed)}, "|")
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (*Clip, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	params := openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(s.model()),
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice()),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat(s.format()),
	}
	if s.Instructions != "" {
		params.Instructions = param.NewOpt(s.Instructions)
	}
	if s.Speed > 0 {
		params.Speed = param.NewOpt(s.Speed)
	}
	resp, err := s.Client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech: read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}
	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = formatMIME(s.format())
	}
	slog.Debug("speech synthesized", "text", text, "bytes", len(data), "mime", mimeType)
	return &Clip{Data: data, MIMEType: mimeType}, nil
}

func formatMIME(format string) string {
	switch format {
	case "mp3":
		return "audio/mpeg"
	case "opus":
		return "audio/ogg"
	case "wav":
		return "audio/wav"
	case "pcm":
		return "audio/pcm"
	default:
		return "audio/" + format
	}
}

// OpenAITranscriber transcribes utterances with the OpenAI transcription
// endpoint.
type OpenAITranscriber struct {
	Client *openai.Client

	// Model defaults to DefaultASRModel.
	Model string
	// Language is an ISO-639-1 hint, e.g. "en".
	Language string
	// Prompt biases recognition, e.g. towards "yes", "no" and names.
	Prompt string
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", fmt.Errorf("speech: read utterance: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyAudio
	}
	model := t.Model
	if model == "" {
		model = DefaultASRModel
	}
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(data), "utterance"+extension(mimeType), mimeType),
		Model: openai.AudioModel(model),
	}
	if t.Language != "" {
		params.Language = param.NewOpt(t.Language)
	}
	if t.Prompt != "" {
		params.Prompt = param.NewOpt(t.Prompt)
	}
	resp, err := t.Client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("speech: transcribe: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	slog.Debug("speech transcribed", "bytes", len(data), "text", text)
	return text, nil
}
