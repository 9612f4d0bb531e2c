package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haivivi/celebguess/cmd/celebguess/internal/config"
	"github.com/haivivi/celebguess/pkg/archive"
	"github.com/haivivi/celebguess/pkg/cli"
	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/kv"
	"github.com/haivivi/celebguess/pkg/speech"
	"github.com/haivivi/celebguess/pkg/storage"
)

// openArchive opens the on-disk game archive. The caller must call the
// returned close function.
func openArchive(cfg *config.Config) (*archive.Archive, func() error, error) {
	if err := cli.EnsureDir(cfg.Archive.Dir); err != nil {
		return nil, nil, fmt.Errorf("create archive dir: %w", err)
	}
	store, err := kv.NewBadger(kv.BadgerOptions{Dir: cfg.Archive.Dir})
	if err != nil {
		return nil, nil, err
	}
	return archive.New(store), store.Close, nil
}

// archiveHook returns a function that saves each outcome to a.
func archiveHook(a *archive.Archive, mode, model, celebrity string) func(context.Context, *game.Outcome) {
	return func(ctx context.Context, out *game.Outcome) {
		id, err := a.Save(context.WithoutCancel(ctx), archive.NewRecord(out, mode, model, celebrity))
		if err != nil {
			slog.Warn("archive game failed", "err", err)
			return
		}
		slog.Info("game archived", "id", id)
	}
}

// clipStore returns where synthesized clips are cached.
func clipStore(cfg *config.Config) (storage.FileStore, error) {
	if cfg.Voice.Clips.S3.Bucket != "" {
		return storage.NewS3FromConfig(cfg.Voice.Clips.S3)
	}
	return storage.NewLocal(cfg.Voice.Clips.Dir)
}

// speechEngines builds the synthesizer and transcriber enabled in cfg.
// Either may be nil.
func speechEngines(cfg *config.Config) (speech.Synthesizer, speech.Transcriber, error) {
	if !cfg.Voice.TTS && !cfg.Voice.ASR {
		return nil, nil, nil
	}
	client, err := cfg.OpenAIClient()
	if err != nil {
		return nil, nil, err
	}

	var synth speech.Synthesizer
	if cfg.Voice.TTS {
		tts := &speech.OpenAISynthesizer{
			Client: client,
			Model:  cfg.Voice.TTSModel,
			Voice:  cfg.Voice.TTSVoice,
		}
		store, err := clipStore(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("clip cache: %w", err)
		}
		synth = &speech.CachedSynthesizer{Synthesizer: tts, Store: store}
	}

	var asr speech.Transcriber
	if cfg.Voice.ASR {
		asr = &speech.OpenAITranscriber{
			Client:   client,
			Model:    cfg.Voice.ASRModel,
			Language: cfg.Voice.Language,
			Prompt:   "Yes. No. I don't know.",
		}
	}
	return synth, asr, nil
}
