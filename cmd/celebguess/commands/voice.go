package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/guess"
	"github.com/haivivi/celebguess/pkg/voice"
)

var voiceFlags struct {
	addr        string
	console     bool
	tts         bool
	asr         bool
	clipsDir    string
	clipsBucket string
	celebrity   string
	archive     bool
}

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Serve voice games over WebSocket, or play one on the console",
	Long: `Serve voice games at ws://<addr>/voice, one game per connection.

The client receives "say" events (text, plus base64 audio with --tts) and
acknowledges each with "said" once played. It answers with "transcript"
events, or with binary audio frames when --asr is on.

With --console, one game is played on this terminal instead: spoken lines
are printed and every input line counts as a final transcript. Answer after
each question is printed; lines that arrive earlier are discarded as stale,
so answers cannot be piped in from a file.`,
	Args: cobra.NoArgs,
	RunE: runVoice,
}

func init() {
	f := voiceCmd.Flags()
	f.StringVar(&voiceFlags.addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	f.BoolVar(&voiceFlags.console, "console", false, "play one game on the console instead of serving")
	f.BoolVar(&voiceFlags.tts, "tts", false, "synthesize spoken lines with OpenAI TTS")
	f.BoolVar(&voiceFlags.asr, "asr", false, "transcribe binary utterances with OpenAI")
	f.StringVar(&voiceFlags.clipsDir, "clips-dir", "", "directory caching synthesized clips")
	f.StringVar(&voiceFlags.clipsBucket, "clips-bucket", "", "S3 bucket caching synthesized clips (overrides --clips-dir)")
	f.StringVar(&voiceFlags.celebrity, "celebrity", "", "celebrity name; enables the reflection after each game")
	f.BoolVar(&voiceFlags.archive, "archive", false, "save games to the local archive")
	rootCmd.AddCommand(voiceCmd)
}

func runVoice(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if voiceFlags.addr != "" {
		cfg.Voice.Addr = voiceFlags.addr
	}
	cfg.Voice.TTS = cfg.Voice.TTS || voiceFlags.tts
	cfg.Voice.ASR = cfg.Voice.ASR || voiceFlags.asr
	if voiceFlags.clipsDir != "" {
		cfg.Voice.Clips.Dir = voiceFlags.clipsDir
	}
	if voiceFlags.clipsBucket != "" {
		cfg.Voice.Clips.S3.Bucket = voiceFlags.clipsBucket
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.GameOptions(cfg.Voice.Policy)
	if err != nil {
		return err
	}
	pause, _ := cfg.Voice.PauseDuration()

	mux, err := cfg.Generators()
	if err != nil {
		return err
	}
	synth, asr, err := speechEngines(cfg)
	if err != nil {
		return err
	}
	if voiceFlags.celebrity != "" {
		opts = append(opts, game.WithReflection(guess.NewReflector(mux, cfg.ReflectionModel()), voiceFlags.celebrity))
	}

	srv := &voice.Server{
		Questioner:  guess.NewQuestioner(mux, cfg.Model),
		Synthesizer: synth,
		Transcriber: asr,
		Options:     opts,
		Pause:       pause,
	}
	if voiceFlags.archive || cfg.Archive.Enabled {
		a, closeArchive, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer closeArchive()
		srv.OnOutcome = archiveHook(a, "voice", cfg.Model, voiceFlags.celebrity)
	}

	ctx := cmd.Context()
	if voiceFlags.console {
		sess := voice.NewConsoleSession(cmd.InOrStdin(), cmd.OutOrStdout())
		out, err := srv.Play(ctx, sess, nil)
		if out != nil && srv.OnOutcome != nil {
			srv.OnOutcome(ctx, out)
		}
		return err
	}
	return serve(ctx, cfg.Voice.Addr, srv.Handler())
}

// serve runs an HTTP server until ctx is done, then shuts it down
// gracefully.
func serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("voice server listening", "addr", addr, "endpoint", "/voice")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down voice server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
