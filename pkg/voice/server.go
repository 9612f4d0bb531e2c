package voice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/speech"
)

// Server hosts voice games over WebSocket, one game per connection.
type Server struct {
	Questioner game.Questioner

	// Synthesizer and Transcriber are optional. Without a synthesizer the
	// client renders the text of say events; without a transcriber it must
	// send transcript events.
	Synthesizer speech.Synthesizer
	Transcriber speech.Transcriber

	// Options apply to every game after the voice defaults
	// (permissive answers).
	Options []game.Option

	// Pause overrides DefaultPause when non-zero. Negative disables it.
	Pause time.Duration

	// OnOutcome is called after each concluded game, e.g. to archive it.
	OnOutcome func(ctx context.Context, o *game.Outcome)

	Logger *slog.Logger

	upgrader websocket.Upgrader
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Handler returns the HTTP routes: GET /healthz and GET /voice.
func (s *Server) Handler() http.Handler {
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Get("/healthz", s.healthz)
	r.Get("/voice", s.serveVoice)
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) serveVoice(w http.ResponseWriter, r *http.Request) {
	log := s.logger().With("request_id", chiMiddleware.GetReqID(r.Context()), "remote", r.RemoteAddr)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	sess := NewWSSession(conn, WSSessionConfig{Transcriber: s.Transcriber, Logger: log})
	defer sess.Close()

	// r.Context is not canceled when a hijacked connection drops.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	go func() {
		select {
		case <-sess.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info("voice game started")
	out, err := s.Play(ctx, sess, log)
	if out != nil && s.OnOutcome != nil {
		s.OnOutcome(ctx, out)
	}
	switch {
	case err == nil:
		log.Info("voice game finished", "solved", out.Solved, "turns", out.Transcript.Len())
	case errors.Is(err, ErrSessionClosed), errors.Is(err, context.Canceled):
		log.Info("voice game abandoned")
	default:
		log.Error("voice game failed", "err", err)
		if serr := sess.SendError(err.Error()); serr != nil {
			log.Debug("send error event", "err", serr)
		}
	}
}

// Play runs one game on sess. The game logs to logger, or to the server's
// logger when nil.
func (s *Server) Play(ctx context.Context, sess Session, logger *slog.Logger) (*game.Outcome, error) {
	if logger == nil {
		logger = s.logger()
	}
	ropts := []ResponderOption{WithLogger(logger)}
	if s.Synthesizer != nil {
		ropts = append(ropts, WithSynthesizer(s.Synthesizer))
	}
	if s.Pause != 0 {
		ropts = append(ropts, WithPause(s.Pause))
	}
	resp := NewResponder(sess, ropts...)

	opts := append([]game.Option{
		game.WithPolicy(game.PolicyPermissive),
		game.WithLogger(logger),
	}, s.Options...)
	return game.Play(ctx, s.Questioner, resp, opts...)
}
