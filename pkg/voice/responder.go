package voice

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/speech"
)

var (
	_ game.Responder = (*Responder)(nil)
	_ game.Concluder = (*Responder)(nil)
)

// Spoken lines.
const (
	AckYes     = "Great!"
	AckNo      = "Oh, that's too bad."
	AckDecline = "No problem, let's try another one."
	Clarify    = "I didn't catch that. Could you answer yes or no?"
)

const (
	// DefaultPause separates an acknowledgement from the next question.
	DefaultPause = time.Second

	defaultInbox = 16
)

// Announcer is implemented by sessions that deliver the outcome in a
// structured form in addition to speaking it.
type Announcer interface {
	Announce(ctx context.Context, o *game.Outcome) error
}

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

// WithSynthesizer synthesizes every line before it is handed to the session.
func WithSynthesizer(s speech.Synthesizer) ResponderOption {
	return func(r *Responder) { r.synth = s }
}

// WithPause sets the pause after an acknowledgement. Zero disables it.
func WithPause(d time.Duration) ResponderOption {
	return func(r *Responder) { r.pause = d }
}

// WithInbox sets the capacity of the transcript inbox.
func WithInbox(n int) ResponderOption {
	return func(r *Responder) {
		if n > 0 {
			r.inbox = make(chan string, n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ResponderOption {
	return func(r *Responder) { r.logger = l }
}

// Responder is a game.Responder that speaks through a Session and takes
// replies from its final transcripts.
//
// Transcripts are pushed into a bounded inbox by the session. Events that
// arrive before a question is spoken are stale and are drained, so only the
// first reply after the question counts. Once the game concludes, further
// events are discarded.
type Responder struct {
	session Session
	synth   speech.Synthesizer
	pause   time.Duration
	logger  *slog.Logger

	inbox     chan string
	concluded atomic.Bool
}

// NewResponder creates a Responder and registers it as s's transcript
// handler.
func NewResponder(s Session, opts ...ResponderOption) *Responder {
	r := &Responder{
		session: s,
		pause:   DefaultPause,
		logger:  slog.Default(),
		inbox:   make(chan string, defaultInbox),
	}
	for _, opt := range opts {
		opt(r)
	}
	s.OnTranscript(r.push)
	return r
}

func (r *Responder) push(t Transcript) {
	text := strings.TrimSpace(t.Text)
	if !t.Final || text == "" {
		return
	}
	if r.concluded.Load() {
		r.logger.Debug("late transcript discarded", "text", text)
		return
	}
	select {
	case r.inbox <- text:
	default:
		r.logger.Warn("transcript inbox full, dropping", "text", text)
	}
}

func (r *Responder) drain() {
	for {
		select {
		case text := <-r.inbox:
			r.logger.Debug("stale transcript discarded", "text", text)
		default:
			return
		}
	}
}

func (r *Responder) Ask(ctx context.Context, q game.Question) (string, error) {
	r.drain()
	if err := r.say(ctx, q.Text); err != nil {
		return "", err
	}
	return r.next(ctx)
}

func (r *Responder) Reprompt(ctx context.Context, _ game.Question, _ string) (string, error) {
	if err := r.say(ctx, Clarify); err != nil {
		return "", err
	}
	return r.next(ctx)
}

func (r *Responder) Acknowledge(ctx context.Context, _ game.Question, a game.Answer) error {
	var line string
	switch a {
	case game.Yes:
		line = AckYes
	case game.No:
		line = AckNo
	case game.Decline:
		line = AckDecline
	default:
		return nil
	}
	if err := r.say(ctx, line); err != nil {
		return err
	}
	return sleep(ctx, r.pause)
}

// Conclude closes the turn window and speaks the outcome, followed by the
// reflection when there is one.
func (r *Responder) Conclude(ctx context.Context, o *game.Outcome) error {
	r.concluded.Store(true)
	r.drain()
	if a, ok := r.session.(Announcer); ok {
		if err := a.Announce(ctx, o); err != nil {
			return err
		}
	}
	if err := r.say(ctx, o.Message()); err != nil {
		return err
	}
	if o.Reflection != "" {
		return r.say(ctx, o.Reflection)
	}
	return nil
}

func (r *Responder) say(ctx context.Context, text string) error {
	u := Utterance{ID: newEventID(), Text: text}
	if r.synth != nil {
		clip, err := r.synth.Synthesize(ctx, text)
		if err != nil {
			return err
		}
		u.Audio = clip
	}
	return r.session.Say(ctx, u)
}

func (r *Responder) next(ctx context.Context) (string, error) {
	select {
	case text := <-r.inbox:
		return text, nil
	case <-r.session.Done():
		// A reply may have arrived just before the session ended.
		select {
		case text := <-r.inbox:
			return text, nil
		default:
			return "", ErrSessionClosed
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
