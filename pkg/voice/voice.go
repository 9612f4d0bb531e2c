// Package voice plays the guessing game over a spoken conversation.
//
// A Session is the voice platform: it speaks utterances and reports
// recognized speech as transcript events. Responder adapts a Session to
// game.Responder so the same question loop drives both text and voice play.
// WSSession speaks a small JSON protocol over a WebSocket, Server hosts one
// game per connection, and ConsoleSession stands in for a voice platform on a
// terminal.
package voice

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/haivivi/celebguess/pkg/speech"
)

// ErrSessionClosed is returned when the session ends while the game waits
// for it.
var ErrSessionClosed = errors.New("voice: session closed")

// Utterance is one line spoken to the human.
type Utterance struct {
	ID   string
	Text string

	// Audio is the synthesized clip, nil when speech synthesis is off and
	// the platform renders Text itself.
	Audio *speech.Clip
}

// Transcript is a recognition event. Only final transcripts carry a
// complete reply; interim ones are partial hypotheses.
type Transcript struct {
	Text  string
	Final bool
}

// Session is a voice platform connection.
type Session interface {
	// Say blocks until u has been played, ctx is done, or the session ends.
	Say(ctx context.Context, u Utterance) error

	// OnTranscript registers the transcript handler. It is called from the
	// session's own goroutine and must not block.
	OnTranscript(fn func(Transcript))

	// Done is closed when the session ends.
	Done() <-chan struct{}
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "evt_" + id.String()
}
