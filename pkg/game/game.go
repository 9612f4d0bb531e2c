// Package game implements the question loop of a "name the celebrity" game:
// an automated questioner asks yes/no questions until a direct guess is
// confirmed or the turn budget runs out.
//
// The loop is front-end agnostic. A Questioner proposes the next question, a
// Responder surfaces it to the human (terminal, voice session, ...) and
// returns the raw reply, and the loop normalizes the reply, records the turn
// and decides termination:
//
//	Questioner.Propose -> Responder.Ask -> Policy.Normalize -> Record
//	                          ^                 |
//	                          +-- Reprompt <----+ (unrecognized)
//
// An optional Reflector produces a commentary on the finished game.
package game

import "context"

// Request carries the session history to the Questioner as two parallel
// ordered sequences.
type Request struct {
	Questions []string
	Answers   []bool

	// Avoid lists questions that must not be proposed again even though they
	// are not in the history: declined ones and rejected duplicates.
	Avoid []string
}

// Questioner proposes the next question.
type Questioner interface {
	Propose(ctx context.Context, req Request) (Proposal, error)
}

// QuestionerFunc adapts a function to the Questioner interface.
type QuestionerFunc func(ctx context.Context, req Request) (Proposal, error)

// Propose calls f.
func (f QuestionerFunc) Propose(ctx context.Context, req Request) (Proposal, error) {
	return f(ctx, req)
}

// ReflectionRequest is the input of a Reflector.
type ReflectionRequest struct {
	Celebrity     string
	FinalQuestion string
	Questions     []string
	Answers       []bool
}

// Reflector produces a free-text commentary on a finished game.
type Reflector interface {
	Reflect(ctx context.Context, req ReflectionRequest) (string, error)
}

// Question is what a Responder surfaces to the human.
type Question struct {
	Turn     int
	MaxTries int
	Text     string
	Guess    bool

	// Accepted lists the reply tokens of the active policy.
	Accepted []string
}

// Responder is the human side of the loop.
type Responder interface {
	// Ask surfaces q and blocks until a raw reply is available.
	Ask(ctx context.Context, q Question) (string, error)

	// Reprompt asks the human to clarify an unusable reply and blocks
	// until the next raw reply.
	Reprompt(ctx context.Context, q Question, reply string) (string, error)

	// Acknowledge reacts to an accepted answer.
	Acknowledge(ctx context.Context, q Question, a Answer) error
}

// Concluder is implemented by Responders that announce the outcome
// themselves. Conclude is called once, after the terminal state.
type Concluder interface {
	Conclude(ctx context.Context, o *Outcome) error
}

// Outcome is the terminal result of a game.
type Outcome struct {
	Solved     bool
	Transcript Transcript

	// Final is the last proposal put to the human.
	Final *Proposal

	// Reflection is set when a Reflector was configured.
	Reflection string
}

// Message returns the closing line shown to the human.
func (o *Outcome) Message() string {
	if o.Solved {
		return "Yay! I got it right!"
	}
	return "Oops, I couldn't guess it right."
}
