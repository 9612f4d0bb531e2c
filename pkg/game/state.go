package game

import (
	"fmt"
	"slices"
)

// DefaultMaxTries is the turn budget of a game.
const DefaultMaxTries = 20

// Proposal is what the Questioner offers for the next turn.
type Proposal struct {
	Question string
	Guess    bool

	// Reasoning is the generator's optional explanation; it is logged, never
	// shown to the human.
	Reasoning string
}

// State is the complete record of a session between steps. Transitions are
// pure: Record and Skip return a new State and leave their input untouched.
type State struct {
	MaxTries   int
	Transcript Transcript

	// Skipped holds questions the human declined to answer.
	Skipped []string

	// Last is the most recently recorded proposal.
	Last *Proposal

	Solved    bool
	Concluded bool
}

// NewState returns the initial state of a game with the given budget.
func NewState(maxTries int) (State, error) {
	if maxTries <= 0 {
		return State{}, fmt.Errorf("%w: %d", ErrInvalidMaxTries, maxTries)
	}
	return State{MaxTries: maxTries}, nil
}

// Turn returns the 1-based number of the turn in progress.
func (s State) Turn() int {
	return s.Transcript.Len() + 1
}

// Record completes a turn with the human's answer and evaluates termination:
// the game is solved when a guess is confirmed, and concluded when solved or
// when the budget is spent.
func Record(s State, p Proposal, answer bool) (State, error) {
	if s.Concluded {
		return s, ErrConcluded
	}
	next := s
	next.Transcript = s.Transcript.Append(Turn{
		Question: p.Question,
		Guess:    p.Guess,
		Answer:   answer,
	})
	last := p
	next.Last = &last
	if p.Guess && answer {
		next.Solved = true
		next.Concluded = true
	} else if next.Transcript.Len() >= s.MaxTries {
		next.Concluded = true
	}
	return next, nil
}

// Skip sets a declined question aside without consuming a turn.
func Skip(s State, p Proposal) (State, error) {
	if s.Concluded {
		return s, ErrConcluded
	}
	next := s
	next.Skipped = append(slices.Clip(s.Skipped), p.Question)
	return next, nil
}

// Asked reports whether q was recorded or skipped earlier in the session.
func (s State) Asked(q string) bool {
	if s.Transcript.Contains(q) {
		return true
	}
	key := questionKey(q)
	for _, sk := range s.Skipped {
		if questionKey(sk) == key {
			return true
		}
	}
	return false
}
