package game

import (
	"slices"
	"strings"
)

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string `json:"question" yaml:"question" msgpack:"q"`
	Guess    bool   `json:"guess" yaml:"guess" msgpack:"g"`
	Answer   bool   `json:"answer" yaml:"answer" msgpack:"a"`
}

// Transcript is the ordered history of a session. Appending returns a new
// Transcript and never mutates the receiver's visible entries.
type Transcript struct {
	turns []Turn
}

// NewTranscript builds a transcript from existing turns.
func NewTranscript(turns ...Turn) Transcript {
	return Transcript{turns: slices.Clone(turns)}
}

// Append returns the transcript extended by t.
func (tr Transcript) Append(t Turn) Transcript {
	// Clip capacity so that two appends to the same value never share a
	// backing array.
	return Transcript{turns: append(slices.Clip(tr.turns), t)}
}

// Len returns the number of completed turns.
func (tr Transcript) Len() int {
	return len(tr.turns)
}

// Turns returns a copy of the turns in order.
func (tr Transcript) Turns() []Turn {
	return slices.Clone(tr.turns)
}

// Last returns the most recent turn.
func (tr Transcript) Last() (Turn, bool) {
	if len(tr.turns) == 0 {
		return Turn{}, false
	}
	return tr.turns[len(tr.turns)-1], true
}

// Questions returns the question texts in order.
func (tr Transcript) Questions() []string {
	qs := make([]string, len(tr.turns))
	for i, t := range tr.turns {
		qs[i] = t.Question
	}
	return qs
}

// Answers returns the recorded answers in order, parallel to Questions.
func (tr Transcript) Answers() []bool {
	as := make([]bool, len(tr.turns))
	for i, t := range tr.turns {
		as[i] = t.Answer
	}
	return as
}

// Contains reports whether q was already asked, ignoring case, surrounding
// whitespace and trailing punctuation.
func (tr Transcript) Contains(q string) bool {
	key := questionKey(q)
	for _, t := range tr.turns {
		if questionKey(t.Question) == key {
			return true
		}
	}
	return false
}

func questionKey(q string) string {
	q = strings.ToLower(strings.Join(strings.Fields(q), " "))
	return strings.TrimRight(q, "?!. ")
}
