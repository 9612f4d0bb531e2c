package game

import (
	"fmt"
	"strings"
)

// Answer is a normalized human reply.
type Answer int

const (
	// Unrecognized means the reply carried no usable signal.
	Unrecognized Answer = iota
	// Yes is an affirmative reply.
	Yes
	// No is a negative reply.
	No
	// Decline means the human does not know or does not want to answer.
	Decline
)

func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Decline:
		return "don't know"
	default:
		return "unrecognized"
	}
}

// Bool reports the recorded value of a yes/no answer. ok is false for
// Decline and Unrecognized, which are never recorded.
func (a Answer) Bool() (v bool, ok bool) {
	switch a {
	case Yes:
		return true, true
	case No:
		return false, true
	}
	return false, false
}

// Policy selects how replies are normalized.
type Policy int

const (
	// PolicyStrict accepts only the exact tokens y, yes, n and no.
	PolicyStrict Policy = iota
	// PolicyPermissive matches keywords anywhere in the reply and accepts
	// declines.
	PolicyPermissive
)

var (
	declinePhrases = []string{"don't want to answer", "don't know", "dunno", "maybe", "skip"}
	yesPhrases     = []string{"yes", "yeah", "sure"}
	noPhrases      = []string{"nope", "no"}
)

// ParsePolicy parses "strict" or "permissive".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return PolicyStrict, nil
	case "permissive":
		return PolicyPermissive, nil
	}
	return PolicyStrict, fmt.Errorf("game: unknown answer policy %q", s)
}

func (p Policy) String() string {
	if p == PolicyPermissive {
		return "permissive"
	}
	return "strict"
}

// Accepted returns the reply tokens advertised to the human.
func (p Policy) Accepted() []string {
	if p == PolicyPermissive {
		return []string{"yes", "no", "don't know"}
	}
	return []string{"y", "n"}
}

// Normalize maps a raw reply to an Answer.
//
// Permissive matching checks declines first, so "I don't know" is not read
// as "no" through the "no" inside "know".
func (p Policy) Normalize(reply string) Answer {
	r := strings.ToLower(strings.TrimSpace(reply))
	// Smart quotes come through speech recognizers.
	r = strings.ReplaceAll(r, "’", "'")
	if r == "" {
		return Unrecognized
	}
	switch r {
	case "y", "yes":
		return Yes
	case "n", "no":
		return No
	}
	if p != PolicyPermissive {
		return Unrecognized
	}
	switch {
	case containsAny(r, declinePhrases):
		return Decline
	case containsAny(r, yesPhrases):
		return Yes
	case containsAny(r, noPhrases):
		return No
	}
	return Unrecognized
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
