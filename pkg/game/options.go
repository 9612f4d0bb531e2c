package game

import (
	"fmt"
	"log/slog"
	"strings"
)

// Duplicates selects how the loop treats a proposal that repeats a past
// question.
type Duplicates int

const (
	// DuplicatesReject re-requests a proposal that repeats a past question.
	DuplicatesReject Duplicates = iota
	// DuplicatesDelegate trusts the questioner and performs no local check.
	DuplicatesDelegate
)

// ParseDuplicates parses "reject" or "delegate".
func ParseDuplicates(s string) (Duplicates, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reject", "":
		return DuplicatesReject, nil
	case "delegate":
		return DuplicatesDelegate, nil
	}
	return DuplicatesReject, fmt.Errorf("game: unknown duplicates mode %q", s)
}

func (d Duplicates) String() string {
	if d == DuplicatesDelegate {
		return "delegate"
	}
	return "reject"
}

const (
	defaultMaxSkips       = 3
	defaultDuplicateRetry = 2
)

type config struct {
	maxTries       int
	policy         Policy
	duplicates     Duplicates
	duplicateRetry int
	maxSkips       int
	reflector      Reflector
	celebrity      string
	logger         *slog.Logger
}

func defaultConfig() config {
	return config{
		maxTries:       DefaultMaxTries,
		policy:         PolicyStrict,
		duplicates:     DuplicatesReject,
		duplicateRetry: defaultDuplicateRetry,
		maxSkips:       defaultMaxSkips,
		logger:         slog.Default(),
	}
}

// Option configures Play.
type Option func(*config)

// WithMaxTries sets the turn budget. Non-positive values make Play fail.
func WithMaxTries(n int) Option {
	return func(c *config) { c.maxTries = n }
}

// WithPolicy sets the answer normalization policy.
func WithPolicy(p Policy) Option {
	return func(c *config) { c.policy = p }
}

// WithDuplicates sets the duplicate-question handling and, for
// DuplicatesReject, how many extra proposals are requested before giving up.
func WithDuplicates(d Duplicates, retries int) Option {
	return func(c *config) {
		c.duplicates = d
		if retries >= 0 {
			c.duplicateRetry = retries
		}
	}
}

// WithMaxSkips bounds how many questions may be declined under the
// permissive policy. Zero disables declining.
func WithMaxSkips(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxSkips = n
		}
	}
}

// WithReflection asks r for a commentary once the game ends. celebrity is the
// name the human was thinking of.
func WithReflection(r Reflector, celebrity string) Option {
	return func(c *config) {
		c.reflector = r
		c.celebrity = celebrity
	}
}

// WithLogger sets the logger used for turn-level diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
