package game

import "errors"

var (
	// ErrConcluded is returned when a step is applied to a finished game.
	ErrConcluded = errors.New("game: session already concluded")

	// ErrInvalidMaxTries is returned for a non-positive turn budget.
	ErrInvalidMaxTries = errors.New("game: max tries must be positive")

	// ErrRepeatedQuestion is returned when the questioner keeps proposing a
	// question that was already asked.
	ErrRepeatedQuestion = errors.New("game: questioner repeated a past question")
)
