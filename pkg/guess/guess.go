// Package guess backs game.Questioner and game.Reflector with a language
// model through genx.
//
// Every call sends the whole history as a YAML prompt section and asks for a
// structured answer. Transient provider failures and malformed answers are
// retried with exponential backoff; anything else is returned at once.
package guess

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/haivivi/celebguess/pkg/genx"
)

const (
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
)

// ErrEmptyQuestion is returned when the model proposes an empty question.
var ErrEmptyQuestion = errors.New("guess: empty question")

// Client holds what the Questioner and Reflector share.
type Client struct {
	Generator genx.Generator
	Model     string

	// Attempts bounds the calls per request, first one included.
	// Zero means DefaultAttempts.
	Attempts uint
	// Delay is the initial backoff. Zero means DefaultDelay.
	Delay time.Duration

	Logger *slog.Logger
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func retryable(err error) bool {
	return errors.Is(err, ErrEmptyQuestion) || genx.IsRetryable(err)
}

// do runs fn until it succeeds, fails permanently or runs out of attempts.
func (c *Client) do(ctx context.Context, op string, fn func() error) error {
	attempts := c.Attempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}
	delay := c.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger().Warn("model call failed, retrying", "op", op, "attempt", n+1, "err", err)
		}),
	)
}
