package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

var _ Session = (*ConsoleSession)(nil)

// ConsoleSession is a Session on a terminal: utterances are printed and every
// input line is a final transcript. It lets the voice flow run without a
// voice platform.
type ConsoleSession struct {
	in io.Reader
	w  io.Writer
	mu sync.Mutex

	start sync.Once

	fnMu sync.Mutex
	fn   func(Transcript)

	done chan struct{}
}

// NewConsoleSession creates a session reading lines from in once a
// transcript handler is registered. The session ends at EOF.
func NewConsoleSession(in io.Reader, out io.Writer) *ConsoleSession {
	return &ConsoleSession{in: in, w: out, done: make(chan struct{})}
}

func (c *ConsoleSession) readLoop() {
	defer close(c.done)
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		c.fnMu.Lock()
		fn := c.fn
		c.fnMu.Unlock()
		if fn != nil {
			fn(Transcript{Text: sc.Text(), Final: true})
		}
	}
}

func (c *ConsoleSession) Say(ctx context.Context, u Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "> %s\n", u.Text)
	return err
}

func (c *ConsoleSession) OnTranscript(fn func(Transcript)) {
	c.fnMu.Lock()
	defer c.fnMu.Unlock()
	c.fn = fn
	c.start.Do(func() { go c.readLoop() })
}

func (c *ConsoleSession) Done() <-chan struct{} {
	return c.done
}
