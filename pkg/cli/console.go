package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/haivivi/celebguess/pkg/game"
)

var (
	_ game.Responder = (*Console)(nil)
	_ game.Concluder = (*Console)(nil)
)

// ErrInputClosed is returned when the input ends before a reply is read.
var ErrInputClosed = errors.New("cli: input closed")

// Console is a text-mode game.Responder: each question is printed with the
// accepted replies and answered by one line of input.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	styles Styles
}

// NewConsole creates a Console reading lines from in and writing to out.
func NewConsole(in io.Reader, out io.Writer, styles Styles) *Console {
	return &Console{in: bufio.NewReader(in), out: out, styles: styles}
}

func (c *Console) Ask(ctx context.Context, q game.Question) (string, error) {
	c.prompt(q)
	return c.readLine(ctx)
}

func (c *Console) Reprompt(ctx context.Context, q game.Question, _ string) (string, error) {
	fmt.Fprintln(c.out, c.styles.Help.Render("Please enter one of: "+strings.Join(q.Accepted, ", ")))
	c.prompt(q)
	return c.readLine(ctx)
}

// Acknowledge is silent in text mode.
func (c *Console) Acknowledge(context.Context, game.Question, game.Answer) error {
	return nil
}

// Conclude prints the closing line and the reflection, if any.
func (c *Console) Conclude(_ context.Context, o *game.Outcome) error {
	style := c.styles.Failure
	if o.Solved {
		style = c.styles.Success
	}
	if _, err := fmt.Fprintln(c.out, style.Render(o.Message())); err != nil {
		return err
	}
	if o.Reflection != "" {
		_, err := fmt.Fprintf(c.out, "\n%s\n%s\n", c.styles.Label.Render("Reflection:"), o.Reflection)
		return err
	}
	return nil
}

// ReadLine prints prompt as is and reads one line, without its line ending.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	return c.readLine(ctx)
}

func (c *Console) prompt(q game.Question) {
	fmt.Fprintf(c.out, "%s %s: ",
		c.styles.Question.Render(q.Text),
		c.styles.Help.Render("("+strings.Join(q.Accepted, "/")+")"))
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("cli: read input: %w", err)
		}
		if line == "" {
			return "", ErrInputClosed
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
