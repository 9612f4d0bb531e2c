package guess

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/genx"
)

type step struct {
	args string
	err  error
}

// scriptedGenerator answers Invoke calls from a fixed script.
type scriptedGenerator struct {
	steps  []step
	calls  int
	models []string
	last   genx.ModelContext
}

func (g *scriptedGenerator) Invoke(_ context.Context, model string, mctx genx.ModelContext, fn *genx.FuncTool) (genx.Usage, *genx.FuncCall, error) {
	g.models = append(g.models, model)
	g.last = mctx
	s := g.steps[g.calls]
	g.calls++
	if s.err != nil {
		return genx.Usage{}, nil, s.err
	}
	return genx.Usage{}, fn.NewFuncCall(s.args), nil
}

func newTestClient(gen genx.Generator) *Client {
	return &Client{
		Generator: gen,
		Model:     "test/model",
		Delay:     time.Millisecond,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func promptText(mctx genx.ModelContext) string {
	var sb strings.Builder
	for p := range mctx.Prompts() {
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestQuestioner_Propose(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{
		{args: `{"reasoning":"American actor","guess_made":true,"new_question":" Is it Tom Hanks? "}`},
	}}
	q := &Questioner{Client: newTestClient(gen)}

	p, err := q.Propose(context.Background(), game.Request{
		Questions: []string{"Is your celebrity an actor?", "Is your celebrity American?"},
		Answers:   []bool{true, true},
		Avoid:     []string{"Is it a singer?"},
	})
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	want := game.Proposal{Question: "Is it Tom Hanks?", Guess: true, Reasoning: "American actor"}
	if p != want {
		t.Errorf("Propose() = %+v, want %+v", p, want)
	}
	if !slices.Equal(gen.models, []string{"test/model"}) {
		t.Errorf("models = %v", gen.models)
	}

	text := promptText(gen.last)
	for _, s := range []string{
		"Generate a yes/no question",
		"- Is your celebrity an actor?",
		"past_answers:",
		"- true",
		"avoid_questions:",
		"- Is it a singer?",
	} {
		if !strings.Contains(text, s) {
			t.Errorf("prompt missing %q:\n%s", s, text)
		}
	}
}

func TestQuestioner_EmptyHistory(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{args: `{"reasoning":"","guess_made":false,"new_question":"Is it a man?"}`}}}
	q := &Questioner{Client: newTestClient(gen)}
	if _, err := q.Propose(context.Background(), game.Request{}); err != nil {
		t.Fatal(err)
	}
	text := promptText(gen.last)
	if !strings.Contains(text, "past_questions: []") {
		t.Errorf("empty history should render as []:\n%s", text)
	}
	if strings.Contains(text, "avoid_questions") {
		t.Errorf("avoid section rendered without entries:\n%s", text)
	}
}

func TestQuestioner_Retries(t *testing.T) {
	tests := []struct {
		name      string
		steps     []step
		wantCalls int
		wantErr   error
	}{
		{
			name: "transient then ok",
			steps: []step{
				{err: genx.ErrNoChoices},
				{args: `{"new_question":"Is it a man?","guess_made":false}`},
			},
			wantCalls: 2,
		},
		{
			name: "empty question then ok",
			steps: []step{
				{args: `{"new_question":"  ","guess_made":false}`},
				{args: `{"new_question":"Is it a man?","guess_made":false}`},
			},
			wantCalls: 2,
		},
		{
			name: "permanent error",
			steps: []step{
				{err: &genx.BlockedError{Refusal: "no"}},
			},
			wantCalls: 1,
		},
		{
			name: "attempts exhausted",
			steps: []step{
				{err: genx.ErrTruncated},
				{err: genx.ErrTruncated},
				{err: genx.ErrTruncated},
			},
			wantCalls: 3,
			wantErr:   genx.ErrTruncated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &scriptedGenerator{steps: tt.steps}
			q := &Questioner{Client: newTestClient(gen)}
			_, err := q.Propose(context.Background(), game.Request{})
			if gen.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", gen.calls, tt.wantCalls)
			}
			last := tt.steps[len(tt.steps)-1]
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
			case last.err != nil:
				if !errors.Is(err, last.err) {
					t.Errorf("err = %v, want %v", err, last.err)
				}
			default:
				if err != nil {
					t.Errorf("err = %v", err)
				}
			}
		})
	}
}

func TestQuestioner_MissingGuessFlag(t *testing.T) {
	t.Run("retried", func(t *testing.T) {
		gen := &scriptedGenerator{steps: []step{
			{args: `{"new_question":"Is it Tom Hanks?"}`},
			{args: `{"new_question":"Is it Tom Hanks?","guess_made":true}`},
		}}
		q := &Questioner{Client: newTestClient(gen)}
		p, err := q.Propose(context.Background(), game.Request{})
		if err != nil {
			t.Fatalf("Propose() error = %v", err)
		}
		if gen.calls != 2 {
			t.Errorf("calls = %d, want 2", gen.calls)
		}
		if !p.Guess || p.Question != "Is it Tom Hanks?" {
			t.Errorf("Propose() = %+v", p)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		gen := &scriptedGenerator{steps: []step{
			{args: `{"new_question":"Is it Tom Hanks?"}`},
			{args: `{"new_question":"Is it Tom Hanks?","guess_made":null}`},
			{args: `{"guess_made":true}`},
		}}
		q := &Questioner{Client: newTestClient(gen)}
		_, err := q.Propose(context.Background(), game.Request{})
		var malformed *genx.MalformedError
		if !errors.As(err, &malformed) {
			t.Fatalf("Propose() error = %v, want *genx.MalformedError", err)
		}
		if gen.calls != 3 {
			t.Errorf("calls = %d, want 3", gen.calls)
		}
	})
}

func TestQuestioner_MismatchedHistory(t *testing.T) {
	q := &Questioner{Client: newTestClient(&scriptedGenerator{})}
	_, err := q.Propose(context.Background(), game.Request{Questions: []string{"a"}})
	if err == nil {
		t.Error("expected error for mismatched history")
	}
}

func TestReflector_Reflect(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{args: `{"reflection":"Narrowed down quickly."}`}}}
	r := &Reflector{Client: newTestClient(gen)}
	text, err := r.Reflect(context.Background(), game.ReflectionRequest{
		Celebrity:     "Tom Hanks",
		FinalQuestion: "Is it Tom Hanks?",
		Questions:     []string{"Is it Tom Hanks?"},
		Answers:       []bool{true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != "Narrowed down quickly." {
		t.Errorf("Reflect() = %q", text)
	}
	prompt := promptText(gen.last)
	for _, s := range []string{"Provide reflection", "correct_celebrity_name: Tom Hanks", "final_guessor_question: Is it Tom Hanks?"} {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt missing %q:\n%s", s, prompt)
		}
	}
}

func TestNewReflector_SingleAttempt(t *testing.T) {
	gen := &scriptedGenerator{steps: []step{{err: genx.ErrNoChoices}, {args: `{"reflection":"x"}`}}}
	r := NewReflector(gen, "test/model")
	r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := r.Reflect(context.Background(), game.ReflectionRequest{}); !errors.Is(err, genx.ErrNoChoices) {
		t.Errorf("err = %v, want ErrNoChoices", err)
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
}
