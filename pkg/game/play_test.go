package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"
)

// scriptedResponder replays canned replies in order.
type scriptedResponder struct {
	replies   []string
	asked     []Question
	reprompts []string
	acks      []Answer
	outcome   *Outcome
}

func (s *scriptedResponder) next() (string, error) {
	if len(s.replies) == 0 {
		return "", io.EOF
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func (s *scriptedResponder) Ask(_ context.Context, q Question) (string, error) {
	s.asked = append(s.asked, q)
	return s.next()
}

func (s *scriptedResponder) Reprompt(_ context.Context, _ Question, reply string) (string, error) {
	s.reprompts = append(s.reprompts, reply)
	return s.next()
}

func (s *scriptedResponder) Acknowledge(_ context.Context, _ Question, a Answer) error {
	s.acks = append(s.acks, a)
	return nil
}

func (s *scriptedResponder) Conclude(_ context.Context, o *Outcome) error {
	s.outcome = o
	return nil
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// numberedQuestioner proposes a fresh general question every turn.
func numberedQuestioner() QuestionerFunc {
	n := 0
	return func(context.Context, Request) (Proposal, error) {
		n++
		return Proposal{Question: fmt.Sprintf("Question number %d?", n)}, nil
	}
}

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func TestPlay_BudgetExhausted(t *testing.T) {
	r := &scriptedResponder{replies: repeat("n", 20)}
	out, err := Play(context.Background(), numberedQuestioner(), r, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if out.Solved {
		t.Error("Solved = true, want false")
	}
	if got := out.Transcript.Len(); got != 20 {
		t.Errorf("Len() = %d, want 20", got)
	}
	for _, a := range out.Transcript.Answers() {
		if a {
			t.Fatal("recorded a true answer")
		}
	}
	if out.Message() != "Oops, I couldn't guess it right." {
		t.Errorf("Message() = %q", out.Message())
	}
	if r.outcome != out {
		t.Error("Conclude was not called with the outcome")
	}
}

func TestPlay_ConfirmedGuess(t *testing.T) {
	q := QuestionerFunc(func(_ context.Context, req Request) (Proposal, error) {
		switch len(req.Questions) {
		case 0:
			return Proposal{Question: "Is your celebrity an actor?"}, nil
		case 1:
			return Proposal{Question: "Is your celebrity American?"}, nil
		}
		return Proposal{Question: "Is it Tom Hanks?", Guess: true}, nil
	})
	r := &scriptedResponder{replies: []string{"y", "y", "y"}}
	out, err := Play(context.Background(), q, r, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Solved || out.Transcript.Len() != 3 {
		t.Errorf("solved = %v, len = %d; want true, 3", out.Solved, out.Transcript.Len())
	}
	if last, _ := out.Transcript.Last(); last.Question != "Is it Tom Hanks?" || !last.Guess {
		t.Errorf("last turn = %+v", last)
	}
	if out.Final == nil || out.Final.Question != "Is it Tom Hanks?" {
		t.Errorf("Final = %+v", out.Final)
	}
	if out.Message() != "Yay! I got it right!" {
		t.Errorf("Message() = %q", out.Message())
	}
}

func TestPlay_StrictReprompts(t *testing.T) {
	r := &scriptedResponder{replies: []string{"maybe", "purple", "yes"}}
	out, err := Play(context.Background(), numberedQuestioner(), r, quiet, WithMaxTries(1))
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Transcript.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	if got := out.Transcript.Answers(); !got[0] {
		t.Errorf("answers = %v, want [true]", got)
	}
	if !slices.Equal(r.reprompts, []string{"maybe", "purple"}) {
		t.Errorf("reprompts = %v", r.reprompts)
	}
	if len(r.asked) != 1 {
		t.Errorf("Ask called %d times, want 1", len(r.asked))
	}
}

func TestPlay_AffirmedNonGuessDoesNotSolve(t *testing.T) {
	r := &scriptedResponder{replies: []string{"y"}}
	out, err := Play(context.Background(), numberedQuestioner(), r, quiet, WithMaxTries(1))
	if err != nil {
		t.Fatal(err)
	}
	if out.Solved {
		t.Error("Solved = true for an affirmed general question")
	}
	if out.Transcript.Len() != 1 {
		t.Errorf("Len() = %d, want 1", out.Transcript.Len())
	}
}

func TestPlay_InvalidMaxTries(t *testing.T) {
	_, err := Play(context.Background(), numberedQuestioner(), &scriptedResponder{}, quiet, WithMaxTries(0))
	if !errors.Is(err, ErrInvalidMaxTries) {
		t.Errorf("err = %v, want ErrInvalidMaxTries", err)
	}
}

func TestPlay_AskedQuestionCarriesProgress(t *testing.T) {
	r := &scriptedResponder{replies: []string{"n", "n"}}
	_, err := Play(context.Background(), numberedQuestioner(), r, quiet, WithMaxTries(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(r.asked) != 2 {
		t.Fatalf("asked %d questions", len(r.asked))
	}
	if r.asked[1].Turn != 2 || r.asked[1].MaxTries != 2 {
		t.Errorf("second question = %+v", r.asked[1])
	}
	if !slices.Equal(r.asked[0].Accepted, []string{"y", "n"}) {
		t.Errorf("Accepted = %v", r.asked[0].Accepted)
	}
}

func TestPlay_RejectsDuplicates(t *testing.T) {
	var avoids [][]string
	q := QuestionerFunc(func(_ context.Context, req Request) (Proposal, error) {
		avoids = append(avoids, req.Avoid)
		if len(req.Questions) == 0 || len(req.Avoid) > 0 {
			if len(req.Avoid) > 0 {
				return Proposal{Question: "Is it a musician?"}, nil
			}
			return Proposal{Question: "Is it an actor?"}, nil
		}
		return Proposal{Question: "is it an ACTOR"}, nil
	})
	r := &scriptedResponder{replies: []string{"n", "n"}}
	out, err := Play(context.Background(), q, r, quiet, WithMaxTries(2))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Is it an actor?", "Is it a musician?"}
	if got := out.Transcript.Questions(); !slices.Equal(got, want) {
		t.Errorf("questions = %v, want %v", got, want)
	}
	if last := avoids[len(avoids)-1]; !slices.Equal(last, []string{"is it an ACTOR"}) {
		t.Errorf("avoid list = %v", last)
	}
}

func TestPlay_DuplicateRetriesExhausted(t *testing.T) {
	q := QuestionerFunc(func(context.Context, Request) (Proposal, error) {
		return Proposal{Question: "Is it an actor?"}, nil
	})
	r := &scriptedResponder{replies: repeat("n", 5)}
	_, err := Play(context.Background(), q, r, quiet, WithDuplicates(DuplicatesReject, 1))
	if !errors.Is(err, ErrRepeatedQuestion) {
		t.Errorf("err = %v, want ErrRepeatedQuestion", err)
	}
}

func TestPlay_DelegateAllowsRepeats(t *testing.T) {
	q := QuestionerFunc(func(context.Context, Request) (Proposal, error) {
		return Proposal{Question: "Is it an actor?"}, nil
	})
	r := &scriptedResponder{replies: repeat("n", 3)}
	out, err := Play(context.Background(), q, r, quiet,
		WithMaxTries(3), WithDuplicates(DuplicatesDelegate, 0))
	if err != nil {
		t.Fatal(err)
	}
	if out.Transcript.Len() != 3 {
		t.Errorf("Len() = %d, want 3", out.Transcript.Len())
	}
}

func TestPlay_PermissiveSkips(t *testing.T) {
	var lastReq Request
	q := QuestionerFunc(func(_ context.Context, req Request) (Proposal, error) {
		lastReq = req
		return Proposal{Question: fmt.Sprintf("Question %d-%d?", len(req.Questions), len(req.Avoid))}, nil
	})
	r := &scriptedResponder{replies: []string{"I don't know", "yeah", "nope"}}
	out, err := Play(context.Background(), q, r, quiet,
		WithPolicy(PolicyPermissive), WithMaxTries(2))
	if err != nil {
		t.Fatal(err)
	}
	if out.Transcript.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", out.Transcript.Len())
	}
	if !slices.Equal(lastReq.Avoid, []string{"Question 0-0?"}) {
		t.Errorf("Avoid = %v", lastReq.Avoid)
	}
	if !slices.Equal(r.acks, []Answer{Decline, Yes, No}) {
		t.Errorf("acks = %v", r.acks)
	}
}

func TestPlay_SkipLimit(t *testing.T) {
	r := &scriptedResponder{replies: []string{"skip", "skip", "no"}}
	out, err := Play(context.Background(), numberedQuestioner(), r, quiet,
		WithPolicy(PolicyPermissive), WithMaxSkips(1), WithMaxTries(1))
	if err != nil {
		t.Fatal(err)
	}
	if out.Transcript.Len() != 1 {
		t.Errorf("Len() = %d, want 1", out.Transcript.Len())
	}
	if !slices.Equal(r.reprompts, []string{"skip"}) {
		t.Errorf("reprompts = %v", r.reprompts)
	}
}

type reflectorFunc func(ctx context.Context, req ReflectionRequest) (string, error)

func (f reflectorFunc) Reflect(ctx context.Context, req ReflectionRequest) (string, error) {
	return f(ctx, req)
}

func TestPlay_Reflection(t *testing.T) {
	var got ReflectionRequest
	refl := reflectorFunc(func(_ context.Context, req ReflectionRequest) (string, error) {
		got = req
		return "Good narrowing.", nil
	})
	r := &scriptedResponder{replies: []string{"n", "y"}}
	out, err := Play(context.Background(), numberedQuestioner(), r, quiet,
		WithMaxTries(2), WithReflection(refl, "Ada Lovelace"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Reflection != "Good narrowing." {
		t.Errorf("Reflection = %q", out.Reflection)
	}
	if got.Celebrity != "Ada Lovelace" || got.FinalQuestion != "Question number 2?" {
		t.Errorf("request = %+v", got)
	}
	if !slices.Equal(got.Answers, []bool{false, true}) {
		t.Errorf("answers = %v", got.Answers)
	}
}

func TestPlay_ReflectionFailureKeepsOutcome(t *testing.T) {
	boom := errors.New("boom")
	refl := reflectorFunc(func(context.Context, ReflectionRequest) (string, error) {
		return "", boom
	})
	r := &scriptedResponder{replies: []string{"n"}}
	out, err := Play(context.Background(), numberedQuestioner(), r, quiet,
		WithMaxTries(1), WithReflection(refl, "x"))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if out == nil || out.Transcript.Len() != 1 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestPlay_QuestionerError(t *testing.T) {
	boom := errors.New("upstream down")
	q := QuestionerFunc(func(context.Context, Request) (Proposal, error) {
		return Proposal{}, boom
	})
	out, err := Play(context.Background(), q, &scriptedResponder{}, quiet)
	if !errors.Is(err, boom) || out != nil {
		t.Errorf("Play() = %v, %v", out, err)
	}
}

func TestPlay_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Play(ctx, numberedQuestioner(), &scriptedResponder{}, quiet)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
