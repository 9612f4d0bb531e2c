package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Play runs one game to completion.
//
// The returned Outcome is non-nil whenever the loop itself reached a terminal
// state; a reflection or announcement failure is then reported alongside it.
// Any failure before that (questioner, responder, context) returns a nil
// Outcome.
func Play(ctx context.Context, q Questioner, r Responder, opts ...Option) (*Outcome, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	st, err := NewState(cfg.maxTries)
	if err != nil {
		return nil, err
	}

	for !st.Concluded {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := propose(ctx, q, st, &cfg)
		if err != nil {
			return nil, err
		}
		st, err = playTurn(ctx, r, st, p, &cfg)
		if err != nil {
			return nil, err
		}
	}

	out := &Outcome{
		Solved:     st.Solved,
		Transcript: st.Transcript,
		Final:      st.Last,
	}
	cfg.logger.Info("game concluded", "solved", out.Solved, "turns", out.Transcript.Len())

	var errs []error
	if cfg.reflector != nil {
		text, err := cfg.reflector.Reflect(ctx, ReflectionRequest{
			Celebrity:     cfg.celebrity,
			FinalQuestion: out.Final.Question,
			Questions:     out.Transcript.Questions(),
			Answers:       out.Transcript.Answers(),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("game: reflect: %w", err))
		} else {
			out.Reflection = text
		}
	}
	if c, ok := r.(Concluder); ok {
		if err := c.Conclude(ctx, out); err != nil {
			errs = append(errs, fmt.Errorf("game: conclude: %w", err))
		}
	}
	return out, errors.Join(errs...)
}

func propose(ctx context.Context, q Questioner, st State, cfg *config) (Proposal, error) {
	req := Request{
		Questions: st.Transcript.Questions(),
		Answers:   st.Transcript.Answers(),
		Avoid:     slices.Clone(st.Skipped),
	}
	for attempt := 0; ; attempt++ {
		p, err := q.Propose(ctx, req)
		if err != nil {
			return Proposal{}, fmt.Errorf("game: propose turn %d: %w", st.Turn(), err)
		}
		if strings.TrimSpace(p.Question) == "" {
			return Proposal{}, fmt.Errorf("game: propose turn %d: empty question", st.Turn())
		}
		cfg.logger.Debug("proposal",
			"turn", st.Turn(),
			"question", p.Question,
			"guess", p.Guess,
			"reasoning", p.Reasoning)
		if cfg.duplicates == DuplicatesDelegate || !st.Asked(p.Question) {
			return p, nil
		}
		cfg.logger.Warn("questioner repeated a past question",
			"turn", st.Turn(),
			"question", p.Question,
			"attempt", attempt+1)
		if attempt >= cfg.duplicateRetry {
			return Proposal{}, fmt.Errorf("%w: %q", ErrRepeatedQuestion, p.Question)
		}
		req.Avoid = append(req.Avoid, p.Question)
	}
}

func playTurn(ctx context.Context, r Responder, st State, p Proposal, cfg *config) (State, error) {
	question := Question{
		Turn:     st.Turn(),
		MaxTries: st.MaxTries,
		Text:     p.Question,
		Guess:    p.Guess,
		Accepted: cfg.policy.Accepted(),
	}
	reply, err := r.Ask(ctx, question)
	if err != nil {
		return st, err
	}
	for {
		a := cfg.policy.Normalize(reply)
		if a == Decline && len(st.Skipped) >= cfg.maxSkips {
			a = Unrecognized
		}
		switch a {
		case Yes, No:
			v, _ := a.Bool()
			next, err := Record(st, p, v)
			if err != nil {
				return st, err
			}
			cfg.logger.Debug("answer recorded", "turn", question.Turn, "answer", v)
			return next, r.Acknowledge(ctx, question, a)
		case Decline:
			next, err := Skip(st, p)
			if err != nil {
				return st, err
			}
			cfg.logger.Debug("question skipped", "turn", question.Turn, "question", p.Question)
			return next, r.Acknowledge(ctx, question, a)
		}
		cfg.logger.Debug("unrecognized reply", "turn", question.Turn, "reply", reply)
		if reply, err = r.Reprompt(ctx, question, reply); err != nil {
			return st, err
		}
	}
}
