package guess

import (
	"context"
	"fmt"
	"strings"

	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/genx"
)

var _ game.Questioner = (*Questioner)(nil)

var nextQuestionTool = genx.MustNewFuncTool[nextQuestion](
	"next_question",
	"Propose the next yes/no question or a direct guess of the celebrity",
)

// Questioner proposes the next question of a game.
type Questioner struct {
	*Client
}

// NewQuestioner returns a Questioner calling model on gen.
func NewQuestioner(gen genx.Generator, model string) *Questioner {
	return &Questioner{Client: &Client{Generator: gen, Model: model}}
}

func (q *Questioner) Propose(ctx context.Context, req game.Request) (game.Proposal, error) {
	if len(req.Questions) != len(req.Answers) {
		return game.Proposal{}, fmt.Errorf("guess: %d questions but %d answers", len(req.Questions), len(req.Answers))
	}
	mctx, err := questionContext(req)
	if err != nil {
		return game.Proposal{}, err
	}
	q.logger().Debug("question context", "context", genx.InspectModelContext(mctx))

	var out *nextQuestion
	err = q.do(ctx, "propose", func() error {
		v, usage, err := genx.Invoke[nextQuestion](ctx, q.Generator, q.Model, mctx, nextQuestionTool)
		if err != nil {
			return err
		}
		q.logger().Debug("question usage",
			"prompt_tokens", usage.PromptTokenCount,
			"generated_tokens", usage.GeneratedTokenCount)
		if strings.TrimSpace(v.NewQuestion) == "" {
			return ErrEmptyQuestion
		}
		out = v
		return nil
	})
	if err != nil {
		return game.Proposal{}, fmt.Errorf("guess: propose: %w", err)
	}
	return game.Proposal{
		Question:  strings.TrimSpace(out.NewQuestion),
		Guess:     out.GuessMade,
		Reasoning: out.Reasoning,
	}, nil
}

func questionContext(req game.Request) (genx.ModelContext, error) {
	var mcb genx.ModelContextBuilder
	mcb.PromptText("task", questionTask)
	mcb.PromptText("task", questionRules)
	if err := mcb.Prompt("history", "past_questions", nonNil(req.Questions)); err != nil {
		return nil, err
	}
	if err := mcb.Prompt("history", "past_answers", nonNil(req.Answers)); err != nil {
		return nil, err
	}
	if len(req.Avoid) > 0 {
		if err := mcb.Prompt("history", "avoid_questions", req.Avoid); err != nil {
			return nil, err
		}
	}
	mcb.AddTool(nextQuestionTool)
	return mcb.Build(), nil
}

// nonNil keeps empty histories rendered as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
