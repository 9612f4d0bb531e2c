package guess

import (
	"context"
	"fmt"
	"strings"

	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/genx"
)

var _ game.Reflector = (*Reflector)(nil)

var reflectionTool = genx.MustNewFuncTool[reflection](
	"reflection",
	"Comment on a finished celebrity guessing game",
)

// Reflector comments on a finished game.
type Reflector struct {
	*Client
}

// NewReflector returns a Reflector calling model on gen. A reflection is
// attempted once; set Attempts to allow retries of transient failures.
func NewReflector(gen genx.Generator, model string) *Reflector {
	return &Reflector{Client: &Client{Generator: gen, Model: model, Attempts: 1}}
}

func (r *Reflector) Reflect(ctx context.Context, req game.ReflectionRequest) (string, error) {
	var mcb genx.ModelContextBuilder
	mcb.PromptText("task", reflectionTask)
	sections := []struct {
		key   string
		value any
	}{
		{"correct_celebrity_name", req.Celebrity},
		{"final_guessor_question", req.FinalQuestion},
		{"past_questions", nonNil(req.Questions)},
		{"past_answers", nonNil(req.Answers)},
	}
	for _, s := range sections {
		if err := mcb.Prompt("game", s.key, s.value); err != nil {
			return "", err
		}
	}
	mcb.AddTool(reflectionTool)
	mctx := mcb.Build()

	var text string
	err := r.do(ctx, "reflect", func() error {
		v, _, err := genx.Invoke[reflection](ctx, r.Generator, r.Model, mctx, reflectionTool)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(v.Reflection)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("guess: reflect: %w", err)
	}
	return text, nil
}
