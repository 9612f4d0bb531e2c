package genx

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/goccy/go-yaml"
)

type ModelParams struct {
	MaxTokens        int     `json:"max_tokens,omitzero" yaml:"max_tokens,omitzero"`
	FrequencyPenalty float32 `json:"frequency_penalty,omitzero" yaml:"frequency_penalty,omitzero"`
	Temperature      float32 `json:"temperature,omitzero" yaml:"temperature,omitzero"`
	TopP             float32 `json:"top_p,omitzero" yaml:"top_p,omitzero"`
	PresencePenalty  float32 `json:"presence_penalty,omitzero" yaml:"presence_penalty,omitzero"`
	TopK             float32 `json:"top_k,omitzero" yaml:"top_k,omitzero"`
}

type Prompt struct {
	Name string
	Text string
}

type Tool interface {
	isTool()
}

// ModelContext is everything a generator sends to the model for one call.
type ModelContext interface {
	Prompts() iter.Seq[*Prompt]
	Messages() iter.Seq[*Message]
	Tools() iter.Seq[Tool]

	Params() *ModelParams
}

// Generator produces structured output from a model.
//
// Invoke asks the model named by the pattern to answer with arguments for
// fn, and returns the resulting call. The arguments are decoded with
// FuncCall.Decode.
type Generator interface {
	Invoke(ctx context.Context, model string, mctx ModelContext, fn *FuncTool) (Usage, *FuncCall, error)
}

type Usage struct {
	// Number of tokens in the prompt, cached content included.
	PromptTokenCount int64

	// Number of tokens in the cached part of the prompt.
	CachedContentTokenCount int64

	// Number of tokens generated.
	GeneratedTokenCount int64
}

func (u Usage) String() string {
	b, _ := yaml.Marshal(map[string]map[string]any{
		"Usage": {
			"Prompt":    u.PromptTokenCount,
			"Cached":    u.CachedContentTokenCount,
			"Generated": u.GeneratedTokenCount,
		},
	})
	return string(b)
}

// InspectModelContext renders mctx as markdown for debug logging.
func InspectModelContext(mctx ModelContext) string {
	var sb strings.Builder
	for p := range mctx.Prompts() {
		fmt.Fprintf(&sb, "## Prompt %s\n%s\n", p.Name, strings.TrimSpace(p.Text))
	}
	for t := range mctx.Tools() {
		if ft, ok := t.(*FuncTool); ok {
			fmt.Fprintf(&sb, "## Tool %s\n%s\n", ft.Name, ft.Description)
		}
	}
	for m := range mctx.Messages() {
		fmt.Fprintf(&sb, "## %s %s\n%s\n", m.Role, m.Name, m.Text())
	}
	return sb.String()
}
