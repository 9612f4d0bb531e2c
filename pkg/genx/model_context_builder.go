package genx

import (
	"iter"
	"slices"

	"github.com/goccy/go-yaml"
)

var _ ModelContext = (*modelContext)(nil)

type ModelContextBuilder struct {
	Prompts  []*Prompt
	Messages []*Message
	Tools    []Tool

	Params *ModelParams
}

func (mcb *ModelContextBuilder) Build() ModelContext {
	return &modelContext{
		prompts:  slices.Clone(mcb.Prompts),
		messages: slices.Clone(mcb.Messages),
		tools:    slices.Clone(mcb.Tools),
		params:   mcb.Params,
	}
}

// AddPrompt appends a prompt. Consecutive prompts with the same name are
// merged into one, separated by a newline.
func (mcb *ModelContextBuilder) AddPrompt(prompt *Prompt) {
	if n := len(mcb.Prompts); n > 0 && mcb.Prompts[n-1].Name == prompt.Name {
		p := mcb.Prompts[n-1]
		if p.Text != "" {
			p.Text += "\n" + prompt.Text
		} else {
			p.Text = prompt.Text
		}
		return
	}
	mcb.Prompts = append(mcb.Prompts, &Prompt{Name: prompt.Name, Text: prompt.Text})
}

// AddMessage appends a message. Consecutive messages from the same role and
// name are merged.
func (mcb *ModelContextBuilder) AddMessage(msg *Message) {
	if n := len(mcb.Messages); n > 0 {
		m := mcb.Messages[n-1]
		if m.Role == msg.Role && m.Name == msg.Name {
			m.Parts = append(m.Parts, msg.Parts...)
			return
		}
	}
	mcb.Messages = append(mcb.Messages, msg)
}

func (mcb *ModelContextBuilder) AddTool(tool Tool) {
	mcb.Tools = append(mcb.Tools, tool)
}

// Prompt adds a YAML section `key: value` to the prompt called name.
func (mcb *ModelContextBuilder) Prompt(name, key string, value any) error {
	b, err := yaml.MarshalWithOptions(map[string]any{key: value}, yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return err
	}
	mcb.AddPrompt(&Prompt{
		Name: name,
		Text: string(b),
	})
	return nil
}

func (mcb *ModelContextBuilder) PromptText(name, text string) {
	mcb.AddPrompt(&Prompt{
		Name: name,
		Text: text,
	})
}

func (mcb *ModelContextBuilder) UserText(name, text string) {
	mcb.AddMessage(&Message{
		Role:  RoleUser,
		Name:  name,
		Parts: []string{text},
	})
}

func (mcb *ModelContextBuilder) ModelText(name, text string) {
	mcb.AddMessage(&Message{
		Role:  RoleModel,
		Name:  name,
		Parts: []string{text},
	})
}

type modelContext struct {
	prompts  []*Prompt
	messages []*Message
	tools    []Tool
	params   *ModelParams
}

func (mc *modelContext) Prompts() iter.Seq[*Prompt] {
	return slices.Values(mc.prompts)
}

func (mc *modelContext) Messages() iter.Seq[*Message] {
	return slices.Values(mc.messages)
}

func (mc *modelContext) Tools() iter.Seq[Tool] {
	return slices.Values(mc.tools)
}

func (mc *modelContext) Params() *ModelParams {
	return mc.params
}
