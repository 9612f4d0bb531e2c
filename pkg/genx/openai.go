package genx

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
)

var _ Generator = (*OpenAIGenerator)(nil)

const (
	oaiFinishReasonStop      = "stop"
	oaiFinishReasonToolCalls = "tool_calls"
	oaiFinishReasonLength    = "length"
)

// OpenAISchemaFormatter formats a JSON schema for OpenAI structured outputs.
type OpenAISchemaFormatter func(m *jsonschema.Schema) *jsonschema.Schema

// OpenAIGenerator implements Generator on the chat completions API of
// OpenAI and compatible providers.
type OpenAIGenerator struct {
	Client *openai.Client `json:"-"`

	Model string `json:"model"`

	InvokeParams *ModelParams `json:"invoke_params,omitzero"`

	SupportJSONOutput  bool `json:"support_json_output,omitzero"`
	SupportToolCalls   bool `json:"support_tool_calls,omitzero"`
	UseSystemRole      bool `json:"use_system_role,omitzero"`
	InvokeWithToolName bool `json:"invoke_with_tool_name,omitzero"`

	ExtraFields map[string]any `json:"extra_fields,omitzero"`

	SchemaFormatter OpenAISchemaFormatter `json:"-"`
}

func (g *OpenAIGenerator) Invoke(ctx context.Context, _ string, mctx ModelContext, fn *FuncTool) (Usage, *FuncCall, error) {
	switch {
	case g.SupportJSONOutput:
		return g.invokeJSONOutput(ctx, mctx, fn)
	case g.SupportToolCalls:
		return g.invokeToolCalls(ctx, mctx, fn)
	default:
		return Usage{}, nil, ErrNoInvoke
	}
}

func (g *OpenAIGenerator) invokeJSONOutput(ctx context.Context, mctx ModelContext, fn *FuncTool) (Usage, *FuncCall, error) {
	params, err := g.chatCompletion(mctx)
	if err != nil {
		return Usage{}, nil, err
	}
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        fn.Name,
				Description: param.NewOpt(fn.Description),
				Schema:      g.convSchemaForOutput(fn.Argument),
				Strict:      param.NewOpt(true),
			},
		},
	}
	resp, err := g.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Usage{}, nil, err
	}
	usage := oaiConvUsage(&resp.Usage)
	if len(resp.Choices) == 0 {
		return usage, nil, ErrNoChoices
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return usage, nil, &BlockedError{Refusal: choice.Message.Refusal}
	}
	switch choice.FinishReason {
	case oaiFinishReasonStop:
	case oaiFinishReasonLength:
		return usage, nil, ErrTruncated
	default:
		return usage, nil, &FinishReasonError{Want: oaiFinishReasonStop, Got: choice.FinishReason}
	}
	if len(choice.Message.Content) == 0 {
		return usage, nil, ErrNoContent
	}
	return usage, fn.NewFuncCall(choice.Message.Content), nil
}

func (g *OpenAIGenerator) invokeToolCalls(ctx context.Context, mctx ModelContext, fn *FuncTool) (Usage, *FuncCall, error) {
	params, err := g.chatCompletion(mctx)
	if err != nil {
		return Usage{}, nil, err
	}
	params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        fn.Name,
			Description: param.NewOpt(fn.Description),
			Parameters:  g.convSchemaForFunc(fn.Argument),
			Strict:      param.NewOpt(true),
		},
	})
	if g.InvokeWithToolName {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: fn.Name,
				},
			},
		}
	} else {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: param.NewOpt("required"),
		}
	}

	resp, err := g.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Usage{}, nil, err
	}
	usage := oaiConvUsage(&resp.Usage)
	if len(resp.Choices) == 0 {
		return usage, nil, ErrNoChoices
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return usage, nil, &BlockedError{Refusal: choice.Message.Refusal}
	}
	// Named tool choice finishes with "stop" on most providers.
	switch choice.FinishReason {
	case oaiFinishReasonToolCalls, oaiFinishReasonStop:
	case oaiFinishReasonLength:
		return usage, nil, ErrTruncated
	default:
		return usage, nil, &FinishReasonError{Want: oaiFinishReasonToolCalls, Got: choice.FinishReason}
	}
	for _, call := range choice.Message.ToolCalls {
		if call.Function.Name == fn.Name {
			return usage, fn.NewFuncCall(call.Function.Arguments), nil
		}
	}
	return usage, nil, ErrNoContent
}

func (g *OpenAIGenerator) chatCompletion(mctx ModelContext) (openai.ChatCompletionNewParams, error) {
	msgs, err := g.convModelContext(mctx)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params := openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    g.Model,
	}
	mp := g.InvokeParams
	if p := mctx.Params(); p != nil {
		mp = p
	}
	if mp != nil {
		if mp.FrequencyPenalty > 0 {
			params.FrequencyPenalty = param.NewOpt(float64(mp.FrequencyPenalty))
		}
		if mp.MaxTokens > 0 {
			params.MaxCompletionTokens = param.NewOpt(int64(mp.MaxTokens))
		}
		if mp.Temperature > 0 {
			params.Temperature = param.NewOpt(float64(mp.Temperature))
		}
		if mp.TopP > 0 {
			params.TopP = param.NewOpt(float64(mp.TopP))
		}
		if mp.PresencePenalty > 0 {
			params.PresencePenalty = param.NewOpt(float64(mp.PresencePenalty))
		}
	}
	if len(g.ExtraFields) > 0 {
		params.SetExtraFields(g.ExtraFields)
	}
	return params, nil
}

func (g *OpenAIGenerator) convModelContext(mctx ModelContext) ([]openai.ChatCompletionMessageParamUnion, error) {
	var out []openai.ChatCompletionMessageParamUnion
	for p := range mctx.Prompts() {
		out = append(out, g.convPrompt(p))
	}
	for msg := range mctx.Messages() {
		switch msg.Role {
		case RoleUser:
			mp := openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: param.NewOpt(msg.Text()),
				},
			}
			if msg.Name != "" {
				mp.Name = param.NewOpt(msg.Name)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfUser: &mp})
		case RoleModel:
			mp := openai.ChatCompletionAssistantMessageParam{
				Content: openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: param.NewOpt(msg.Text()),
				},
			}
			if msg.Name != "" {
				mp.Name = param.NewOpt(msg.Name)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &mp})
		default:
			return nil, fmt.Errorf("genx: unexpected message role: %s", msg.Role)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoContent
	}
	return out, nil
}

func (g *OpenAIGenerator) convPrompt(p *Prompt) openai.ChatCompletionMessageParamUnion {
	if g.UseSystemRole {
		mp := openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.NewOpt(p.Text),
				},
			},
		}
		if p.Name != "" {
			mp.OfSystem.Name = param.NewOpt(p.Name)
		}
		return mp
	}
	mp := openai.ChatCompletionMessageParamUnion{
		OfDeveloper: &openai.ChatCompletionDeveloperMessageParam{
			Content: openai.ChatCompletionDeveloperMessageParamContentUnion{
				OfString: param.NewOpt(p.Text),
			},
		},
	}
	if p.Name != "" {
		mp.OfDeveloper.Name = param.NewOpt(p.Name)
	}
	return mp
}

func (g *OpenAIGenerator) convSchemaForOutput(s *jsonschema.Schema) any {
	if s == nil {
		return nil
	}
	return (any)(g.patchSchema(s))
}

func (g *OpenAIGenerator) convSchemaForFunc(s *jsonschema.Schema) openai.FunctionParameters {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(g.patchSchema(s))
	if err != nil {
		return nil
	}
	var m openai.FunctionParameters
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// FormatOpenAISchema rewrites m in place for OpenAI strict structured
// outputs: every object gets additionalProperties false, and every property
// is listed as required (optional ones become nullable).
//
// See https://platform.openai.com/docs/guides/structured-outputs
func FormatOpenAISchema(m *jsonschema.Schema) *jsonschema.Schema {
	if m == nil {
		return nil
	}
	if m.Type != "" && len(m.Types) > 0 {
		m.Types = append(m.Types, m.Type)
		m.Type = ""
	}
	typ := m.Type
	if typ == "" {
		for _, t := range m.Types {
			if t != "null" && t != "" {
				typ = t
				break
			}
		}
	}

	switch typ {
	case "array":
		m.Items = FormatOpenAISchema(m.Items)
	case "object":
		m.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}

		required := make(map[string]struct{}, len(m.Properties))
		for _, v := range m.Required {
			required[v] = struct{}{}
		}
		for k, v := range m.Properties {
			if _, ok := required[k]; !ok {
				required[k] = struct{}{}
				if v.Type != "" {
					v.Types = []string{v.Type}
					v.Type = ""
				}
				if !slices.Contains(v.Types, "null") {
					v.Types = append(v.Types, "null")
				}
			}
			m.Properties[k] = FormatOpenAISchema(v)
		}
		m.Required = slices.Sorted(maps.Keys(required))
	}
	return m
}

func (g *OpenAIGenerator) patchSchema(m *jsonschema.Schema) *jsonschema.Schema {
	s := m.CloneSchemas()
	if g.SchemaFormatter != nil {
		return g.SchemaFormatter(s)
	}
	return FormatOpenAISchema(s)
}

func oaiConvUsage(usage *openai.CompletionUsage) Usage {
	return Usage{
		PromptTokenCount:        usage.PromptTokens,
		CachedContentTokenCount: usage.PromptTokensDetails.CachedTokens,
		GeneratedTokenCount:     usage.CompletionTokens,
	}
}
