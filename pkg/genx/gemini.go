package genx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"
)

var _ Generator = (*GeminiGenerator)(nil)

// GeminiGenerator implements Generator using Google Gemini API.
type GeminiGenerator struct {
	Client *genai.Client `json:"-"`

	InvokeParams *ModelParams `json:"invoke_params,omitzero"`

	// Model should not start with "models/"
	Model string `json:"model"`
}

func (g *GeminiGenerator) Invoke(ctx context.Context, _ string, mctx ModelContext, fn *FuncTool) (Usage, *FuncCall, error) {
	cfg, contents, err := g.convModelContext(mctx)
	if err != nil {
		return Usage{}, nil, err
	}
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = geminiConvSchema(fn.Argument)
	resp, err := g.Client.Models.GenerateContent(ctx, g.Model, contents, cfg)
	if err != nil {
		var e *apierror.APIError
		if errors.As(err, &e) && e.Unwrap() != nil {
			err = fmt.Errorf("%w: %w", e, e.Unwrap())
		}
		return Usage{}, nil, err
	}
	usage := geminiConvUsage(resp.UsageMetadata)
	if len(resp.Candidates) == 0 {
		return usage, nil, ErrNoChoices
	}
	t := resp.Candidates[0]
	switch t.FinishReason {
	case genai.FinishReasonStop, genai.FinishReasonUnspecified, "":
	case genai.FinishReasonMaxTokens:
		return usage, nil, ErrTruncated
	case genai.FinishReasonSafety:
		return usage, nil, &BlockedError{Refusal: t.FinishMessage}
	default:
		return usage, nil, &FinishReasonError{Want: string(genai.FinishReasonStop), Got: string(t.FinishReason)}
	}
	if t.Content == nil {
		return usage, nil, ErrNoContent
	}
	var sb strings.Builder
	for _, p := range t.Content.Parts {
		if p.Text != "" && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return usage, nil, ErrNoContent
	}
	return usage, fn.NewFuncCall(sb.String()), nil
}

func (g *GeminiGenerator) convModelContext(mctx ModelContext) (*genai.GenerateContentConfig, []*genai.Content, error) {
	var cfg genai.GenerateContentConfig
	var prompts []*genai.Part
	for p := range mctx.Prompts() {
		prompts = append(prompts, genai.NewPartFromText(p.Text))
	}
	if len(prompts) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: prompts}
	}
	mp := g.InvokeParams
	if p := mctx.Params(); p != nil {
		mp = p
	}
	if mp != nil {
		cfg.MaxOutputTokens = int32(mp.MaxTokens)
		if mp.Temperature > 0 {
			cfg.Temperature = &mp.Temperature
		}
		if mp.TopP > 0 {
			cfg.TopP = &mp.TopP
		}
		if mp.TopK > 0 {
			cfg.TopK = &mp.TopK
		}
	}

	var contents []*genai.Content
	for msg := range mctx.Messages() {
		var role genai.Role
		switch msg.Role {
		case RoleUser:
			role = genai.RoleUser
		case RoleModel:
			role = genai.RoleModel
		default:
			return nil, nil, fmt.Errorf("genx: unexpected message role: %s", msg.Role)
		}
		if n := len(contents); n > 0 && contents[n-1].Role == string(role) {
			contents[n-1].Parts = append(contents[n-1].Parts, genai.NewPartFromText(msg.Text()))
			continue
		}
		contents = append(contents, genai.NewContentFromText(msg.Text(), role))
	}
	if len(contents) == 0 {
		// Gemini rejects requests without contents; the system instruction
		// alone is not enough.
		contents = append(contents, genai.NewContentFromText("Respond now.", genai.RoleUser))
	}
	return &cfg, contents, nil
}

func geminiConvSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	enums := make([]string, 0, len(schema.Enum))
	for _, v := range schema.Enum {
		enums = append(enums, fmt.Sprintf("%v", v))
	}

	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Enum:        enums,
		Items:       geminiConvSchema(schema.Items),
		Required:    schema.Required,
	}
	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = geminiConvSchema(prop)
		}
	}

	typ := schema.Type
	for _, t := range schema.Types {
		if t == "null" {
			gs.Nullable = genai.Ptr(true)
		} else if typ == "" {
			typ = t
		}
	}
	switch typ {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}

func geminiConvUsage(usage *genai.GenerateContentResponseUsageMetadata) Usage {
	if usage == nil {
		return Usage{}
	}
	return Usage{
		PromptTokenCount:        int64(usage.PromptTokenCount),
		CachedContentTokenCount: int64(usage.CachedContentTokenCount),
		GeneratedTokenCount:     int64(usage.CandidatesTokenCount),
	}
}
