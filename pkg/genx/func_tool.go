package genx

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

var _ Tool = (*FuncTool)(nil)

type FuncToolOption interface {
	applyToFuncTool(*FuncTool)
}

// WithSchema overrides the schema inferred for values of type T.
func WithSchema[T any](s *jsonschema.Schema) FuncToolOption {
	return &typeSchemaOption{t: reflect.TypeFor[T](), s: s}
}

type typeSchemaOption struct {
	t reflect.Type
	s *jsonschema.Schema
}

func (o *typeSchemaOption) applyToFuncTool(t *FuncTool) {
	t.typeSchemas[o.t] = o.s
}

// FuncTool describes the structured output the model must produce. Argument
// is the JSON schema of the expected object.
type FuncTool struct {
	Name        string
	Description string
	Argument    *jsonschema.Schema

	typeSchemas map[reflect.Type]*jsonschema.Schema
}

func (tool *FuncTool) NewFuncCall(args string) *FuncCall {
	return &FuncCall{
		Name:      tool.Name,
		Arguments: args,

		tool: tool,
	}
}

func (*FuncTool) isTool() {}

func NewFuncTool[ArgType any](name, description string, opts ...FuncToolOption) (*FuncTool, error) {
	tool := &FuncTool{
		Name:        name,
		Description: description,
		typeSchemas: make(map[reflect.Type]*jsonschema.Schema),
	}
	for _, opt := range opts {
		opt.applyToFuncTool(tool)
	}
	arg, err := jsonschema.For[ArgType](&jsonschema.ForOptions{
		TypeSchemas: tool.typeSchemas,
	})
	if err != nil {
		return nil, fmt.Errorf("genx: schema for %s: %w", name, err)
	}
	tool.Argument = arg
	return tool, nil
}

func MustNewFuncTool[ArgType any](name, description string, opts ...FuncToolOption) *FuncTool {
	tool, err := NewFuncTool[ArgType](name, description, opts...)
	if err != nil {
		panic(err)
	}
	return tool
}

// Invoke runs fn on gen and decodes the arguments into a T.
func Invoke[T any](ctx context.Context, gen Generator, model string, mctx ModelContext, fn *FuncTool) (*T, Usage, error) {
	usage, call, err := gen.Invoke(ctx, model, mctx, fn)
	if err != nil {
		return nil, usage, err
	}
	var v T
	if err := call.Decode(&v); err != nil {
		return nil, usage, err
	}
	return &v, usage, nil
}
