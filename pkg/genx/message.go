package genx

import (
	"fmt"
	"strings"
)

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Role string

func (r Role) String() string {
	return string(r)
}

type Message struct {
	Role  Role
	Name  string
	Parts []string
}

// Text joins the message parts.
func (m *Message) Text() string {
	return strings.Join(m.Parts, "")
}

// FuncCall is the model's answer to an Invoke: arguments for a FuncTool,
// encoded as JSON.
type FuncCall struct {
	Name      string
	Arguments string

	tool *FuncTool
}

// Tool returns the tool the call was produced for, or nil.
func (f *FuncCall) Tool() *FuncTool {
	return f.tool
}

// Decode unmarshals the call arguments into v, repairing malformed JSON when
// possible. Arguments missing a property the tool's schema requires are
// malformed too.
func (f *FuncCall) Decode(v any) error {
	if f == nil {
		return ErrNoContent
	}
	if strings.TrimSpace(f.Arguments) == "" {
		return ErrNoContent
	}
	data, err := unmarshalJSON([]byte(f.Arguments), v)
	if err != nil {
		return &MalformedError{Name: f.Name, Arguments: f.Arguments, Err: err}
	}
	if f.tool == nil {
		return nil
	}
	missing, err := missingRequired(f.tool.Argument, data)
	if err != nil {
		return &MalformedError{Name: f.Name, Arguments: f.Arguments, Err: err}
	}
	if len(missing) > 0 {
		return &MalformedError{
			Name:      f.Name,
			Arguments: f.Arguments,
			Err:       fmt.Errorf("missing required %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}
