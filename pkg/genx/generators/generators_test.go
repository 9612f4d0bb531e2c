package generators

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/haivivi/celebguess/pkg/genx"
)

type mockGenerator struct {
	name string
}

func (m *mockGenerator) Invoke(ctx context.Context, model string, mctx genx.ModelContext, tool *genx.FuncTool) (genx.Usage, *genx.FuncCall, error) {
	return genx.Usage{}, &genx.FuncCall{Name: m.name, Arguments: model}, nil
}

func TestMux_Handle(t *testing.T) {
	mux := NewMux()
	gen := &mockGenerator{name: "test"}

	if err := mux.Handle("openai/gpt-4o", gen); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if err := mux.Handle("openai/gpt-4o", gen); err == nil {
		t.Error("Handle() expected error for duplicate registration")
	}
	if err := mux.Handle("openai/*", gen); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if err := mux.Handle("openai/*", gen); err == nil {
		t.Error("Handle() expected error for duplicate glob")
	}
	if err := mux.Handle("bad/[", gen); err == nil {
		t.Error("Handle() expected error for malformed pattern")
	}
	if err := mux.Handle("nil", nil); err == nil {
		t.Error("Handle() expected error for nil generator")
	}
}

func TestMux_Invoke(t *testing.T) {
	mux := NewMux()
	if err := mux.Handle("gemini/*", &mockGenerator{name: "glob"}); err != nil {
		t.Fatal(err)
	}
	if err := mux.Handle("gemini/flash", &mockGenerator{name: "exact"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		model string
		want  string
	}{
		{"gemini/flash", "exact"},
		{"gemini/pro", "glob"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			_, call, err := mux.Invoke(context.Background(), tt.model, nil, nil)
			if err != nil {
				t.Fatalf("Invoke() error = %v", err)
			}
			if call.Name != tt.want {
				t.Errorf("routed to %q, want %q", call.Name, tt.want)
			}
			if call.Arguments != tt.model {
				t.Errorf("model passed = %q, want %q", call.Arguments, tt.model)
			}
		})
	}

	_, _, err := mux.Invoke(context.Background(), "openai/gpt-4o", nil, nil)
	if !errors.Is(err, genx.ErrNoGenerator) {
		t.Errorf("Invoke() unknown model error = %v, want ErrNoGenerator", err)
	}
}

func TestMux_Names(t *testing.T) {
	mux := NewMux()
	for _, name := range []string{"b/model", "a/*", "a/model"} {
		if err := mux.Handle(name, &mockGenerator{}); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := mux.Names(), []string{"a/*", "a/model", "b/model"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
