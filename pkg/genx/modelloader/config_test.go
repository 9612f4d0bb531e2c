package modelloader

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/haivivi/celebguess/pkg/genx"
	"github.com/haivivi/celebguess/pkg/genx/generators"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_API_KEY", "test-key-123")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain value", "plain-api-key", "plain-api-key"},
		{"env var with $", "$TEST_API_KEY", "test-key-123"},
		{"env var with ${}", "${TEST_API_KEY}", "test-key-123"},
		{"unset env var", "$CELEBGUESS_UNSET_VAR", ""},
		{"mixed content", "prefix-$TEST_API_KEY-suffix", "prefix-$TEST_API_KEY-suffix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnv(tt.input); got != tt.expected {
				t.Errorf("expandEnv(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"openai.json": `{
			"schema": "openai/chat/v1",
			"api_key": "test-key",
			"base_url": "https://api.example.com",
			"models": [{"name": "openai/test", "model": "gpt-4o-mini", "support_json_output": true}]
		}`,
		"gemini.yaml": `
kind: gemini
api_key: $GEMINI_API_KEY
models:
  - name: gemini/flash
    model: gemini-2.0-flash
    invoke_params:
      temperature: 0.2
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := ParseFile(filepath.Join(dir, "openai.json"))
	if err != nil {
		t.Fatalf("ParseFile(json) error = %v", err)
	}
	if cfg.Provider() != "openai" || cfg.BaseURL != "https://api.example.com" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Models) != 1 || !cfg.Models[0].SupportJSONOutput {
		t.Errorf("Models = %+v", cfg.Models)
	}

	cfg, err = ParseFile(filepath.Join(dir, "gemini.yaml"))
	if err != nil {
		t.Fatalf("ParseFile(yaml) error = %v", err)
	}
	if cfg.Provider() != "gemini" || cfg.APIKey != "$GEMINI_API_KEY" {
		t.Errorf("cfg = %+v", cfg)
	}
	if p := cfg.Models[0].InvokeParams; p == nil || p.Temperature != 0.2 {
		t.Errorf("InvokeParams = %+v", p)
	}
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte("some content"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFile(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestRegister(t *testing.T) {
	mux := generators.NewMux()
	names, err := Register(mux, ConfigFile{
		Schema: "openai/chat/v1",
		APIKey: "test-key",
		Models: []Entry{
			{Name: "openai/a", Model: "gpt-a", SupportJSONOutput: true},
			{Name: "openai/b", Model: "gpt-b", SupportToolCalls: true},
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !slices.Equal(names, []string{"openai/a", "openai/b"}) {
		t.Errorf("names = %v", names)
	}
	gen, err := mux.Get("openai/b")
	if err != nil {
		t.Fatal(err)
	}
	og, ok := gen.(*genx.OpenAIGenerator)
	if !ok || og.Model != "gpt-b" || !og.SupportToolCalls {
		t.Errorf("registered generator = %#v", gen)
	}
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ConfigFile
		wantErr error
	}{
		{"missing key", ConfigFile{Kind: "openai", APIKey: "$CELEBGUESS_UNSET_VAR"}, ErrMissingCredential},
		{"missing gemini key", ConfigFile{Schema: "gemini/chat/v1"}, ErrMissingCredential},
		{"unknown provider", ConfigFile{Schema: "acme/chat/v1", APIKey: "k"}, nil},
		{"no provider", ConfigFile{APIKey: "k"}, nil},
		{"bad entry", ConfigFile{Kind: "openai", APIKey: "k", Models: []Entry{{Name: "x"}}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Register(generators.NewMux(), tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("readme.md", "# README")
	write("skip.json", `{"schema":"openai/chat/v1","api_key":"$CELEBGUESS_UNSET_VAR","models":[{"name":"x/y","model":"z"}]}`)
	write("ok.yaml", "schema: openai/chat/v1\napi_key: k\nmodels:\n  - name: openai/ok\n    model: gpt\n")

	mux := generators.NewMux()
	names, err := LoadFromDir(mux, dir)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if !slices.Equal(names, []string{"openai/ok"}) {
		t.Errorf("names = %v", names)
	}
}
