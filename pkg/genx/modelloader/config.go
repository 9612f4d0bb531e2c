// Package modelloader builds generators from YAML or JSON configuration and
// registers them into a generators.Mux.
//
// A config file describes one provider account and the models served by it:
//
//	schema: openai/chat/v1
//	api_key: $OPENAI_API_KEY
//	models:
//	  - name: openai/gpt-4o-mini
//	    model: gpt-4o-mini
//	    support_json_output: true
package modelloader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/haivivi/celebguess/pkg/genx"
	"github.com/haivivi/celebguess/pkg/genx/generators"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

// ErrMissingCredential is returned when a config's API key is empty after
// environment expansion.
var ErrMissingCredential = errors.New("modelloader: missing credential")

// Verbose enables request body logging at debug level.
var Verbose bool

type verboseTransport struct {
	base http.RoundTripper
}

func (t *verboseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err == nil {
			body = pretty.Bytes()
		}
		slog.Debug("model request", "url", req.URL.String(), "body", string(body))
	}
	return t.base.RoundTrip(req)
}

type ConfigFile struct {
	// Schema is {provider}/{subject}/{version}, e.g. "openai/chat/v1".
	Schema string `json:"schema,omitzero" yaml:"schema,omitzero"`

	// Kind is the legacy provider selector: "openai" or "gemini".
	Kind string `json:"kind,omitzero" yaml:"kind,omitzero"`

	// APIKey may name an environment variable, like "$OPENAI_API_KEY".
	APIKey  string `json:"api_key,omitzero" yaml:"api_key,omitzero"`
	BaseURL string `json:"base_url,omitzero" yaml:"base_url,omitzero"`

	Models []Entry `json:"models,omitzero" yaml:"models,omitzero"`
}

type Entry struct {
	Name               string            `json:"name" yaml:"name"`
	Model              string            `json:"model" yaml:"model"`
	InvokeParams       *genx.ModelParams `json:"invoke_params,omitzero" yaml:"invoke_params,omitzero"`
	SupportJSONOutput  bool              `json:"support_json_output,omitzero" yaml:"support_json_output,omitzero"`
	SupportToolCalls   bool              `json:"support_tool_calls,omitzero" yaml:"support_tool_calls,omitzero"`
	UseSystemRole      bool              `json:"use_system_role,omitzero" yaml:"use_system_role,omitzero"`
	InvokeWithToolName bool              `json:"invoke_with_tool_name,omitzero" yaml:"invoke_with_tool_name,omitzero"`
	ExtraFields        map[string]any    `json:"extra_fields,omitzero" yaml:"extra_fields,omitzero"`
	Desc               string            `json:"desc,omitzero" yaml:"desc,omitzero"`
}

// Provider returns "openai" or "gemini" from Schema, or Kind for legacy
// files.
func (cfg *ConfigFile) Provider() string {
	if cfg.Schema != "" {
		provider, _, _ := strings.Cut(cfg.Schema, "/")
		return strings.ToLower(provider)
	}
	return strings.ToLower(cfg.Kind)
}

// LoadFromDir loads every .json/.yaml/.yml file under dir and registers the
// generators into mux. Configs with missing credentials are skipped.
// Returns the registered model names.
func LoadFromDir(mux *generators.Mux, dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
		default:
			return nil
		}
		cfg, err := ParseFile(path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		fileNames, err := Register(mux, *cfg)
		if errors.Is(err, ErrMissingCredential) {
			slog.Debug("skipping model config", "path", path, "err", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", path, err)
		}
		names = append(names, fileNames...)
		return nil
	})
	return names, err
}

// ParseFile reads a config file; the format follows the extension.
func ParseFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ConfigFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported extension: %s", ext)
	}
	return &cfg, nil
}

// Register builds the generators described by cfg and registers each model
// entry into mux under its name.
func Register(mux *generators.Mux, cfg ConfigFile) ([]string, error) {
	var build func(m Entry) genx.Generator
	switch cfg.Provider() {
	case "openai":
		c, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		build = func(m Entry) genx.Generator {
			return &genx.OpenAIGenerator{
				Client:             c,
				Model:              m.Model,
				InvokeParams:       m.InvokeParams,
				SupportJSONOutput:  m.SupportJSONOutput,
				SupportToolCalls:   m.SupportToolCalls,
				UseSystemRole:      m.UseSystemRole,
				InvokeWithToolName: m.InvokeWithToolName,
				ExtraFields:        m.ExtraFields,
			}
		}
	case "gemini":
		c, err := newGeminiClient(cfg)
		if err != nil {
			return nil, err
		}
		build = func(m Entry) genx.Generator {
			return &genx.GeminiGenerator{
				Client:       c,
				Model:        m.Model,
				InvokeParams: m.InvokeParams,
			}
		}
	case "":
		return nil, errors.New("schema or kind is required")
	default:
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider())
	}

	var names []string
	for _, m := range cfg.Models {
		if m.Name == "" || m.Model == "" {
			return nil, fmt.Errorf("model entry missing name or model")
		}
		if err := mux.Handle(m.Name, build(m)); err != nil {
			return nil, fmt.Errorf("register generator %q: %w", m.Name, err)
		}
		names = append(names, m.Name)
	}
	return names, nil
}

// NewOpenAIClient returns a client for the account in cfg. The same client
// serves chat, speech and transcription requests.
func NewOpenAIClient(cfg ConfigFile) (*openai.Client, error) {
	key := expandEnv(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("%w: api_key for openai (%s)", ErrMissingCredential, cfg.APIKey)
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if Verbose {
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Transport: &verboseTransport{base: http.DefaultTransport},
		}))
	}
	client := openai.NewClient(opts...)
	return &client, nil
}

func newGeminiClient(cfg ConfigFile) (*genai.Client, error) {
	key := expandEnv(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("%w: api_key for gemini (%s)", ErrMissingCredential, cfg.APIKey)
	}
	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	return genai.NewClient(context.Background(), cc)
}

// expandEnv expands values of the form $VAR or ${VAR}. Other values are
// returned as is; an unset variable expands to "".
func expandEnv(s string) string {
	if strings.HasPrefix(s, "$") {
		return os.ExpandEnv(s)
	}
	return s
}
