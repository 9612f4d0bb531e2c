package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"

	"github.com/haivivi/celebguess/pkg/genx/generators"
	"github.com/haivivi/celebguess/pkg/genx/modelloader"
)

// Generators registers every configured generator and checks that the
// selected models are available. Providers without credentials are skipped;
// if the selected model is among them, the error wraps ErrMissingCredential.
func (c *Config) Generators() (*generators.Mux, error) {
	mux := generators.NewMux()
	var missing []error
	for _, g := range c.GeneratorConfigs {
		names, err := modelloader.Register(mux, g)
		if errors.Is(err, ErrMissingCredential) {
			slog.Debug("skipping generator without credential", "provider", g.Provider(), "err", err)
			missing = append(missing, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", g.Provider(), err)
		}
		slog.Debug("registered generators", "provider", g.Provider(), "models", names)
	}
	if c.ModelsDir != "" {
		names, err := modelloader.LoadFromDir(mux, c.ModelsDir)
		if err != nil {
			return nil, fmt.Errorf("load models dir: %w", err)
		}
		slog.Debug("registered generators", "dir", c.ModelsDir, "models", names)
	}

	for _, name := range []string{c.Model, c.ReflectModel} {
		if name == "" {
			continue
		}
		if _, err := mux.Get(name); err != nil {
			if len(missing) > 0 {
				return nil, fmt.Errorf("model %q: %w", name, errors.Join(missing...))
			}
			return nil, fmt.Errorf("model %q: %w (available: %v)", name, err, mux.Names())
		}
	}
	return mux, nil
}

// ReflectionModel returns the generator name used for reflections.
func (c *Config) ReflectionModel() string {
	if c.ReflectModel != "" {
		return c.ReflectModel
	}
	return c.Model
}

// OpenAIClient returns a client for the first configured OpenAI account. It
// serves speech synthesis and transcription.
func (c *Config) OpenAIClient() (*openai.Client, error) {
	for _, g := range c.GeneratorConfigs {
		if g.Provider() == "openai" {
			return modelloader.NewOpenAIClient(g)
		}
	}
	return nil, errors.New("config: speech requires an openai generator")
}
