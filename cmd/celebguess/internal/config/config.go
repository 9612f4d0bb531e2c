// Package config loads the celebguess configuration.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults
//  2. a .env file in the working directory (loaded into the environment)
//  3. the YAML config file, os.UserConfigDir()/celebguess/config.yaml
//  4. CELEBGUESS_* environment variables
//  5. command-line flags (applied by the commands)
//
// A minimal config file:
//
//	model: gpt-4o-mini
//	generators:
//	  - schema: openai/chat/v1
//	    api_key: $OPENAI_API_KEY
//	    models:
//	      - name: gpt-4o-mini
//	        model: gpt-4o-mini
//	        support_json_output: true
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/haivivi/celebguess/pkg/cli"
	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/genx/modelloader"
	"github.com/haivivi/celebguess/pkg/storage"
)

// AppName names the per-user config, cache and data directories.
const AppName = "celebguess"

// ErrMissingCredential is returned when the selected model's provider has no
// API key.
var ErrMissingCredential = modelloader.ErrMissingCredential

// Config is the resolved configuration.
type Config struct {
	// Model names the generator that proposes questions.
	Model string `yaml:"model"`

	// ReflectModel names the generator for reflections. Defaults to Model.
	ReflectModel string `yaml:"reflect_model,omitempty"`

	GeneratorConfigs []modelloader.ConfigFile `yaml:"generators,omitempty"`

	// ModelsDir holds extra generator config files, one provider per file.
	ModelsDir string `yaml:"models_dir,omitempty"`

	Game    GameConfig    `yaml:"game"`
	Voice   VoiceConfig   `yaml:"voice"`
	Archive ArchiveConfig `yaml:"archive"`

	// Path is the config file that was read, empty if none.
	Path string `yaml:"-"`
}

type GameConfig struct {
	MaxTries         int    `yaml:"max_tries"`
	Policy           string `yaml:"policy,omitempty"`
	Duplicates       string `yaml:"duplicates,omitempty"`
	DuplicateRetries int    `yaml:"duplicate_retries,omitempty"`
	MaxSkips         int    `yaml:"max_skips"`
}

type VoiceConfig struct {
	Addr string `yaml:"addr"`

	// Policy overrides Game.Policy for voice games.
	Policy string `yaml:"policy,omitempty"`

	TTS      bool   `yaml:"tts"`
	TTSModel string `yaml:"tts_model,omitempty"`
	TTSVoice string `yaml:"tts_voice,omitempty"`
	ASR      bool   `yaml:"asr"`
	ASRModel string `yaml:"asr_model,omitempty"`
	Language string `yaml:"language,omitempty"`

	// Pause between an acknowledgement and the next question, e.g. "1s".
	Pause string `yaml:"pause,omitempty"`

	Clips ClipsConfig `yaml:"clips"`
}

// ClipsConfig selects where synthesized clips are cached: an S3 bucket when
// S3.Bucket is set, else Dir.
type ClipsConfig struct {
	Dir string           `yaml:"dir,omitempty"`
	S3  storage.S3Config `yaml:"s3,omitempty"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

// Default returns the built-in configuration: OpenAI gpt-4o-mini with the
// key from $OPENAI_API_KEY, and Gemini with $GEMINI_API_KEY.
func Default() *Config {
	return &Config{
		Model: "gpt-4o-mini",
		GeneratorConfigs: []modelloader.ConfigFile{
			{
				Schema: "openai/chat/v1",
				APIKey: "$OPENAI_API_KEY",
				Models: []modelloader.Entry{
					{Name: "gpt-4o-mini", Model: "gpt-4o-mini", SupportJSONOutput: true},
					{Name: "gpt-4o", Model: "gpt-4o", SupportJSONOutput: true},
				},
			},
			{
				Schema: "gemini/chat/v1",
				APIKey: "$GEMINI_API_KEY",
				Models: []modelloader.Entry{
					{Name: "gemini-2.5-flash", Model: "gemini-2.5-flash"},
				},
			},
		},
		Game: GameConfig{
			MaxTries:         game.DefaultMaxTries,
			Policy:           "strict",
			Duplicates:       "reject",
			DuplicateRetries: 2,
			MaxSkips:         3,
		},
		Voice: VoiceConfig{
			Addr:   "127.0.0.1:8080",
			Policy: "permissive",
			Pause:  "1s",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	p, err := cli.NewPaths(AppName)
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return p.ConfigFile(), nil
}

// Load resolves the configuration. path selects the config file; when
// empty, DefaultPath is used and a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Generators in the file replace the defaults.
		defaults := cfg.GeneratorConfigs
		cfg.GeneratorConfigs = nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.GeneratorConfigs == nil {
			cfg.GeneratorConfigs = defaults
		}
		cfg.Path = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		slog.Debug("no config file", "path", path)
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.fillDirs(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Model = getEnv("CELEBGUESS_MODEL", c.Model)
	c.ReflectModel = getEnv("CELEBGUESS_REFLECT_MODEL", c.ReflectModel)
	c.ModelsDir = getEnv("CELEBGUESS_MODELS_DIR", c.ModelsDir)
	c.Game.MaxTries = getEnvInt("CELEBGUESS_MAX_TRIES", c.Game.MaxTries)
	c.Game.Policy = getEnv("CELEBGUESS_POLICY", c.Game.Policy)
	c.Game.Duplicates = getEnv("CELEBGUESS_DUPLICATES", c.Game.Duplicates)
	c.Game.MaxSkips = getEnvInt("CELEBGUESS_MAX_SKIPS", c.Game.MaxSkips)
	c.Voice.Addr = getEnv("CELEBGUESS_ADDR", c.Voice.Addr)
	c.Voice.TTS = getEnvBool("CELEBGUESS_TTS", c.Voice.TTS)
	c.Voice.ASR = getEnvBool("CELEBGUESS_ASR", c.Voice.ASR)
	c.Voice.Clips.Dir = getEnv("CELEBGUESS_CLIPS_DIR", c.Voice.Clips.Dir)
	c.Voice.Clips.S3.Bucket = getEnv("CELEBGUESS_CLIPS_BUCKET", c.Voice.Clips.S3.Bucket)
	c.Archive.Enabled = getEnvBool("CELEBGUESS_ARCHIVE", c.Archive.Enabled)
	c.Archive.Dir = getEnv("CELEBGUESS_ARCHIVE_DIR", c.Archive.Dir)

	s3 := &c.Voice.Clips.S3
	s3.Region = getEnv("AWS_REGION", s3.Region)
	s3.Endpoint = getEnv("AWS_ENDPOINT_URL_S3", s3.Endpoint)
	if s3.AccessKeyID == "" {
		s3.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
		s3.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
}

func (c *Config) fillDirs() error {
	if c.Voice.Clips.Dir != "" && c.Archive.Dir != "" {
		return nil
	}
	p, err := cli.NewPaths(AppName)
	if err != nil {
		return fmt.Errorf("cannot determine data directories: %w", err)
	}
	if c.Voice.Clips.Dir == "" {
		c.Voice.Clips.Dir = p.CacheDir()
	}
	if c.Archive.Dir == "" {
		c.Archive.Dir = p.DataDir()
	}
	return nil
}

// Validate checks the settings that do not need network access.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("config: model is required")
	}
	if c.Game.MaxTries <= 0 {
		return fmt.Errorf("config: max_tries must be positive, got %d", c.Game.MaxTries)
	}
	if c.Game.MaxSkips < 0 {
		return fmt.Errorf("config: max_skips must not be negative, got %d", c.Game.MaxSkips)
	}
	if _, err := game.ParsePolicy(c.Game.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := game.ParsePolicy(c.Voice.Policy); err != nil {
		return fmt.Errorf("config: voice: %w", err)
	}
	if _, err := game.ParseDuplicates(c.Game.Duplicates); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Voice.PauseDuration(); err != nil {
		return err
	}
	return nil
}

// GameOptions returns the loop options for a game under policy, which
// overrides Game.Policy when non-empty.
func (c *Config) GameOptions(policy string) ([]game.Option, error) {
	if policy == "" {
		policy = c.Game.Policy
	}
	p, err := game.ParsePolicy(policy)
	if err != nil {
		return nil, err
	}
	d, err := game.ParseDuplicates(c.Game.Duplicates)
	if err != nil {
		return nil, err
	}
	return []game.Option{
		game.WithMaxTries(c.Game.MaxTries),
		game.WithPolicy(p),
		game.WithDuplicates(d, c.Game.DuplicateRetries),
		game.WithMaxSkips(c.Game.MaxSkips),
	}, nil
}

// PauseDuration parses Pause. Empty means the voice default.
func (v VoiceConfig) PauseDuration() (time.Duration, error) {
	if v.Pause == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v.Pause)
	if err != nil {
		return 0, fmt.Errorf("config: voice pause: %w", err)
	}
	if d == 0 {
		d = -1
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
