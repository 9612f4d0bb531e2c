package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/celebguess/cmd/celebguess/internal/config"
	"github.com/haivivi/celebguess/pkg/cli"
	"github.com/haivivi/celebguess/pkg/genx/modelloader"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "celebguess",
	Short: "Guess the celebrity you are thinking of",
	Long: `celebguess - a game of twenty questions against a language model.

Think of a celebrity and answer the model's yes/no questions until it names
them or runs out of tries.

Configuration is read from the OS config directory:
  macOS:   ~/Library/Application Support/celebguess/config.yaml
  Linux:   ~/.config/celebguess/config.yaml
  Windows: %AppData%/celebguess/config.yaml

The default model is OpenAI gpt-4o-mini; set OPENAI_API_KEY (a .env file in
the working directory works too).

Examples:
  # Play in the terminal, with a reflection at the end
  celebguess play --reflect

  # Serve voice games on ws://127.0.0.1:8080/voice with spoken questions
  celebguess voice --tts --asr

  # Show the last ten games
  celebguess history --limit 10 --format table`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <config dir>/celebguess/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs, model requests)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	modelloader.Verbose = verbose
	return nil
}

// loadConfig loads the configuration named by --config. Commands validate it
// after applying their own flags.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func styles() cli.Styles {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return cli.PlainStyles()
	}
	return cli.NewStyles(cli.DefaultTheme)
}
