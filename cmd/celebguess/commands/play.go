package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/celebguess/pkg/cli"
	"github.com/haivivi/celebguess/pkg/game"
	"github.com/haivivi/celebguess/pkg/guess"
)

const celebrityPrompt = "Please think of a celebrity name, when ready, type the name and press enter..."

var playFlags struct {
	model      string
	maxTries   int
	policy     string
	duplicates string
	reflect    bool
	archive    bool
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Play one game in the terminal.

Answer each question with y or n (or yes/no/don't know with --policy
permissive). With --reflect you first type the celebrity's name; it is kept
from the guesser and only used for the reflection at the end.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	f := playCmd.Flags()
	f.StringVarP(&playFlags.model, "model", "m", "", "generator name (default from config)")
	f.IntVar(&playFlags.maxTries, "max-tries", game.DefaultMaxTries, "maximum number of questions")
	f.StringVar(&playFlags.policy, "policy", "", "answer policy: strict or permissive (default from config)")
	f.StringVar(&playFlags.duplicates, "duplicates", "", "repeated questions: reject or delegate (default from config)")
	f.BoolVar(&playFlags.reflect, "reflect", false, "ask for the celebrity and reflect on the game at the end")
	f.BoolVar(&playFlags.archive, "archive", false, "save the game to the local archive")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if playFlags.model != "" {
		cfg.Model = playFlags.model
	}
	if flags.Changed("max-tries") {
		cfg.Game.MaxTries = playFlags.maxTries
	}
	if playFlags.duplicates != "" {
		cfg.Game.Duplicates = playFlags.duplicates
	}
	if playFlags.policy != "" {
		cfg.Game.Policy = playFlags.policy
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.GameOptions("")
	if err != nil {
		return err
	}

	// Credentials are checked before the first question.
	mux, err := cfg.Generators()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	console := cli.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), styles())

	var celebrity string
	if playFlags.reflect {
		if celebrity, err = console.ReadLine(ctx, celebrityPrompt); err != nil {
			return err
		}
		opts = append(opts, game.WithReflection(guess.NewReflector(mux, cfg.ReflectionModel()), celebrity))
	}

	out, err := game.Play(ctx, guess.NewQuestioner(mux, cfg.Model), console, opts...)
	if out != nil && (playFlags.archive || cfg.Archive.Enabled) {
		a, closeArchive, aerr := openArchive(cfg)
		if aerr != nil {
			cli.PrintWarning("archive unavailable: %v", aerr)
		} else {
			archiveHook(a, "text", cfg.Model, celebrity)(ctx, out)
			closeArchive()
		}
	}
	return err
}
