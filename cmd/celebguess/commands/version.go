package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/celebguess/cmd/celebguess/internal/build"
	"github.com/haivivi/celebguess/pkg/cli"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFormat == "" {
			fmt.Fprintln(cmd.OutOrStdout(), build.String())
			return nil
		}
		format, err := cli.ParseFormat(versionFormat)
		if err != nil {
			return err
		}
		return cli.Output(build.Get(), cli.OutputOptions{Format: format, Writer: cmd.OutOrStdout()})
	},
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "", "output format: yaml or json")
	rootCmd.AddCommand(versionCmd)
}
