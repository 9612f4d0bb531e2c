// Package cli provides terminal helpers for the celebguess command.
//
// This package includes:
//   - Console, the text-mode game.Responder
//   - Output formatting (YAML, JSON, table)
//   - Styles for terminal rendering
//   - Per-user directory layout (config, cache, data)
//
// Example usage:
//
//	console := cli.NewConsole(os.Stdin, os.Stdout, cli.NewStyles(cli.DefaultTheme))
//	out, err := game.Play(ctx, questioner, console)
//
//	cli.Output(records, cli.OutputOptions{Format: cli.FormatTable})
package cli
