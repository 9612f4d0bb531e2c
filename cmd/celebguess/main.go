// Package main is the entry point for the celebguess CLI.
//
// Usage:
//
//	celebguess [flags] <command> [args]
//
// Commands:
//
//	play     - Play in the terminal
//	voice    - Serve voice games over WebSocket, or play one on the console
//	history  - List archived games
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/celebguess/cmd/celebguess/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
