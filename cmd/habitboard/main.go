// Package main is the entry point for the habitboard CLI.
//
// habitboard can be run either as a library (SDK) or as a standalone binary
// with optional YAML configuration. This CLI provides the standalone binary
// approach.
//
// Usage:
//
//	habitboard serve -c config.yaml    # Start the dashboard
//	habitboard tui                     # Track habits in the terminal
//	habitboard add "Drink water"       # Add a habit
//	habitboard toggle 1704067200000    # Mark a habit done today (or undo)
//	habitboard list                    # Print habits and today's state
//	habitboard validate -c config.yaml # Validate configuration
//	habitboard version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "habitboard",
	Short: "A minimal daily habit tracker",
	Long: `habitboard is a minimal daily habit tracker.

Add habits, mark them done for today, and see at a glance what is left.
Habits are saved after every change, in a local directory by default.

Quick start:
  1. Run: habitboard serve
  2. Open http://localhost:8080 in your browser
  3. Or stay in the terminal: habitboard tui

Example config:
  port: 8080
  timezone: Europe/Berlin
  storage:
    driver: sqlite
    path: ./habits.db`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this habitboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("habitboard %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
