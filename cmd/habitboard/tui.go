package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/habitboard/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// tuiCmd runs the terminal interface.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Track habits in the terminal",
	Long: `Open the terminal interface.

Type a title and press enter to add a habit. Press tab to move to the list,
then space or enter to mark the selected habit done today (or undo it).
Press q to quit from the list, or ctrl+c anywhere.

Only errors are logged while the interface is open.

Example:
  habitboard tui
  habitboard tui -c config.yaml`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	addConfigFlag(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	b, err := openBoard(ctx, cmd, true, zapcore.ErrorLevel)
	if err != nil {
		return err
	}
	defer b.close()

	return tui.Run(ctx, b.Store(), b.Today, b.Title())
}
