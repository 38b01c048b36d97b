package main

import (
	"fmt"
	"strings"

	"github.com/jpalmerr/habitboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// addCmd adds a habit.
var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a habit",
	Long: `Add a habit with the given title.

Multiple arguments are joined with spaces. The title is saved exactly as
given; a title that is only whitespace is rejected.

Example:
  habitboard add "Drink water"
  habitboard add Read 20 pages`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

// toggleCmd flips a habit's done state for a day.
var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Mark a habit done for a day, or undo it",
	Long: `Toggle whether the habit with the given id is done on a day.

The day defaults to today in the configured timezone.

Example:
  habitboard toggle 1704067200000
  habitboard toggle 1704067200000 --day 2024-01-01`,
	Args: cobra.ExactArgs(1),
	RunE: runToggle,
}

// listCmd prints every habit with its done state.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Long: `List habits in the order they were added, each marked done or not
done for the day (today by default).

Example:
  habitboard list
  habitboard list --day 2024-01-01`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(addCmd, toggleCmd, listCmd)

	for _, cmd := range []*cobra.Command{addCmd, toggleCmd, listCmd} {
		addConfigFlag(cmd)
	}
	toggleCmd.Flags().String("day", "", "day to toggle as YYYY-MM-DD (defaults to today)")
	listCmd.Flags().String("day", "", "day to show as YYYY-MM-DD (defaults to today)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	b, err := openBoard(cmd.Context(), cmd, true, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer b.close()

	h, err := b.Store().AddHabit(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Printf("Added %s %s\n", h.ID, h.Title)
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	b, err := openBoard(cmd.Context(), cmd, true, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer b.close()

	day, err := dayFlag(cmd, b.HabitBoard)
	if err != nil {
		return err
	}

	h, found, err := b.Store().ToggleCompletion(cmd.Context(), args[0], day)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no habit with id %q", args[0])
	}

	fmt.Printf("%s %s (%s)\n", glyph(h.DoneOn(day)), h.Title, day)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	b, err := openBoard(cmd.Context(), cmd, true, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer b.close()

	day, err := dayFlag(cmd, b.HabitBoard)
	if err != nil {
		return err
	}

	habits := b.Store().Habits()
	if len(habits) == 0 {
		fmt.Println("No habits yet. Add one with: habitboard add <title>")
		return nil
	}

	fmt.Printf("Habits for %s\n", day)
	for _, h := range habits {
		fmt.Printf("  %s %s  %s\n", glyph(h.DoneOn(day)), h.ID, h.Title)
	}
	return nil
}

// dayFlag returns the validated --day flag, or today when unset.
func dayFlag(cmd *cobra.Command, hb *habitboard.HabitBoard) (string, error) {
	raw, _ := cmd.Flags().GetString("day")
	if raw == "" {
		return hb.Today(), nil
	}
	return habitboard.ParseDay(raw)
}

func glyph(done bool) string {
	if done {
		return "✅"
	}
	return "⬜"
}
