package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/vuequest/internal/ui/components"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show and update tutorial progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, components.ProgressReport(a.Progress, palette(a), renderWidth))
		if next, ok := a.Progress.NextItem(); ok {
			fmt.Fprintf(out, "\nUp next: %s %s (%s)\n", next.Icon, next.Title, next.ID)
		}
		return nil
	},
}

var progressCompleteCmd = &cobra.Command{
	Use:   "complete <section-id>",
	Short: "Mark a tutorial section complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.CompleteSection(cmd.Context(), args[0]) && !a.Progress.IsItemComplete(args[0]) {
			return fmt.Errorf("unknown section %q (see `vuequest progress sections`)", args[0])
		}
		printToasts(cmd, a)
		return nil
	},
}

var progressIncompleteCmd = &cobra.Command{
	Use:   "incomplete <section-id>",
	Short: "Mark a tutorial section incomplete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.Progress.MarkItemIncomplete(cmd.Context(), args[0]) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s was not complete.\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s marked incomplete (%d%% done).\n", args[0], a.Progress.CompletionPercentage())
		return nil
	},
}

var progressSectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List tutorial sections and achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		cat := a.Progress.Catalog()
		for _, s := range cat.Sections {
			mark := " "
			if a.Progress.IsItemComplete(s.ID) {
				mark = "x"
			}
			fmt.Fprintf(out, "[%s] %-24s %s  %s, %s\n", mark, s.ID, s.Title, s.Difficulty, s.EstimatedTime)
		}
		fmt.Fprintln(out)
		for _, ach := range cat.Achievements {
			mark := " "
			if a.Progress.IsAchievementUnlocked(ach.ID) {
				mark = ach.Icon
			}
			fmt.Fprintf(out, "[%s] %-20s %s\n", mark, ach.ID, ach.Description)
		}
		return nil
	},
}

var progressTimeCmd = &cobra.Command{
	Use:   "time <minutes>",
	Short: "Add study time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[0])
		if err != nil || minutes <= 0 {
			return fmt.Errorf("minutes must be a positive number, got %q", args[0])
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Progress.AddTimeSpent(cmd.Context(), minutes)
		a.Session.AddTimeSpent(cmd.Context(), minutes)
		fmt.Fprintf(cmd.OutOrStdout(), "Total time: %s\n", a.Progress.FormattedTimeSpent())
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this erases all progress; pass --yes to confirm")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Progress.ResetAll(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
		return nil
	},
}

func init() {
	progressResetCmd.Flags().Bool("yes", false, "Confirm the reset")

	progressCmd.AddCommand(progressCompleteCmd)
	progressCmd.AddCommand(progressIncompleteCmd)
	progressCmd.AddCommand(progressSectionsCmd)
	progressCmd.AddCommand(progressTimeCmd)
	progressCmd.AddCommand(progressResetCmd)
}
