package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the current study session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		s := a.Session.Get()
		current := "(none)"
		if s.CurrentSection != nil {
			current = *s.CurrentSection
		}
		fmt.Fprintf(out, "Current section:  %s\n", current)
		fmt.Fprintf(out, "Time this session: %dm\n", s.TimeSpent)
		fmt.Fprintf(out, "Last visited:     %s\n", time.UnixMilli(s.LastVisited).Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "Exercises done:   %d\n", len(s.CompletedExercises))

		if len(s.Bookmarks) > 0 {
			fmt.Fprintln(out, "\nBookmarks:")
			for _, b := range s.Bookmarks {
				fmt.Fprintf(out, "  %d  %-24s %s\n", b.ID, b.SectionID, b.Note)
			}
		}
		if len(s.Notes) > 0 {
			fmt.Fprintln(out, "\nNotes:")
			for section, note := range s.Notes {
				fmt.Fprintf(out, "  %-24s %s\n", section, note)
			}
		}
		return nil
	},
}

var sessionGotoCmd = &cobra.Command{
	Use:   "goto <section-id>",
	Short: "Set the section you are working on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Session.UpdateCurrentSection(cmd.Context(), args[0])
		return nil
	},
}

var sessionBookmarkCmd = &cobra.Command{
	Use:   "bookmark <section-id> [note...]",
	Short: "Bookmark a section",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id := a.Session.AddBookmark(cmd.Context(), args[0], strings.Join(args[1:], " "))
		fmt.Fprintf(cmd.OutOrStdout(), "Bookmark %d added.\n", id)
		return nil
	},
}

var sessionUnbookmarkCmd = &cobra.Command{
	Use:   "unbookmark <bookmark-id>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid bookmark id %q", args[0])
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Session.RemoveBookmark(cmd.Context(), id)
		return nil
	},
}

var sessionNoteCmd = &cobra.Command{
	Use:   "note <section-id> <text...>",
	Short: "Attach a note to a section",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Session.AddNote(cmd.Context(), args[0], strings.Join(args[1:], " "))
		return nil
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a fresh session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Session.Reset(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Session reset.")
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionGotoCmd)
	sessionCmd.AddCommand(sessionBookmarkCmd)
	sessionCmd.AddCommand(sessionUnbookmarkCmd)
	sessionCmd.AddCommand(sessionNoteCmd)
	sessionCmd.AddCommand(sessionResetCmd)
}
