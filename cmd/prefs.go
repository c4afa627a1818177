package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show and change preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := json.MarshalIndent(a.Prefs.Get(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set one preference (theme, fontSize, language, soundEnabled, animationsEnabled, autoSave, showHints)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Prefs.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s updated.\n", args[0])
		return nil
	},
}

var prefsToggleThemeCmd = &cobra.Command{
	Use:   "toggle-theme",
	Short: "Switch between light and dark theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Theme is now %s.\n", a.Prefs.ToggleTheme(cmd.Context()))
		return nil
	},
}

var prefsFontCmd = &cobra.Command{
	Use:       "font <bigger|smaller>",
	Short:     "Step the font size",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bigger", "smaller"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var size int
		switch args[0] {
		case "bigger":
			size = a.Prefs.IncreaseFontSize(cmd.Context())
		case "smaller":
			size = a.Prefs.DecreaseFontSize(cmd.Context())
		default:
			return fmt.Errorf("expected bigger or smaller, got %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Font size: %dpx\n", size)
		return nil
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		a.Prefs.ResetToDefaults(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Preferences reset.")
		return nil
	},
}

func init() {
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsToggleThemeCmd)
	prefsCmd.AddCommand(prefsFontCmd)
	prefsCmd.AddCommand(prefsResetCmd)
}
