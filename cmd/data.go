package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/vuequest/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all learner data as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.Export(cmd.Context())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		if outPath == "" || outPath == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d keys to %s\n", len(b.Data), outPath)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Restore learner data from an export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if args[0] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read backup: %w", err)
		}
		b, err := store.ParseBackup(raw)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Import(cmd.Context(), b); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d keys.\n", len(b.Data))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all learner data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this deletes all learner data; pass --yes to confirm")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ClearAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d keys.\n", n)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout")
	clearCmd.Flags().Bool("yes", false, "Confirm the deletion")
}
