package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/vuequest/internal/app"
	"github.com/abhisek/vuequest/internal/config"
	"github.com/abhisek/vuequest/internal/logging"
	"github.com/abhisek/vuequest/internal/notify"
	"github.com/abhisek/vuequest/internal/ui/components"
	"github.com/abhisek/vuequest/internal/ui/theme"
)

const renderWidth = 72

var rootCmd = &cobra.Command{
	Use:           "vuequest",
	Short:         "Gamified Vue.js tutorial companion",
	Long:          "vuequest tracks your progress through the Vue.js tutorial, generates AI coding challenges and answers your questions.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintln(cmd.OutOrStdout(), components.ProgressReport(a.Progress, palette(a), renderWidth))
		return nil
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VUEQUEST_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./vuequest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(challengeCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies the persistent flags.
// --db implies the sqlite backend.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DB = db
		cfg.Storage.Backend = "sqlite"
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// openApp builds the application for a single command run.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func palette(a *app.App) theme.Palette {
	return theme.For(a.Prefs.IsDarkTheme())
}

// printToasts shows what the command queued, newest first.
func printToasts(cmd *cobra.Command, a *app.App) {
	recent := a.Notify.RecentDescending(notify.RecentLimit)
	if len(recent) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), components.Toasts(recent, renderWidth))
}
