package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/vuequest/internal/llm"
	"github.com/abhisek/vuequest/internal/store"
	"github.com/abhisek/vuequest/internal/ui/components"
	"github.com/abhisek/vuequest/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect logged LLM requests and their cost",
}

// withEventLog opens the database holding the request log for the
// duration of fn.
func withEventLog(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cfg.DB
	if path == "" {
		if path, err = store.DefaultDBPath(); err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
	}
	s, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	return fn(s.EventRepo())
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		if purpose != "" && !llm.Purpose(purpose).Known() {
			return fmt.Errorf("unknown purpose %q", purpose)
		}

		return withEventLog(cmd, func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM requests logged.")
				return nil
			}
			fmt.Fprintln(out, components.LLMEventTable(events, theme.Dark))
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one logged call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withEventLog(cmd, func(repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			p, out := theme.Dark, cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d  %s  %s/%s  purpose=%s\n", e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Provider, e.Model, e.Purpose)
			fmt.Fprintf(out, "tokens %d in / %d out, %dms, success=%v\n",
				e.InputTokens, e.OutputTokens, e.LatencyMs, e.Success)
			if e.ErrorMessage != "" {
				fmt.Fprintln(out, "error:", e.ErrorMessage)
			}
			for _, part := range []struct{ label, body string }{
				{"Request", e.RequestBody},
				{"Response", e.ResponseBody},
			} {
				body := part.body
				if body == "" {
					body = p.Hint().Render("(not captured)")
				}
				fmt.Fprintf(out, "\n%s\n%s\n", p.Title().Render(part.label), body)
			}
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEventLog(cmd, func(repo store.EventRepo) error {
			ctx := cmd.Context()
			byPurpose, err := repo.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No LLM usage recorded yet.")
				return nil
			}
			byModel, err := repo.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), components.LLMUsageReport(byPurpose, byModel, theme.Dark))
			return nil
		})
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose (hint, evaluation, tutor-chat, ...)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
