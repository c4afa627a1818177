package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/vuequest/internal/challenge"
	"github.com/abhisek/vuequest/internal/ui/components"
)

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Generate and evaluate coding challenges",
}

var challengeGenerateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a challenge adapted to your level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		difficulty, _ := cmd.Flags().GetString("difficulty")
		outPath, _ := cmd.Flags().GetString("out")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		c := a.Challenges.Generate(cmd.Context(), args[0], difficulty)
		fmt.Fprintln(cmd.OutOrStdout(), components.ChallengeCard(c, palette(a), renderWidth))
		if outPath != "" {
			return writeJSON(outPath, c)
		}
		return nil
	},
}

var challengeBatchCmd = &cobra.Command{
	Use:   "batch <topic>...",
	Short: "Generate one challenge per topic concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		difficulty, _ := cmd.Flags().GetString("difficulty")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		entries := make([]challenge.BatchEntry, len(args))
		for i, topic := range args {
			entries[i] = challenge.BatchEntry{Topic: topic}
		}
		for _, r := range a.Challenges.GenerateBatch(cmd.Context(), entries, difficulty) {
			source := "fallback"
			if r.Metadata.IsAIGenerated {
				source = "ai"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-8s %-4g %s\n", r.Meta.Topic, source, r.Difficulty, r.Title)
		}
		return nil
	},
}

var challengeEvaluateCmd = &cobra.Command{
	Use:   "evaluate <challenge.json> <solution-file>",
	Short: "Evaluate a solution and update your learner profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, _ := cmd.Flags().GetFloat64("minutes")

		var c challenge.Challenge
		if err := readJSON(args[0], &c); err != nil {
			return err
		}
		code, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read solution: %w", err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ev := a.Challenges.Evaluate(cmd.Context(), string(code), c, minutes)
		out := cmd.OutOrStdout()
		verdict := "not yet"
		if ev.Passed {
			verdict = "passed"
		}
		fmt.Fprintf(out, "Score: %d/100 (%s), +%d points\n", ev.Score, verdict, ev.PointsEarned)
		printList(cmd, "Strengths", ev.Feedback.Strengths)
		printList(cmd, "Improvements", ev.Feedback.Improvements)
		printList(cmd, "Next steps", ev.NextSteps)
		if ev.Encouragement != "" {
			fmt.Fprintln(out, "\n"+ev.Encouragement)
		}
		if !ev.IsAIGenerated {
			return nil
		}
		p := a.Profile.Profile()
		fmt.Fprintf(out, "\nLevel %d, streak %d\n", p.CurrentLevel, a.Profile.GameState().CurrentStreak)
		return nil
	},
}

var challengeHintCmd = &cobra.Command{
	Use:   "hint <challenge.json> [code-file]",
	Short: "Get a hint for a challenge",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		previous, _ := cmd.Flags().GetStringSlice("previous")

		var c challenge.Challenge
		if err := readJSON(args[0], &c); err != nil {
			return err
		}
		var code string
		if len(args) == 2 {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read code: %w", err)
			}
			code = string(raw)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		h := a.Challenges.Hint(cmd.Context(), c, code, previous)
		fmt.Fprintf(cmd.OutOrStdout(), "Hint #%d: %s\n%s\n", h.Number, h.Text, h.Encouragement)
		return nil
	},
}

var challengePathCmd = &cobra.Command{
	Use:   "path [goal...]",
	Short: "Plan a learning path",
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, _ := cmd.Flags().GetInt("minutes")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		lp := a.Challenges.LearningPath(cmd.Context(), args, minutes)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s, %s)\n%s\n\n", lp.PathName, lp.Difficulty, lp.EstimatedTime, lp.Description)
		for i, e := range lp.Challenges {
			fmt.Fprintf(out, "%d. [%s] %s - %s\n", i+1, e.Topic, e.Title, e.EstimatedTime)
		}
		if lp.Motivation != "" {
			fmt.Fprintln(out, "\n"+lp.Motivation)
		}
		return nil
	},
}

func printList(cmd *cobra.Command, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n  - %s\n", title, strings.Join(items, "\n  - "))
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	challengeGenerateCmd.Flags().StringP("difficulty", "d", challenge.Adaptive, "beginner, intermediate, advanced, a number 1-10, or adaptive")
	challengeGenerateCmd.Flags().StringP("out", "o", "", "Also write the challenge as JSON to this file")
	challengeBatchCmd.Flags().StringP("difficulty", "d", challenge.Adaptive, "Difficulty for every challenge")
	challengeEvaluateCmd.Flags().Float64("minutes", 0, "Minutes spent on the solution")
	challengeHintCmd.Flags().StringSlice("previous", nil, "Hints already shown")
	challengePathCmd.Flags().IntP("minutes", "m", 60, "Time available in minutes")

	challengeCmd.AddCommand(challengeGenerateCmd)
	challengeCmd.AddCommand(challengeBatchCmd)
	challengeCmd.AddCommand(challengeEvaluateCmd)
	challengeCmd.AddCommand(challengeHintCmd)
	challengeCmd.AddCommand(challengePathCmd)
}
