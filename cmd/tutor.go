package cmd

import (
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/vuequest/internal/screens/chat"
	"github.com/abhisek/vuequest/internal/screens/quiz"
	"github.com/abhisek/vuequest/internal/tutor"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Ask the AI tutor",
}

var tutorChatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Chat with the tutor; without a message, start an interactive session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			fmt.Fprintln(out, a.Chat(cmd.Context(), strings.Join(args, " ")))
			return nil
		}

		_, err = runProgram(cmd, chat.New(cmd.Context(), a.Chat, palette(a)))
		return err
	},
}

var tutorExplainCmd = &cobra.Command{
	Use:   "explain <concept...>",
	Short: "Explain a Vue concept in your learning style",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style, _ := cmd.Flags().GetString("style")
		level, _ := cmd.Flags().GetString("level")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if style == "" {
			style = a.Profile.Profile().LearningStyle
		}
		ex := a.Explainer.Explain(cmd.Context(), strings.Join(args, " "), style, level)
		fmt.Fprintln(cmd.OutOrStdout(), ex.Explanation)
		return nil
	},
}

var tutorQuizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a short quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		difficulty, _ := cmd.Flags().GetInt("difficulty")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		q := a.Quiz.Generate(cmd.Context(), tutor.QuizRequest{
			Topic:           topic,
			Difficulty:      difficulty,
			CompletedTopics: a.Progress.CompletedItems(),
			StrugglingAreas: a.Profile.Profile().GrowthAreas,
		})
		final, err := runProgram(cmd, quiz.New(q, palette(a)))
		if err != nil {
			return err
		}
		if m, ok := final.(quiz.Model); ok && !m.Finished() {
			correct, _ := m.Score()
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped early with %d correct.\n", correct)
		}
		return nil
	},
}

// runProgram runs m on the command's input and output until it quits.
func runProgram(cmd *cobra.Command, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run terminal ui: %w", err)
	}
	return final, nil
}

var tutorReviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Get a code review for a Vue file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("type")
		code, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		rv := a.Reviewer.Review(cmd.Context(), string(code), kind)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Overall: %d/10\n", rv.OverallScore)
		printList(cmd, "Strengths", rv.Strengths)
		if len(rv.Improvements) > 0 {
			fmt.Fprintln(out, "\nImprovements:")
			for _, imp := range rv.Improvements {
				fmt.Fprintf(out, "  [%s] %s\n        %s\n", imp.Severity, imp.Issue, imp.Suggestion)
			}
		}
		printList(cmd, "Next steps", rv.NextSteps)
		fmt.Fprintln(out, "\n"+rv.Encouragement)
		return nil
	},
}

func init() {
	tutorExplainCmd.Flags().String("style", "", "visual, auditory, kinesthetic or reading (default: your profile's style)")
	tutorExplainCmd.Flags().String("level", "beginner", "beginner, intermediate or advanced")
	tutorQuizCmd.Flags().String("topic", "", "Topic to focus on")
	tutorQuizCmd.Flags().Int("difficulty", 3, "Difficulty from 1 to 5")
	tutorReviewCmd.Flags().String("type", "component", "Kind of code (component, composable, template)")

	tutorCmd.AddCommand(tutorChatCmd)
	tutorCmd.AddCommand(tutorExplainCmd)
	tutorCmd.AddCommand(tutorQuizCmd)
	tutorCmd.AddCommand(tutorReviewCmd)
}
