package notify

import (
	"fmt"
	"time"
)

// RecentLimit is how many notifications a recent-list view shows.
const RecentLimit = 5

func (q *Queue) Success(message, title string) int64 {
	return q.Enqueue(Request{Kind: KindSuccess, Message: message, Title: title})
}

func (q *Queue) Error(message, title string) int64 {
	return q.Enqueue(Request{Kind: KindError, Message: message, Title: title})
}

func (q *Queue) Warning(message, title string) int64 {
	return q.Enqueue(Request{Kind: KindWarning, Message: message, Title: title})
}

func (q *Queue) Info(message, title string) int64 {
	return q.Enqueue(Request{Kind: KindInfo, Message: message, Title: title})
}

func (q *Queue) Achievement(title, message string) int64 {
	return q.Enqueue(Request{Kind: KindAchievement, Message: message, Title: title})
}

// SectionComplete congratulates on a newly completed section, or notes
// that it was already complete.
func (q *Queue) SectionComplete(sectionTitle string, isNew bool) int64 {
	if isNew {
		return q.Enqueue(Request{
			Kind:     KindSuccess,
			Title:    "Section Complete! 🎉",
			Message:  fmt.Sprintf("Great job! You've completed %q", sectionTitle),
			Duration: 5 * time.Second,
		})
	}
	return q.Enqueue(Request{
		Kind:     KindInfo,
		Title:    "Already Complete",
		Message:  fmt.Sprintf("You've already completed %q", sectionTitle),
		Duration: 3 * time.Second,
	})
}

// AchievementUnlocked announces a newly granted achievement.
func (q *Queue) AchievementUnlocked(title, description string) int64 {
	return q.Enqueue(Request{
		Kind:     KindAchievement,
		Title:    "Achievement Unlocked: " + title,
		Message:  description,
		Duration: 6 * time.Second,
	})
}

// ProgressUpdate celebrates milestones. Below 50% nothing is shown and 0
// is returned.
func (q *Queue) ProgressUpdate(percentage, completed, total int) int64 {
	switch {
	case percentage == 100:
		return q.Enqueue(Request{
			Kind:     KindAchievement,
			Title:    "Congratulations! 🎉",
			Message:  "You've completed all tutorial sections!",
			Duration: 8 * time.Second,
		})
	case percentage >= 75:
		return q.Enqueue(Request{
			Kind:    KindSuccess,
			Title:   "Nearly There! 🚀",
			Message: fmt.Sprintf("Almost done! %d/%d sections complete", completed, total),
		})
	case percentage >= 50:
		return q.Enqueue(Request{
			Kind:    KindSuccess,
			Title:   "Great Progress! 📈",
			Message: fmt.Sprintf("You're halfway there! %d/%d sections complete", completed, total),
		})
	}
	return 0
}

// Welcome greets a new learner.
func (q *Queue) Welcome() int64 {
	return q.Enqueue(Request{
		Kind:     KindInfo,
		Title:    "Welcome to Vue 3 Learning! 👋",
		Message:  "Start with any section that interests you, or follow the tutorial in order. Your progress will be saved automatically!",
		Duration: 6 * time.Second,
	})
}

// Tip shows a hint, optionally labelled with its context.
func (q *Queue) Tip(tip, context string) int64 {
	title := "💡 Pro Tip"
	if context != "" {
		title = "💡 Tip: " + context
	}
	return q.Enqueue(Request{Kind: KindInfo, Title: title, Message: tip, Duration: 5 * time.Second})
}

// InteractiveFeedback reports the outcome of a playground action.
func (q *Queue) InteractiveFeedback(action, result string) int64 {
	return q.Enqueue(Request{
		Kind:     KindSuccess,
		Title:    "Interactive Example",
		Message:  action + ": " + result,
		Duration: 3 * time.Second,
	})
}

// ErrorWithSuggestion shows an error. A non-empty suggestion adds a
// "Learn More" action that shows it as a tip.
func (q *Queue) ErrorWithSuggestion(message, suggestion string) int64 {
	r := Request{
		Kind:     KindError,
		Title:    "Something went wrong",
		Message:  message,
		Duration: 7 * time.Second,
	}
	if suggestion != "" {
		r.Actions = []Action{{
			Label: "Learn More",
			Do:    func() { q.Tip(suggestion, "How to fix this") },
		}}
	}
	return q.Enqueue(r)
}
