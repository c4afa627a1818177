package tutor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/llm"
)

var stylePrompts = map[string]string{
	"visual":      "Use visual metaphors, diagrams descriptions, colors, and spatial relationships. Paint pictures with words!",
	"auditory":    "Use sound metaphors, rhythmic patterns, and verbal mnemonics. Make it sing!",
	"kinesthetic": "Use physical actions, movement metaphors, and hands-on analogies. Make it tangible!",
	"reading":     "Use structured text, lists, definitions, and written examples. Make it clear and organized!",
}

// Explanation is a concept explained for one learning style.
type Explanation struct {
	Concept       string    `json:"concept"`
	LearningStyle string    `json:"learningStyle"`
	Explanation   string    `json:"explanation"`
	Timestamp     time.Time `json:"timestamp"`
	IsAIGenerated bool      `json:"isAIGenerated"`
}

// Explainer explains concepts.
type Explainer struct {
	base
	now func() time.Time
}

func NewExplainer(p llm.Provider, log *zap.Logger) *Explainer {
	return &Explainer{base: newBase(p, log, "explain"), now: time.Now}
}

// Explain explains concept for a learner with the given style and level.
// Unknown styles are treated as visual.
func (e *Explainer) Explain(ctx context.Context, concept, style, level string) Explanation {
	if _, ok := stylePrompts[style]; !ok {
		style = "visual"
	}
	if level == "" {
		level = "beginner"
	}
	req := llm.PurposeExplain.Budget().Request(explainerSystemPrompt(style, level), "Explain the Vue.js concept: "+concept)

	text, err := e.generate(ctx, llm.PurposeExplain, req)
	if err != nil {
		e.fallback(llm.PurposeExplain, err)
		return FallbackExplanation(concept, style, e.now())
	}
	return Explanation{
		Concept:       concept,
		LearningStyle: style,
		Explanation:   text,
		Timestamp:     e.now(),
		IsAIGenerated: true,
	}
}

func explainerSystemPrompt(style, level string) string {
	return fmt.Sprintf(`You are a Vue.js expert who specializes in %[1]s learning. Explain Vue concepts in a way that resonates with %[1]s learners at the %[2]s level.

LEARNING STYLE APPROACH:
%[3]s

REQUIREMENTS:
- Use the fun memory palace style from the app
- Include practical examples
- Make it memorable and engaging
- Adapt complexity to %[2]s level
- Use emojis and formatting for clarity
- Connect to real-world scenarios

Keep explanations under 500 words but make every word count!`, style, level, stylePrompts[style])
}

// FallbackExplanation is a generic explanation of concept.
func FallbackExplanation(concept, style string, now time.Time) Explanation {
	return Explanation{
		Concept:       concept,
		LearningStyle: style,
		Explanation: fmt.Sprintf("🤖 AI explanation temporarily unavailable! But remember: %s in Vue is like a magical tool that helps you build amazing web applications. "+
			"Think of it as part of your developer toolkit - each Vue concept is designed to make your coding life easier and more enjoyable! 🎉", concept),
		Timestamp: now,
	}
}
