package tutor

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/llm"
)

// Review is feedback on a piece of Vue code.
type Review struct {
	OverallScore  int           `json:"overallScore"`
	Strengths     []string      `json:"strengths"`
	Improvements  []Improvement `json:"improvements"`
	Encouragement string        `json:"encouragement"`
	NextSteps     []string      `json:"nextSteps"`
	IsAIGenerated bool          `json:"isAIGenerated"`
}

type Improvement struct {
	Issue      string `json:"issue"`
	Severity   string `json:"severity"`
	Suggestion string `json:"suggestion"`
	Example    string `json:"example"`
}

// ReviewSchema is the structured output requested for code reviews.
var ReviewSchema = &llm.Schema{
	Name:        "code-review",
	Description: "Educational review of Vue code",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overallScore": map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
			"strengths":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"improvements": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"issue":      map[string]any{"type": "string"},
						"severity":   map[string]any{"type": "string", "enum": []any{"low", "medium", "high"}},
						"suggestion": map[string]any{"type": "string"},
						"example":    map[string]any{"type": "string"},
					},
					"required":             []any{"issue", "severity", "suggestion", "example"},
					"additionalProperties": false,
				},
			},
			"encouragement": map[string]any{"type": "string"},
			"nextSteps":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []any{"overallScore", "strengths", "improvements", "encouragement", "nextSteps"},
		"additionalProperties": false,
	},
}

const reviewSystemPrompt = `You are an expert Vue.js code reviewer. Analyze the provided Vue code and give constructive, educational feedback.

REVIEW CRITERIA:
- Vue 3 best practices and conventions
- Code structure and organization
- Performance considerations
- Accessibility and UX
- Security considerations
- Readability and maintainability

Return JSON with overallScore (1-10), strengths, improvements (issue, severity low|medium|high,
suggestion, example), encouragement and nextSteps.

Be encouraging and educational - remember this is for learning!`

// Reviewer reviews learner code.
type Reviewer struct {
	base
}

func NewReviewer(p llm.Provider, log *zap.Logger) *Reviewer {
	return &Reviewer{base: newBase(p, log, "review")}
}

// Review reviews code of the given kind ("component", "template", ...).
func (r *Reviewer) Review(ctx context.Context, code, kind string) Review {
	if kind == "" {
		kind = "component"
	}
	req := llm.PurposeReview.Budget().Request(reviewSystemPrompt, "Please review this Vue "+kind+" code:\n\n"+code)
	req.Schema = ReviewSchema

	text, err := r.generate(ctx, llm.PurposeReview, req)
	if err == nil {
		var rv Review
		if err = r.decode(text, ReviewSchema, &rv); err == nil {
			rv.IsAIGenerated = true
			return rv
		}
	}
	r.fallback(llm.PurposeReview, err)
	return FallbackReview()
}

// FallbackReview is served when no model review is available.
func FallbackReview() Review {
	return Review{
		OverallScore: 7,
		Strengths:    []string{"Code structure looks good!", "Following Vue conventions"},
		Improvements: []Improvement{{
			Issue:      "AI review temporarily unavailable",
			Severity:   "low",
			Suggestion: "Try the review again in a moment, or check Vue documentation for best practices",
		}},
		Encouragement: "Keep coding! Every line of code is a step forward in your Vue journey! 🚀",
		NextSteps:     []string{"Continue practicing", "Explore Vue documentation", "Try building a small project"},
	}
}
