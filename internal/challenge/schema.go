package challenge

import "github.com/abhisek/vuequest/internal/llm"

func stringArray(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

func score10(desc string) map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 10, "description": desc}
}

// EvaluationSchema is the structured output requested for code reviews.
var EvaluationSchema = &llm.Schema{
	Name:        "code-evaluation",
	Description: "Review of a learner's Vue solution",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "Overall score",
			},
			"passed": map[string]any{
				"type":        "boolean",
				"description": "Whether the solution meets the objective",
			},
			"feedback": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"strengths":    stringArray("What they did well"),
					"improvements": stringArray("Specific areas to improve"),
					"suggestions":  stringArray("Actionable improvement suggestions"),
				},
				"required":             []any{"strengths", "improvements", "suggestions"},
				"additionalProperties": false,
			},
			"codeAnalysis": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"correctness":   score10("Does it solve the problem"),
					"bestPractices": score10("Proper Vue 3 patterns"),
					"codeQuality":   score10("Clean, readable, maintainable"),
					"performance":   score10("Efficient implementation"),
				},
				"required":             []any{"correctness", "bestPractices", "codeQuality", "performance"},
				"additionalProperties": false,
			},
			"nextSteps":     stringArray("What to learn next"),
			"encouragement": map[string]any{"type": "string"},
			"pointsEarned": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 150,
			},
			"badges": stringArray("Badges earned"),
		},
		"required": []any{
			"score", "passed", "feedback", "codeAnalysis",
			"nextSteps", "encouragement", "pointsEarned", "badges",
		},
		"additionalProperties": false,
	},
}
