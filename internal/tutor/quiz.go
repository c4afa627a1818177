package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/llm"
)

// Question is one multiple-choice question.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	Topic         string   `json:"topic"`
	MemoryHint    string   `json:"memoryHint"`
}

type Quiz struct {
	Questions     []Question `json:"questions"`
	IsAIGenerated bool       `json:"isAIGenerated"`
}

// QuizRequest describes the quiz to build. Difficulty is 1-5.
type QuizRequest struct {
	Topic           string
	Difficulty      int
	CompletedTopics []string
	StrugglingAreas []string
}

// QuizSchema is the structured output requested for quizzes.
var QuizSchema = &llm.Schema{
	Name:        "vue-quiz",
	Description: "Multiple-choice quiz questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":       map[string]any{"type": "string"},
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 2,
						},
						"correctAnswer": map[string]any{"type": "integer", "minimum": 0},
						"explanation":   map[string]any{"type": "string"},
						"difficulty":    map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced"}},
						"topic":         map[string]any{"type": "string"},
						"memoryHint":    map[string]any{"type": "string"},
					},
					"required":             []any{"id", "question", "options", "correctAnswer", "explanation", "difficulty", "topic", "memoryHint"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// QuizMaker builds quizzes.
type QuizMaker struct {
	base
}

func NewQuizMaker(p llm.Provider, log *zap.Logger) *QuizMaker {
	return &QuizMaker{base: newBase(p, log, "quiz")}
}

// Generate builds a quiz. Questions whose answer index is out of range are
// dropped; a quiz left with none falls back.
func (q *QuizMaker) Generate(ctx context.Context, r QuizRequest) Quiz {
	if r.Topic == "" {
		r.Topic = "general"
	}
	if r.Difficulty < 1 || r.Difficulty > 5 {
		r.Difficulty = 3
	}
	req := llm.PurposeQuiz.Budget().Request(
		quizSystemPrompt(r),
		fmt.Sprintf("Generate a personalized Vue.js quiz focusing on %s at difficulty level %d", r.Topic, r.Difficulty),
	)
	req.Schema = QuizSchema

	text, err := q.generate(ctx, llm.PurposeQuiz, req)
	if err == nil {
		var quiz Quiz
		if err = q.decode(text, QuizSchema, &quiz); err == nil {
			quiz.Questions = validQuestions(quiz.Questions)
			if len(quiz.Questions) > 0 {
				quiz.IsAIGenerated = true
				return quiz
			}
			err = &llm.ErrInvalidResponse{Err: errors.New("no usable questions")}
		}
	}
	q.fallback(llm.PurposeQuiz, err)
	return FallbackQuiz(r.Topic)
}

func validQuestions(qs []Question) []Question {
	out := qs[:0]
	for _, q := range qs {
		if q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options) {
			out = append(out, q)
		}
	}
	return out
}

func quizSystemPrompt(r QuizRequest) string {
	orNone := func(list []string) string {
		if len(list) == 0 {
			return "none"
		}
		return strings.Join(list, ", ")
	}
	return fmt.Sprintf(`You are an expert Vue.js educator creating personalized quiz questions. Generate engaging, educational quiz questions that test understanding, not just memorization.

REQUIREMENTS:
- Create 5 multiple-choice questions
- Focus on practical Vue 3 concepts
- Include real-world scenarios
- Vary question types (conceptual, practical, debugging)
- Use the fun memory palace style when appropriate

USER CONTEXT:
- Completed topics: %s
- Struggling areas: %s
- Target topic: %s
- Difficulty level: %d/5

Return JSON {"questions": [...]} where each question has id, question, four options,
correctAnswer (index into options), explanation, difficulty (beginner|intermediate|advanced),
topic and memoryHint.`,
		orNone(r.CompletedTopics), orNone(r.StrugglingAreas), r.Topic, r.Difficulty)
}

// FallbackQuiz is a single static question about topic.
func FallbackQuiz(topic string) Quiz {
	return Quiz{Questions: []Question{{
		ID:       "fallback_1",
		Question: "What makes Vue.js components like dancing LEGO blocks?",
		Options: []string{
			"They can be reused and combined to build complex UIs",
			"They are made of plastic",
			"They only work in Denmark",
			"They make clicking sounds",
		},
		CorrectAnswer: 0,
		Explanation:   "Vue components are reusable building blocks that can be combined to create complex user interfaces, just like LEGO blocks!",
		Difficulty:    "beginner",
		Topic:         topic,
		MemoryHint:    "Remember: Components = Dancing LEGO blocks that build amazing apps! 🧩💃",
	}}}
}
