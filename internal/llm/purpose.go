package llm

import (
	"context"
	"slices"
)

// Purpose labels what a request is for. It keys the token budgets, the
// usage ledger, the event log and the request metrics.
type Purpose string

const (
	PurposeChallenge    Purpose = "challenge"
	PurposeEvaluation   Purpose = "evaluation"
	PurposeHint         Purpose = "hint"
	PurposeLearningPath Purpose = "learning-path"
	PurposeTutorChat    Purpose = "tutor-chat"
	PurposeReview       Purpose = "code-review"
	PurposeQuiz         Purpose = "quiz"
	PurposeExplain      Purpose = "explain"

	PurposeUnknown Purpose = "unknown"
)

// Purposes lists every purpose the application sends, in display order.
var Purposes = []Purpose{
	PurposeChallenge, PurposeEvaluation, PurposeHint, PurposeLearningPath,
	PurposeTutorChat, PurposeReview, PurposeQuiz, PurposeExplain,
}

// Known reports whether p is one of Purposes.
func (p Purpose) Known() bool {
	return slices.Contains(Purposes, p)
}

// Budget is the output token cap and sampling temperature for a request.
type Budget struct {
	MaxTokens   int
	Temperature float64
}

// Evaluations and reviews run cold so scores stay repeatable; quizzes run
// hot so retakes differ.
var budgets = map[Purpose]Budget{
	PurposeChallenge:    {MaxTokens: 1500, Temperature: 0.7},
	PurposeEvaluation:   {MaxTokens: 1000, Temperature: 0.3},
	PurposeHint:         {MaxTokens: 200, Temperature: 0.6},
	PurposeLearningPath: {MaxTokens: 1200, Temperature: 0.7},
	PurposeTutorChat:    {MaxTokens: 500, Temperature: 0.7},
	PurposeReview:       {MaxTokens: 800, Temperature: 0.3},
	PurposeQuiz:         {MaxTokens: 1200, Temperature: 0.8},
	PurposeExplain:      {MaxTokens: 600, Temperature: 0.7},
}

var defaultBudget = Budget{MaxTokens: 1000, Temperature: 0.7}

// Budget returns the budget for p.
func (p Purpose) Budget() Budget {
	if b, ok := budgets[p]; ok {
		return b
	}
	return defaultBudget
}

// Request builds a single-turn request within b.
func (b Budget) Request(system, user string) Request {
	return SingleTurn(system, user, b.MaxTokens, b.Temperature)
}

// Apply fills in MaxTokens and Temperature on req where unset.
func (b Budget) Apply(req Request) Request {
	if req.MaxTokens <= 0 {
		req.MaxTokens = b.MaxTokens
	}
	if req.Temperature <= 0 {
		req.Temperature = b.Temperature
	}
	return req
}

type purposeKey struct{}

// WithPurpose tags ctx so decorators can attribute the request.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the tag set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return PurposeUnknown
}
