// Package challenge builds practice challenges from model output, scores
// submissions and produces hints and learning paths. Every operation
// degrades to static content when the model is unavailable or its output
// cannot be recovered.
package challenge

import "time"

// Challenge is a schema-complete practice exercise.
type Challenge struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Objective     string       `json:"objective"`
	Difficulty    float64      `json:"difficulty"`
	EstimatedTime string       `json:"estimatedTime"`
	Instructions  []string     `json:"instructions"`
	Hints         []string     `json:"hints"`
	StarterCode   string       `json:"starterCode"`
	Solution      string       `json:"solution"`
	Concepts      []string     `json:"concepts"`
	TestCases     []TestCase   `json:"testCases"`
	Resources     []Resource   `json:"resources"`
	GameElements  GameElements `json:"gameElements"`
	Metadata      Metadata     `json:"metadata"`
}

type TestCase struct {
	Description string `json:"description"`
	Input       string `json:"input"`
	Expected    string `json:"expected"`
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// GameElements are the rewards derived from difficulty and learner state.
type GameElements struct {
	PointsReward     int      `json:"pointsReward"`
	BonusObjectives  []string `json:"bonusObjectives"`
	Achievements     []string `json:"achievements"`
	DifficultyRating float64  `json:"difficultyRating"`
	EstimatedXP      int      `json:"estimatedXP"`
}

type Metadata struct {
	GeneratedAt   time.Time `json:"generatedAt"`
	AdaptedFor    int       `json:"adaptedFor"`
	Topic         string    `json:"topic"`
	IsAIGenerated bool      `json:"isAIGenerated"`
}

// Evaluation is the review of a submitted solution.
type Evaluation struct {
	Score         int          `json:"score"`
	Passed        bool         `json:"passed"`
	Feedback      Feedback     `json:"feedback"`
	CodeAnalysis  CodeAnalysis `json:"codeAnalysis"`
	NextSteps     []string     `json:"nextSteps"`
	Encouragement string       `json:"encouragement"`
	PointsEarned  int          `json:"pointsEarned"`
	Badges        []string     `json:"badges"`
	IsAIGenerated bool         `json:"isAIGenerated"`
}

type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Suggestions  []string `json:"suggestions"`
}

// CodeAnalysis scores are 0-10.
type CodeAnalysis struct {
	Correctness   float64 `json:"correctness"`
	BestPractices float64 `json:"bestPractices"`
	CodeQuality   float64 `json:"codeQuality"`
	Performance   float64 `json:"performance"`
}

// Hint is one nudge toward a solution.
type Hint struct {
	Text          string `json:"hint"`
	Number        int    `json:"hintNumber"`
	Encouragement string `json:"encouragement"`
}

// LearningPath is a recommended sequence of challenges.
type LearningPath struct {
	PathName           string      `json:"pathName"`
	Description        string      `json:"description"`
	EstimatedTime      string      `json:"estimatedTime"`
	Difficulty         string      `json:"difficulty"`
	Challenges         []PathEntry `json:"challenges"`
	LearningObjectives []string    `json:"learningObjectives"`
	Motivation         string      `json:"motivation"`
}

type PathEntry struct {
	Topic         string `json:"topic"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`
	Priority      string `json:"priority"`
	Reasoning     string `json:"reasoning"`
}

// BatchEntry is one requested topic in a batch. Extra carries whatever
// the caller attached to the request and is returned untouched.
type BatchEntry struct {
	Topic string         `json:"topic"`
	Extra map[string]any `json:"extra,omitempty"`
}

// BatchResult pairs a generated challenge with the entry that asked for it.
type BatchResult struct {
	Challenge
	Meta BatchEntry `json:"_meta"`
}
