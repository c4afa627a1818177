package challenge

import "github.com/abhisek/vuequest/internal/llm"

// Config controls the Service.
type Config struct {
	Challenge    llm.Budget
	Evaluation   llm.Budget
	Hint         llm.Budget
	LearningPath llm.Budget

	// BatchConcurrency caps in-flight requests in GenerateBatch. Zero
	// means no cap.
	BatchConcurrency int
}

// DefaultConfig takes each budget from its llm.Purpose.
func DefaultConfig() Config {
	return Config{
		Challenge:        llm.PurposeChallenge.Budget(),
		Evaluation:       llm.PurposeEvaluation.Budget(),
		Hint:             llm.PurposeHint.Budget(),
		LearningPath:     llm.PurposeLearningPath.Budget(),
		BatchConcurrency: 4,
	}
}
