package challenge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/vuequest/internal/profile"
)

func challengeSystemPrompt(topic string, difficulty float64, p profile.Profile) string {
	return fmt.Sprintf(`You are an expert Vue.js instructor creating an interactive coding challenge.

CHALLENGE REQUIREMENTS:
- Topic: %s
- Difficulty: %g/10
- User's Vue experience: %d/10
- Learning style: %s

CHALLENGE FORMAT (return as JSON):
{
  "id": "unique-challenge-id",
  "title": "Engaging challenge title",
  "description": "Clear, motivating description of what to build",
  "objective": "Specific learning objective",
  "difficulty": %g,
  "estimatedTime": "5-15 minutes",
  "instructions": ["Step 1: Clear instruction", "Step 2: Another step"],
  "starterCode": "Vue component starter template",
  "solution": "Complete working solution",
  "testCases": [{"description": "Test description", "input": "test input", "expected": "expected output"}],
  "hints": ["Helpful hint without giving away solution", "Progressive hint that builds on previous"],
  "concepts": ["vue-concept-1", "vue-concept-2"],
  "resources": [{"title": "Relevant Vue docs", "url": "https://vuejs.org/..."}]
}

CHALLENGE GUIDELINES:
- Make it practical and relevant to real Vue development
- Include clear success criteria
- Provide progressive hints that don't spoil the solution
- Ensure the challenge builds on previous learning
- Make it engaging with a real-world scenario
- Include proper Vue 3 Composition API usage when appropriate`,
		topic, difficulty, p.CurrentLevel, p.LearningStyle, difficulty)
}

// challengeContext is the learner summary sent with a challenge request.
type challengeContext struct {
	UserLevel         int     `json:"userLevel"`
	TopicExperience   float64 `json:"topicExperience"`
	RecentPerformance float64 `json:"recentPerformance"`
	LearningStyle     string  `json:"learningStyle"`
	CompletedCount    int     `json:"completedCount"`
	CurrentStreak     int     `json:"currentStreak"`
}

func challengeUserMessage(topic string, cc challengeContext) string {
	b, _ := json.Marshal(cc)
	return fmt.Sprintf("Generate a %s challenge for my current skill level. Context: %s", topic, b)
}

func evaluationSystemPrompt(code string, c Challenge, timeSpent float64) string {
	return fmt.Sprintf(`You are an expert Vue.js code reviewer evaluating a student's solution.

CHALLENGE DETAILS:
Title: %s
Objective: %s
Expected Solution: %s

STUDENT'S CODE:
%s

TIME SPENT: %g seconds

EVALUATION CRITERIA:
1. Correctness - Does it solve the problem?
2. Vue Best Practices - Proper Vue 3 patterns?
3. Code Quality - Clean, readable, maintainable?
4. Performance - Efficient implementation?
5. Learning Progress - Shows understanding of concepts?

Return JSON with score (0-100), passed, feedback {strengths, improvements, suggestions},
codeAnalysis {correctness, bestPractices, codeQuality, performance} each 0-10,
nextSteps, encouragement, pointsEarned (0-150) and badges.

Be encouraging and constructive. Focus on learning and improvement.`,
		c.Title, c.Objective, c.Solution, code, timeSpent)
}

func hintSystemPrompt(c Challenge, code string, previous []string) string {
	if strings.TrimSpace(code) == "" {
		code = "No code written yet"
	}
	prev := "None"
	if len(previous) > 0 {
		prev = strings.Join(previous, "\n")
	}
	return fmt.Sprintf(`You are a helpful Vue.js tutor providing a hint for a student who is stuck.

CHALLENGE: %s
OBJECTIVE: %s
STUDENT'S CURRENT CODE:
%s

PREVIOUS HINTS GIVEN:
%s

HINT GUIDELINES:
- Don't give away the complete solution
- Guide them toward the next logical step
- Reference Vue concepts they should know
- Be encouraging and supportive
- Provide just enough information to get unstuck
- If they have no code, help them get started
- If they have some code, help them debug or improve

Return a helpful, encouraging hint that guides without spoiling the solution.`,
		c.Title, c.Objective, code, prev)
}

func learningPathSystemPrompt(p profile.Profile, goals []string, minutes int) string {
	areas, _ := json.Marshal(p.SkillAreas)
	orNone := func(list []string, none string) string {
		if len(list) == 0 {
			return none
		}
		return strings.Join(list, ", ")
	}
	return fmt.Sprintf(`Create a personalized Vue.js learning path for a student.

STUDENT PROFILE:
- Current Level: %d/10
- Skill Areas: %s
- Learning Style: %s
- Completed Challenges: %d
- Common Mistakes: %s
- Strengths: %s

USER GOALS: %s
TIME AVAILABLE: %d minutes

RETURN AS JSON:
{
  "pathName": "Personalized path name",
  "description": "What this path will accomplish",
  "estimatedTime": "%d minutes",
  "difficulty": "beginner|intermediate|advanced",
  "challenges": [
    {"topic": "vue-topic", "title": "Challenge title", "description": "What they'll learn",
     "estimatedTime": "10 minutes", "priority": "high|medium|low", "reasoning": "Why this challenge is recommended"}
  ],
  "learningObjectives": ["What they'll master"],
  "motivation": "Encouraging message about their journey"
}

Focus on their weak areas while building on their strengths.`,
		p.CurrentLevel, areas, p.LearningStyle, len(p.CompletedChallenges),
		orNone(p.GrowthAreas, "None identified yet"), orNone(p.Strengths, "Still assessing"),
		orNone(goals, "General Vue mastery"), minutes, minutes)
}
