package challenge

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// template is static challenge content used when generation fails.
type template struct {
	Title        string
	Description  string
	Objective    string
	Instructions []string
	StarterCode  string
	Solution     string
	Concepts     []string
	Hints        []string
}

var templates = map[string][]template{
	"components": {{
		Title:       "Create a Welcome Component",
		Description: "Build a Vue component that displays a personalized welcome message",
		Objective:   "Learn basic component structure and template syntax",
		Instructions: []string{
			"Create a template with a welcome message",
			"Add a script section with component logic",
			"Use Vue's template interpolation",
		},
		StarterCode: `<template>
  <!-- Add your welcome message here -->
</template>

<script setup>
// Define your component logic
</script>`,
		Solution: `<template>
  <div class="welcome">
    <h1>Welcome to Vue!</h1>
    <p>Hello, {{ name }}!</p>
  </div>
</template>

<script setup>
import { ref } from 'vue'

const name = ref('Vue Developer')
</script>`,
		Concepts: []string{"components", "template", "interpolation"},
		Hints: []string{
			"Remember to use {{ }} for displaying data in templates",
			"The script setup syntax is the modern way to write Vue components",
		},
	}},
	"reactivity": {{
		Title:       "Counter Component",
		Description: "Create a reactive counter that increments when clicked",
		Objective:   "Understand Vue's reactivity system and event handling",
		Instructions: []string{
			"Create a counter variable using ref()",
			"Display the counter value in the template",
			"Add a button that increments the counter",
		},
		StarterCode: `<template>
  <!-- Add your counter UI here -->
</template>

<script setup>
import { ref } from 'vue'

// Create your reactive counter
</script>`,
		Solution: `<template>
  <div class="counter">
    <p>Count: {{ count }}</p>
    <button @click="increment">+</button>
  </div>
</template>

<script setup>
import { ref } from 'vue'

const count = ref(0)

const increment = () => {
  count.value++
}
</script>`,
		Concepts: []string{"reactivity", "ref", "event-handling"},
		Hints: []string{
			"Use ref() to create reactive variables",
			"Remember to use .value when modifying ref variables in script",
		},
	}},
}

// Fallback returns a static challenge for topic, using the components
// templates for topics without their own. The result is as complete as an
// enriched one and is marked as not AI generated.
func Fallback(topic string, difficulty float64, ec EnrichContext) Challenge {
	set, ok := templates[topic]
	if !ok {
		set = templates["components"]
	}
	t := set[rand.IntN(len(set))]

	obj := map[string]any{
		"id":           "fallback-" + uuid.NewString(),
		"title":        t.Title,
		"description":  t.Description,
		"objective":    t.Objective,
		"instructions": toAny(t.Instructions),
		"starterCode":  t.StarterCode,
		"solution":     t.Solution,
		"concepts":     toAny(t.Concepts),
		"hints":        toAny(t.Hints),
	}
	ec.IsAIGenerated = false
	return Enrich(obj, topic, difficulty, ec)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// FallbackEvaluation scores code by structure alone: 50 points each for a
// template and a script section.
func FallbackEvaluation(code string) Evaluation {
	hasTemplate := strings.Contains(code, "<template>")
	hasScript := strings.Contains(code, "<script")

	score := 0
	if hasTemplate {
		score += 50
	}
	if hasScript {
		score += 50
	}

	fb := Feedback{
		Strengths:    []string{},
		Improvements: []string{},
		Suggestions:  []string{"Keep practicing Vue fundamentals"},
	}
	if hasTemplate {
		fb.Strengths = append(fb.Strengths, "Good template structure")
	} else {
		fb.Improvements = append(fb.Improvements, "Add a template section")
	}

	return Evaluation{
		Score:    score,
		Passed:   score >= 60,
		Feedback: fb,
		CodeAnalysis: CodeAnalysis{
			Correctness:   float64(score) / 10,
			BestPractices: 5,
			CodeQuality:   5,
			Performance:   5,
		},
		NextSteps:     []string{"Continue learning Vue basics"},
		Encouragement: "Great effort! Keep building your Vue skills! 🌟",
		PointsEarned:  max(25, score),
		Badges:        []string{},
	}
}

const fallbackHintText = "Try breaking down the problem into smaller steps. Remember that Vue components need both template and script sections!"

var encouragements = []string{
	"You're making great progress! 🌟",
	"Every expert was once a beginner. Keep going! 🚀",
	"Learning Vue is like building with LEGO - piece by piece! 🧩",
	"You've got this! The Vue community believes in you! 💪",
	"Remember: progress, not perfection! ✨",
}

// Encouragement picks a random motivational line.
func Encouragement() string {
	return encouragements[rand.IntN(len(encouragements))]
}

// FallbackHint is the static hint used when the model is unavailable.
func FallbackHint(previous int) Hint {
	return Hint{
		Text:          fallbackHintText,
		Number:        previous + 1,
		Encouragement: "You've got this! Every expert was once a beginner. 🚀",
	}
}

// FallbackLearningPath is the static beginner path.
func FallbackLearningPath() LearningPath {
	return LearningPath{
		PathName:      "Vue Fundamentals Journey",
		Description:   "Master the essential concepts of Vue.js development",
		EstimatedTime: "60 minutes",
		Difficulty:    "beginner",
		Challenges: []PathEntry{
			{
				Topic:         "components",
				Title:         "Your First Component",
				Description:   "Learn to create and use Vue components",
				EstimatedTime: "15 minutes",
				Priority:      "high",
				Reasoning:     "Components are the foundation of Vue applications",
			},
			{
				Topic:         "reactivity",
				Title:         "Reactive Data Magic",
				Description:   "Understand Vue's reactivity system",
				EstimatedTime: "20 minutes",
				Priority:      "high",
				Reasoning:     "Reactivity is what makes Vue applications dynamic",
			},
		},
		LearningObjectives: []string{"Create Vue components", "Understand reactivity", "Build interactive UIs"},
		Motivation:         "You're on the path to Vue mastery! Each challenge builds your skills. 🚀",
	}
}
