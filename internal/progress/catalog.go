package progress

import (
	"maps"
	"slices"
)

// Section is one tutorial section that can be marked complete.
type Section struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	EstimatedTime string `json:"estimatedTime"`
	Difficulty    string `json:"difficulty"`
}

// Achievement is a permanent badge.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Category    string `json:"category"`
}

// Catalog is the static content the progress store measures against.
type Catalog struct {
	Sections     []Section
	Achievements []Achievement

	// UnlockRules maps a section id to the achievement its completion grants.
	UnlockRules map[string]string

	// CompletionAchievement is granted once every section is complete.
	CompletionAchievement string
}

// Clone returns a deep copy.
func (c Catalog) Clone() Catalog {
	c.Sections = slices.Clone(c.Sections)
	c.Achievements = slices.Clone(c.Achievements)
	c.UnlockRules = maps.Clone(c.UnlockRules)
	return c
}

func (c Catalog) section(id string) (Section, bool) {
	for _, s := range c.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

func (c Catalog) achievement(id string) (Achievement, bool) {
	for _, a := range c.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// DefaultCatalog returns the built-in tutorial catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Sections: []Section{
			{
				ID:            "components-templates",
				Title:         "Dancing LEGO Blocks & Magic Recipe Cards",
				Description:   "Learn how dancing LEGO blocks (components) use magic recipe cards (templates) to build amazing websites",
				Icon:          "🧩",
				EstimatedTime: "15 min",
				Difficulty:    "Beginner",
			},
			{
				ID:            "reactivity-data",
				Title:         "Psychic Mirrors & Mind-Reading Assistants",
				Description:   "Master the art of psychic mirrors and mind-reading assistants for instant data updates",
				Icon:          "🔮",
				EstimatedTime: "20 min",
				Difficulty:    "Beginner",
			},
			{
				ID:            "composition-api-deep",
				Title:         "Mad Scientist Laboratory Adventures",
				Description:   "Master the art of potion mixing in Dr. Vue's laboratory with the Composition API",
				Icon:          "🧪",
				EstimatedTime: "25 min",
				Difficulty:    "Intermediate",
			},
			{
				ID:            "event-handling",
				Title:         "Telephone Operators & Message Delivery Service",
				Description:   "Learn how cosmic telephone operators handle all communication between users and your app",
				Icon:          "📞",
				EstimatedTime: "18 min",
				Difficulty:    "Beginner",
			},
			{
				ID:            "directives-lifecycle",
				Title:         "Magic Wands & Component Life Stories",
				Description:   "Master the magic wands (directives) and learn the life stories of components",
				Icon:          "⚡",
				EstimatedTime: "22 min",
				Difficulty:    "Intermediate",
			},
			{
				ID:            "advanced-patterns",
				Title:         "Superhero Team Assembly & Master Strategies",
				Description:   "Join the Avengers Academy and master the most advanced Vue 3 patterns and techniques",
				Icon:          "🦸",
				EstimatedTime: "30 min",
				Difficulty:    "Advanced",
			},
		},
		Achievements: []Achievement{
			{ID: "first-component", Title: "LEGO Master", Description: "Created your first dancing LEGO block component!", Icon: "🧩", Category: "components"},
			{ID: "reactive-master", Title: "Psychic Mirror Expert", Description: "Mastered the art of mind-reading with reactivity!", Icon: "🔮", Category: "reactivity"},
			{ID: "composition-expert", Title: "Mad Scientist", Description: "Successfully mixed your first function potions!", Icon: "🧪", Category: "composition-api"},
			{ID: "event-handler", Title: "Event Whisperer", Description: "Learned to communicate with user interactions!", Icon: "⚡", Category: "events"},
			{ID: "lifecycle-guru", Title: "Lifecycle Sage", Description: "Mastered the birth, life, and death of components!", Icon: "🌱", Category: "lifecycle"},
			{ID: "vue-master", Title: "Vue Master", Description: "Completed all tutorial sections! You are now a Vue wizard!", Icon: "🧙", Category: "completion"},
		},
		UnlockRules: map[string]string{
			"components-templates": "first-component",
			"reactivity-data":      "reactive-master",
			"composition-api-deep": "composition-expert",
			"event-handling":       "event-handler",
			"directives-lifecycle": "lifecycle-guru",
		},
		CompletionAchievement: "vue-master",
	}
}
