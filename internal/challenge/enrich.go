package challenge

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// EnrichContext is the learner state an enriched challenge is stamped
// with.
type EnrichContext struct {
	Level               int
	ChallengesCompleted int
	Streak              int
	Now                 time.Time
	IsAIGenerated       bool
}

var bonusObjectives = map[string][]string{
	"components": {"Add custom styling", "Include error handling", "Add prop validation"},
	"reactivity": {"Use computed properties", "Implement watchers", "Optimize reactivity"},
	"lifecycle":  {"Add cleanup logic", "Handle edge cases", "Optimize performance"},
}

var genericObjectives = []string{"Write clean code", "Add comments", "Follow Vue style guide"}

// BonusObjectives returns the optional extra goals for topic.
func BonusObjectives(topic string) []string {
	if objs, ok := bonusObjectives[topic]; ok {
		return append([]string(nil), objs...)
	}
	return append([]string(nil), genericObjectives...)
}

// AchievementTriggers lists the achievements a new challenge offers given
// the learner's history.
func AchievementTriggers(challengesCompleted, streak int) []string {
	out := []string{}
	if challengesCompleted == 0 {
		out = append(out, "first-challenge")
	}
	if streak >= 5 {
		out = append(out, "streak-master")
	}
	return out
}

// Enrich fills every field of a challenge from a partially populated
// object, which may be nil. Fields that are missing or of the wrong type
// take a default derived from topic; difficulty is the resolved request
// and drives the rewards.
func Enrich(obj map[string]any, topic string, difficulty float64, ec EnrichContext) Challenge {
	if math.IsNaN(difficulty) || difficulty <= 0 {
		difficulty = DefaultDifficulty
	}
	now := ec.Now
	if now.IsZero() {
		now = time.Now()
	}
	level := ec.Level
	if level == 0 {
		level = 1
	}

	c := Challenge{
		ID:            firstString(obj, "id").or(fmt.Sprintf("%s-%d", topic, now.UnixMilli())),
		Title:         firstString(obj, "title").or(capitalize(topic) + " Challenge"),
		Description:   firstString(obj, "description", "objective").or("Learn about " + topic),
		Objective:     firstString(obj, "objective", "description").or("Master " + topic + " concepts"),
		Difficulty:    modelDifficulty(obj, difficulty),
		EstimatedTime: firstString(obj, "estimatedTime").or("10 minutes"),
		Instructions:  listOr(obj, "instructions", "instruction", "Complete the "+topic+" challenge"),
		Hints:         listOr(obj, "hints", "hint", "Think about "+topic+" concepts in Vue"),
		StarterCode:   firstString(obj, "starterCode", "code").or("// Add your Vue code here"),
		Solution:      firstString(obj, "solution", "expectedCode").or("// Solution will be provided"),
		Concepts:      stringList(obj["concepts"], []string{topic}),
		TestCases:     objectList[TestCase](obj["testCases"]),
		Resources:     objectList[Resource](obj["resources"]),
		GameElements: GameElements{
			PointsReward:     int(math.Floor(difficulty*20 + 30)),
			BonusObjectives:  BonusObjectives(topic),
			Achievements:     AchievementTriggers(ec.ChallengesCompleted, ec.Streak),
			DifficultyRating: difficulty,
			EstimatedXP:      int(math.Floor(difficulty * 15)),
		},
		Metadata: Metadata{
			GeneratedAt:   now,
			AdaptedFor:    level,
			Topic:         topic,
			IsAIGenerated: ec.IsAIGenerated,
		},
	}
	return c
}

type maybeString string

func (m maybeString) or(def string) string {
	if m == "" {
		return def
	}
	return string(m)
}

// firstString returns the first non-empty string value among keys.
func firstString(obj map[string]any, keys ...string) maybeString {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return maybeString(s)
		}
	}
	return ""
}

// modelDifficulty keeps a numeric difficulty supplied by the model,
// clamped to [1,10], and otherwise uses def.
func modelDifficulty(obj map[string]any, def float64) float64 {
	switch v := obj["difficulty"].(type) {
	case float64:
		if !math.IsNaN(v) {
			return clamp(v)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsNaN(f) {
			return clamp(f)
		}
	}
	return def
}

// listOr reads obj[key] as a list, falling back to a one-element list of
// obj[singular] or def.
func listOr(obj map[string]any, key, singular, def string) []string {
	if _, ok := obj[key].([]any); ok {
		return stringList(obj[key], nil)
	}
	return []string{firstString(obj, singular).or(def)}
}

func stringList(v any, def []string) []string {
	arr, ok := v.([]any)
	if !ok {
		return def
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if e == nil {
			continue
		}
		out = append(out, asString(e))
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// objectList decodes each object element of v into T; other elements are
// dropped. Scalar field values are stringified.
func objectList[T any](v any) []T {
	arr, _ := v.([]any)
	out := make([]T, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		flat := make(map[string]string, len(m))
		for k, fv := range m {
			flat[k] = asString(fv)
		}
		b, err := json.Marshal(flat)
		if err != nil {
			continue
		}
		var item T
		if json.Unmarshal(b, &item) == nil {
			out = append(out, item)
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
