package challenge

import (
	"math"
	"strings"
)

// Adaptive is the requested difficulty that asks for a computed value.
const Adaptive = "adaptive"

const (
	MinDifficulty     = 1.0
	MaxDifficulty     = 10.0
	DefaultDifficulty = 3.0
)

// Labels maps named difficulty levels to their numeric value.
var Labels = map[string]float64{
	"beginner":     2,
	"intermediate": 4,
	"advanced":     6,
	"expert":       8,
	"mr-robot":     10,
}

// AdaptiveInputs is the learner state the adaptive formula reads.
type AdaptiveInputs struct {
	TopicSkill        float64 // 0-100
	OverallLevel      int     // 1-10
	RecentSuccessRate float64 // 0-1; zero means unknown
	Streak            int
}

// ResolveDifficulty turns a requested difficulty into a number in [1,10].
// Labels map to their value; other input is read as a leading integer,
// clamped, defaulting to 3. "adaptive" computes the value from in.
func ResolveDifficulty(requested string, in AdaptiveInputs) float64 {
	if requested == Adaptive {
		return AdaptiveDifficulty(in)
	}
	if v, ok := Labels[requested]; ok {
		return v
	}
	n, ok := leadingInt(requested)
	if !ok {
		return DefaultDifficulty
	}
	return clamp(float64(n))
}

// AdaptiveDifficulty weighs topic skill (30%), overall level (40%), recent
// success (20%) and a streak bonus (up to 1 point), clamped to [1,10] and
// rounded to the nearest half.
func AdaptiveDifficulty(in AdaptiveInputs) float64 {
	level := in.OverallLevel
	if level == 0 {
		level = 1
	}
	rate := in.RecentSuccessRate
	if rate == 0 || math.IsNaN(rate) {
		rate = 0.5
	}
	streakBonus := math.Min(float64(in.Streak)*0.1, 1)

	raw := in.TopicSkill/10*3 + float64(level)/10*4 + rate*2 + streakBonus
	v := math.Round(clamp(raw)*2) / 2
	if math.IsNaN(v) {
		return DefaultDifficulty
	}
	return v
}

func clamp(v float64) float64 {
	return math.Max(MinDifficulty, math.Min(MaxDifficulty, v))
}

// leadingInt parses an optionally signed run of leading digits after
// whitespace, so "7 (hard)" and "7.5" both read as 7.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	sign := 1
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n < 1_000_000 {
			n = n*10 + int(r-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	return sign * n, true
}
