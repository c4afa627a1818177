// Package profile aggregates evaluated challenge results into the
// learner's skill profile and game statistics.
package profile

import (
	"context"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/store"
)

// Storage keys.
const (
	ProfileKey = "vue-game-profile"
	StateKey   = "vue-game-state"
)

// Topics are the tracked skill areas.
var Topics = []string{"components", "reactivity", "lifecycle", "composition", "routing", "state"}

const (
	strengthThreshold = 80
	growthThreshold   = 60
	maxGainPerResult  = 5.0
)

// Profile is the learner's skill record.
type Profile struct {
	CurrentLevel        int                `json:"currentLevel"`
	SkillAreas          map[string]float64 `json:"skillAreas"`
	LearningStyle       string             `json:"learningStyle"`
	PreferredDifficulty string             `json:"preferredDifficulty"`
	CompletedChallenges []string           `json:"completedChallenges"`
	GrowthAreas         []string           `json:"commonMistakes"`
	Strengths           []string           `json:"strengths"`
}

// GameState holds the running game statistics.
type GameState struct {
	CurrentStreak       int     `json:"currentStreak"`
	TotalPoints         int     `json:"totalPoints"`
	HintsUsed           int     `json:"hintsUsed"`
	ChallengesCompleted int     `json:"challengesCompleted"`
	AverageTime         float64 `json:"averageTime"`
	SessionStartTime    int64   `json:"sessionStartTime"`
}

// Outcome is the part of an evaluation the aggregator consumes.
type Outcome struct {
	Score        int
	Passed       bool
	PointsEarned int
}

// DefaultProfile returns a new learner's profile.
func DefaultProfile() Profile {
	areas := make(map[string]float64, len(Topics))
	for _, t := range Topics {
		areas[t] = 0
	}
	return Profile{
		CurrentLevel:        1,
		SkillAreas:          areas,
		LearningStyle:       "visual",
		PreferredDifficulty: "adaptive",
		CompletedChallenges: []string{},
		GrowthAreas:         []string{},
		Strengths:           []string{},
	}
}

// Aggregator owns the profile and game state.
type Aggregator struct {
	mu       sync.Mutex
	profDoc  *store.Document[Profile]
	stateDoc *store.Document[GameState]
	profile  Profile
	state    GameState
	log      *zap.Logger
}

// New loads the profile and game state from gw, merging stored records
// over the defaults. now may be nil.
func New(ctx context.Context, gw store.Gateway, log *zap.Logger, now func() time.Time) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	log = log.Named("profile")
	freshState := func() GameState { return GameState{SessionStartTime: now().UnixMilli()} }

	a := &Aggregator{
		profDoc:  store.NewDocument[Profile](gw, ProfileKey, store.MergeCodec[Profile]{Defaults: DefaultProfile}, DefaultProfile, log),
		stateDoc: store.NewDocument[GameState](gw, StateKey, store.MergeCodec[GameState]{Defaults: freshState}, freshState, log),
		log:      log,
	}
	a.profile = fillProfile(a.profDoc.Load(ctx))
	a.state = a.stateDoc.Load(ctx)
	return a
}

func fillProfile(p Profile) Profile {
	if p.SkillAreas == nil {
		p.SkillAreas = DefaultProfile().SkillAreas
	}
	if p.CompletedChallenges == nil {
		p.CompletedChallenges = []string{}
	}
	if p.GrowthAreas == nil {
		p.GrowthAreas = []string{}
	}
	if p.Strengths == nil {
		p.Strengths = []string{}
	}
	return p
}

// ApplyEvaluation folds one evaluated submission into the profile and
// returns the updated profile.
//
// Each concept that is a tracked skill area gains score/100*5, capped at
// 100. Concepts are added to Strengths at score >= 80 and to GrowthAreas
// below 60; neither list ever shrinks.
func (a *Aggregator) ApplyEvaluation(ctx context.Context, o Outcome, challengeID string, concepts []string, timeSpent float64) Profile {
	a.mu.Lock()
	defer a.mu.Unlock()

	gain := float64(o.Score) / 100 * maxGainPerResult
	for _, c := range concepts {
		if cur, ok := a.profile.SkillAreas[c]; ok {
			a.profile.SkillAreas[c] = math.Min(100, cur+gain)
		}
	}
	a.profile.CurrentLevel = levelFor(a.profile.SkillAreas)

	switch {
	case o.Score >= strengthThreshold:
		a.profile.Strengths = appendUnique(a.profile.Strengths, concepts...)
	case o.Score < growthThreshold:
		a.profile.GrowthAreas = appendUnique(a.profile.GrowthAreas, concepts...)
	}
	if challengeID != "" {
		a.profile.CompletedChallenges = appendUnique(a.profile.CompletedChallenges, challengeID)
	}

	a.state.ChallengesCompleted++
	a.state.TotalPoints += o.PointsEarned
	a.state.AverageTime = (a.state.AverageTime + timeSpent) / 2
	if o.Passed || o.Score >= growthThreshold {
		a.state.CurrentStreak++
	} else {
		a.state.CurrentStreak = 0
	}

	a.saveLocked(ctx)
	a.log.Info("evaluation applied",
		zap.String("challenge", challengeID),
		zap.Int("score", o.Score),
		zap.Int("level", a.profile.CurrentLevel),
		zap.Int("streak", a.state.CurrentStreak))
	return a.copyProfileLocked()
}

func levelFor(areas map[string]float64) int {
	if len(areas) == 0 {
		return 1
	}
	var sum float64
	for _, v := range areas {
		sum += v
	}
	lvl := int(math.Floor(sum/float64(len(areas))/10)) + 1
	return min(max(lvl, 1), 10)
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		if !slices.Contains(list, it) {
			list = append(list, it)
		}
	}
	return list
}

func (a *Aggregator) saveLocked(ctx context.Context) {
	a.profDoc.Save(ctx, a.profile)
	a.stateDoc.Save(ctx, a.state)
}

// RecordHint counts a hint request.
func (a *Aggregator) RecordHint(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.HintsUsed++
	a.stateDoc.Save(ctx, a.state)
}

// RecentSuccessRate estimates recent performance from the streak: 0.5
// before any challenge, otherwise min(1, streak/min(5,n)*0.8+0.2).
func (a *Aggregator) RecentSuccessRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return successRate(a.state)
}

func successRate(s GameState) float64 {
	recent := min(5, s.ChallengesCompleted)
	if recent <= 0 {
		return 0.5
	}
	return math.Min(1, float64(s.CurrentStreak)/float64(recent)*0.8+0.2)
}

// TopicSkill returns the score for topic, 0 for untracked topics.
func (a *Aggregator) TopicSkill(topic string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profile.SkillAreas[topic]
}

// Profile returns a copy of the profile.
func (a *Aggregator) Profile() Profile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyProfileLocked()
}

func (a *Aggregator) copyProfileLocked() Profile {
	p := a.profile
	p.SkillAreas = maps.Clone(a.profile.SkillAreas)
	p.CompletedChallenges = slices.Clone(a.profile.CompletedChallenges)
	p.GrowthAreas = slices.Clone(a.profile.GrowthAreas)
	p.Strengths = slices.Clone(a.profile.Strengths)
	return p
}

// GameState returns a copy of the game statistics.
func (a *Aggregator) GameState() GameState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Snapshot returns both records and the derived success rate from one
// consistent read.
func (a *Aggregator) Snapshot() (Profile, GameState, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyProfileLocked(), a.state, successRate(a.state)
}

// Reset restores both records to their defaults.
func (a *Aggregator) Reset(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profile = fillProfile(a.profDoc.Reset(ctx))
	a.state = a.stateDoc.Reset(ctx)
}

// ApplyChange adopts a profile or game state written elsewhere.
func (a *Aggregator) ApplyChange(c store.Change) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.profDoc.ApplyChange(c); ok {
		a.profile = fillProfile(p)
		return true
	}
	if s, ok := a.stateDoc.ApplyChange(c); ok {
		a.state = s
		return true
	}
	return false
}
