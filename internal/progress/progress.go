// Package progress tracks completed tutorial sections and unlocked
// achievements.
package progress

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/vuequest/internal/metrics"
	"github.com/abhisek/vuequest/internal/store"
)

// StorageKey is where the progress record is persisted.
const StorageKey = "vue-learning-progress"

// record is the persisted form. Timestamps are Unix milliseconds.
type record struct {
	CompletedSections    []string `json:"completedSections"`
	UnlockedAchievements []string `json:"unlockedAchievements"`
	StartDate            int64    `json:"startDate"`
	LastActivity         int64    `json:"lastActivity"`
	TotalTimeSpent       int      `json:"totalTimeSpent"`
}

// View is a read-only copy of the progress record.
type View struct {
	CompletedItems       []string  `json:"completedItems"`
	UnlockedAchievements []string  `json:"unlockedAchievements"`
	StartedAt            time.Time `json:"startedAt"`
	LastActivityAt       time.Time `json:"lastActivityAt"`
	TotalMinutesSpent    int       `json:"totalMinutesSpent"`
}

// Stats summarizes progress for display.
type Stats struct {
	CompletedSections     int    `json:"completedSections"`
	TotalSections         int    `json:"totalSections"`
	CompletionPercentage  int    `json:"completionPercentage"`
	AchievementsUnlocked  int    `json:"achievementsUnlocked"`
	TotalAchievements     int    `json:"totalAchievements"`
	AchievementPercentage int    `json:"achievementPercentage"`
	TimeSpent             string `json:"timeSpent"`
	CurrentStreak         int    `json:"currentStreak"`
	IsComplete            bool   `json:"isComplete"`
}

// Store owns the learner's progress record. All methods are safe for
// concurrent use; every mutation is saved before the method returns.
type Store struct {
	mu       sync.Mutex
	doc      *store.Document[record]
	catalog  Catalog
	log      *zap.Logger
	now      func() time.Time
	onUnlock []func(Achievement)

	completed    []string
	completedSet map[string]bool
	unlocked     []string
	unlockedSet  map[string]bool
	startedAt    time.Time
	lastActivity time.Time
	minutes      int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Store) { s.catalog = c.Clone() }
}

// WithUnlockHook registers fn to be called, outside the store's lock, for
// every newly unlocked achievement.
func WithUnlockHook(fn func(Achievement)) Option {
	return func(s *Store) { s.onUnlock = append(s.onUnlock, fn) }
}

// New loads the progress record from gw. A missing or corrupt record
// starts a fresh one.
func New(ctx context.Context, gw store.Gateway, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		catalog: DefaultCatalog(),
		log:     log.Named("progress"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.doc = store.NewDocument[record](gw, StorageKey, store.JSONCodec[record]{}, s.freshRecord, s.log)
	s.apply(s.doc.Load(ctx))
	return s
}

func (s *Store) freshRecord() record {
	now := s.now().UnixMilli()
	return record{StartDate: now, LastActivity: now}
}

func (s *Store) apply(r record) {
	now := s.now()
	s.completed, s.completedSet = dedup(r.CompletedSections)
	s.unlocked, s.unlockedSet = dedup(r.UnlockedAchievements)
	s.startedAt = fromMillis(r.StartDate, now)
	s.lastActivity = fromMillis(r.LastActivity, now)
	s.minutes = max(r.TotalTimeSpent, 0)
}

func (s *Store) record() record {
	return record{
		CompletedSections:    slices.Clone(s.completed),
		UnlockedAchievements: slices.Clone(s.unlocked),
		StartDate:            s.startedAt.UnixMilli(),
		LastActivity:         s.lastActivity.UnixMilli(),
		TotalTimeSpent:       s.minutes,
	}
}

func (s *Store) save(ctx context.Context) {
	s.doc.Save(ctx, s.record())
}

// MarkItemComplete completes a catalog section and applies the unlock
// rules. It reports whether this call newly completed the section;
// unknown ids are ignored.
func (s *Store) MarkItemComplete(ctx context.Context, id string) bool {
	s.mu.Lock()
	if s.completedSet[id] {
		s.mu.Unlock()
		return false
	}
	if _, ok := s.catalog.section(id); !ok {
		s.mu.Unlock()
		s.log.Warn("ignoring unknown section", zap.String("section", id))
		return false
	}

	s.completed = append(s.completed, id)
	s.completedSet[id] = true
	s.lastActivity = s.now()

	var granted []Achievement
	if a, ok := s.catalog.UnlockRules[id]; ok {
		granted = s.unlockLocked(a, granted)
	}
	if s.catalog.CompletionAchievement != "" && s.allCompleteLocked() {
		granted = s.unlockLocked(s.catalog.CompletionAchievement, granted)
	}
	s.save(ctx)
	s.mu.Unlock()

	s.log.Info("section completed", zap.String("section", id))
	s.notify(granted)
	return true
}

// MarkItemIncomplete removes a section from the completed set. Achievements
// already granted are kept.
func (s *Store) MarkItemIncomplete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.completedSet[id] {
		return false
	}
	delete(s.completedSet, id)
	s.completed = slices.DeleteFunc(s.completed, func(c string) bool { return c == id })
	s.lastActivity = s.now()
	s.save(ctx)
	return true
}

// IsItemComplete reports whether id is complete.
func (s *Store) IsItemComplete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedSet[id]
}

// UnlockAchievement grants a catalog achievement and reports whether it
// was newly granted.
func (s *Store) UnlockAchievement(ctx context.Context, id string) bool {
	s.mu.Lock()
	granted := s.unlockLocked(id, nil)
	if len(granted) > 0 {
		s.save(ctx)
	}
	s.mu.Unlock()

	s.notify(granted)
	return len(granted) > 0
}

func (s *Store) unlockLocked(id string, granted []Achievement) []Achievement {
	if s.unlockedSet[id] {
		return granted
	}
	a, ok := s.catalog.achievement(id)
	if !ok {
		s.log.Warn("ignoring unknown achievement", zap.String("achievement", id))
		return granted
	}
	s.unlocked = append(s.unlocked, id)
	s.unlockedSet[id] = true
	return append(granted, a)
}

func (s *Store) notify(granted []Achievement) {
	for _, a := range granted {
		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
		s.log.Info("achievement unlocked", zap.String("achievement", a.ID))
		for _, fn := range s.onUnlock {
			fn(a)
		}
	}
}

// IsAchievementUnlocked reports whether id has been granted.
func (s *Store) IsAchievementUnlocked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlockedSet[id]
}

func (s *Store) allCompleteLocked() bool {
	for _, sec := range s.catalog.Sections {
		if !s.completedSet[sec.ID] {
			return false
		}
	}
	return len(s.catalog.Sections) > 0
}

func (s *Store) completedInCatalogLocked() int {
	n := 0
	for _, sec := range s.catalog.Sections {
		if s.completedSet[sec.ID] {
			n++
		}
	}
	return n
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}

// CompletionPercentage is the share of catalog sections completed, 0-100.
func (s *Store) CompletionPercentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return percent(s.completedInCatalogLocked(), len(s.catalog.Sections))
}

// AchievementCount is the number of granted achievements.
func (s *Store) AchievementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unlocked)
}

// AchievementPercentage is the share of catalog achievements granted.
func (s *Store) AchievementPercentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.achievementPercentLocked()
}

func (s *Store) achievementPercentLocked() int {
	n := 0
	for _, a := range s.catalog.Achievements {
		if s.unlockedSet[a.ID] {
			n++
		}
	}
	return percent(n, len(s.catalog.Achievements))
}

// IsComplete reports whether every section is complete.
func (s *Store) IsComplete() bool {
	return s.CompletionPercentage() == 100
}

// CurrentStreak is 1 when there was activity within the last day.
func (s *Store) CurrentStreak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streakLocked()
}

func (s *Store) streakLocked() int {
	days := int(s.now().Sub(s.lastActivity) / (24 * time.Hour))
	if days <= 1 {
		return 1
	}
	return 0
}

// AddTimeSpent adds study minutes. Negative values are ignored.
func (s *Store) AddTimeSpent(ctx context.Context, minutes int) {
	if minutes <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minutes += minutes
	s.lastActivity = s.now()
	s.save(ctx)
}

// FormattedTimeSpent renders total study time as "1h 5m" or "5m".
func (s *Store) FormattedTimeSpent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return formatMinutes(s.minutes)
}

func formatMinutes(m int) string {
	if h := m / 60; h > 0 {
		return fmt.Sprintf("%dh %dm", h, m%60)
	}
	return fmt.Sprintf("%dm", m)
}

// Stats returns the derived progress summary.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := s.completedInCatalogLocked()
	pct := percent(done, len(s.catalog.Sections))
	return Stats{
		CompletedSections:     done,
		TotalSections:         len(s.catalog.Sections),
		CompletionPercentage:  pct,
		AchievementsUnlocked:  len(s.unlocked),
		TotalAchievements:     len(s.catalog.Achievements),
		AchievementPercentage: s.achievementPercentLocked(),
		TimeSpent:             formatMinutes(s.minutes),
		CurrentStreak:         s.streakLocked(),
		IsComplete:            pct == 100,
	}
}

// NextItem returns the first incomplete section in catalog order.
func (s *Store) NextItem() (Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sec := range s.catalog.Sections {
		if !s.completedSet[sec.ID] {
			return sec, true
		}
	}
	return Section{}, false
}

// RecentlyCompleted returns up to the last three completed sections in
// catalog order.
func (s *Store) RecentlyCompleted() []Section {
	s.mu.Lock()
	defer s.mu.Unlock()

	var done []Section
	for _, sec := range s.catalog.Sections {
		if s.completedSet[sec.ID] {
			done = append(done, sec)
		}
	}
	if len(done) > 3 {
		done = done[len(done)-3:]
	}
	return done
}

// AvailableAchievements lists catalog achievements not yet granted.
func (s *Store) AvailableAchievements() []Achievement {
	return s.filterAchievements(false)
}

// EarnedAchievements lists granted catalog achievements in catalog order.
func (s *Store) EarnedAchievements() []Achievement {
	return s.filterAchievements(true)
}

func (s *Store) filterAchievements(unlocked bool) []Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Achievement
	for _, a := range s.catalog.Achievements {
		if s.unlockedSet[a.ID] == unlocked {
			out = append(out, a)
		}
	}
	return out
}

// CompletedItems returns completed section ids in completion order.
func (s *Store) CompletedItems() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.completed)
}

// UnlockedAchievements returns granted achievement ids in grant order.
func (s *Store) UnlockedAchievements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.unlocked)
}

// Catalog returns a copy of the catalog the store measures against.
func (s *Store) Catalog() Catalog {
	return s.catalog.Clone()
}

// Snapshot returns a copy of the whole record.
func (s *Store) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		CompletedItems:       slices.Clone(s.completed),
		UnlockedAchievements: slices.Clone(s.unlocked),
		StartedAt:            s.startedAt,
		LastActivityAt:       s.lastActivity,
		TotalMinutesSpent:    s.minutes,
	}
}

// ResetAll replaces the record with a fresh one.
func (s *Store) ResetAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(s.freshRecord())
	s.save(ctx)
	s.log.Info("progress reset")
}

// ApplyChange adopts a record written by another process. It reports
// whether local state changed.
func (s *Store) ApplyChange(c store.Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.doc.ApplyChange(c)
	if ok {
		s.apply(r)
	}
	return ok
}

func dedup(ids []string) ([]string, map[string]bool) {
	set := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if set[id] {
			continue
		}
		set[id] = true
		out = append(out, id)
	}
	return out, set
}

func fromMillis(ms int64, fallback time.Time) time.Time {
	if ms <= 0 {
		return fallback
	}
	return time.UnixMilli(ms)
}
