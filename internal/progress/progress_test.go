package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vuequest/internal/store"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestStore(t *testing.T, gw store.Gateway, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: t0}
	opts = append([]Option{WithClock(clk.Now)}, opts...)
	return New(context.Background(), gw, nil, opts...), clk
}

func TestMarkItemComplete_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, store.NewMemory())

	assert.True(t, s.MarkItemComplete(ctx, "event-handling"))
	assert.False(t, s.MarkItemComplete(ctx, "event-handling"))
	assert.Equal(t, []string{"event-handling"}, s.CompletedItems())
	assert.True(t, s.IsItemComplete("event-handling"))
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, store.NewMemory())

	cat := s.Catalog()
	cat.UnlockRules["components-templates"] = "vue-master"
	delete(cat.UnlockRules, "reactivity-data")
	cat.Sections[0].ID = "renamed"
	cat.Achievements = cat.Achievements[:0]

	assert.True(t, s.MarkItemComplete(ctx, "components-templates"))
	assert.True(t, s.IsAchievementUnlocked("first-component"))
	assert.False(t, s.IsAchievementUnlocked("vue-master"))
	assert.Equal(t, "components-templates", s.Catalog().Sections[0].ID)
	assert.Len(t, s.Catalog().Achievements, len(DefaultCatalog().Achievements))
}

func TestMarkItemComplete_UnknownSectionIgnored(t *testing.T) {
	s, _ := newTestStore(t, store.NewMemory())

	assert.False(t, s.MarkItemComplete(context.Background(), "no-such-section"))
	assert.Empty(t, s.CompletedItems())
}

func TestCompletionPercentage_MonotonicUntilReset(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, store.NewMemory())

	prev := s.CompletionPercentage()
	assert.Equal(t, 0, prev)
	for _, sec := range DefaultCatalog().Sections {
		s.MarkItemComplete(ctx, sec.ID)
		s.MarkItemComplete(ctx, sec.ID)
		cur := s.CompletionPercentage()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 100, prev)
	assert.True(t, s.IsComplete())

	s.ResetAll(ctx)
	assert.Equal(t, 0, s.CompletionPercentage())
	assert.Empty(t, s.UnlockedAchievements())
}

func TestCompletionPercentage_Rounds(t *testing.T) {
	s, _ := newTestStore(t, store.NewMemory())
	s.MarkItemComplete(context.Background(), "components-templates")

	// 1 of 6
	assert.Equal(t, 17, s.CompletionPercentage())
}

func TestCompletionPercentage_EmptyCatalog(t *testing.T) {
	s, _ := newTestStore(t, store.NewMemory(), WithCatalog(Catalog{}))
	assert.Equal(t, 0, s.CompletionPercentage())
	assert.Equal(t, 0, s.AchievementPercentage())
	assert.False(t, s.IsComplete())
}

func TestUnlockAchievement_IdempotentAndPermanent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, store.NewMemory())

	assert.True(t, s.UnlockAchievement(ctx, "lifecycle-guru"))
	assert.False(t, s.UnlockAchievement(ctx, "lifecycle-guru"))
	assert.False(t, s.UnlockAchievement(ctx, "not-an-achievement"))

	s.MarkItemComplete(ctx, "components-templates")
	require.True(t, s.IsAchievementUnlocked("first-component"))

	assert.True(t, s.MarkItemIncomplete(ctx, "components-templates"))
	assert.False(t, s.MarkItemIncomplete(ctx, "components-templates"))
	assert.True(t, s.IsAchievementUnlocked("first-component"))
	assert.True(t, s.IsAchievementUnlocked("lifecycle-guru"))
	assert.Equal(t, []string{"lifecycle-guru", "first-component"}, s.UnlockedAchievements())
}

func TestUnlockRules_AllCompleteGrantsMaster(t *testing.T) {
	ctx := context.Background()
	var got []string
	s, _ := newTestStore(t, store.NewMemory(), WithUnlockHook(func(a Achievement) {
		got = append(got, a.ID)
	}))

	for _, sec := range DefaultCatalog().Sections {
		s.MarkItemComplete(ctx, sec.ID)
	}

	assert.Equal(t, []string{
		"first-component", "reactive-master", "composition-expert",
		"event-handler", "lifecycle-guru", "vue-master",
	}, got)
	assert.Equal(t, 6, s.AchievementCount())
	assert.Equal(t, 100, s.AchievementPercentage())
	assert.Empty(t, s.AvailableAchievements())
	assert.Len(t, s.EarnedAchievements(), 6)
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	s, _ := newTestStore(t, gw)
	s.MarkItemComplete(ctx, "reactivity-data")
	s.AddTimeSpent(ctx, 65)

	raw, ok, err := gw.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"completedSections":["reactivity-data"]`)

	reloaded, _ := newTestStore(t, gw)
	assert.Equal(t, []string{"reactivity-data"}, reloaded.CompletedItems())
	assert.Equal(t, []string{"reactive-master"}, reloaded.UnlockedAchievements())
	assert.Equal(t, "1h 5m", reloaded.FormattedTimeSpent())
	assert.Equal(t, t0.UnixMilli(), reloaded.Snapshot().StartedAt.UnixMilli())
}

func TestPersistence_CorruptRecordStartsFresh(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	require.NoError(t, gw.Set(ctx, StorageKey, "{{{"))

	s, _ := newTestStore(t, gw)
	assert.Empty(t, s.CompletedItems())
	assert.Equal(t, t0.UnixMilli(), s.Snapshot().StartedAt.UnixMilli())
}

func TestPersistence_FailingGatewayKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	gw.SetFailing(true)
	s, _ := newTestStore(t, gw)

	assert.True(t, s.MarkItemComplete(ctx, "event-handling"))
	assert.True(t, s.IsItemComplete("event-handling"))
}

func TestStaleIDsToleratedButNotCounted(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	require.NoError(t, gw.Set(ctx, StorageKey,
		`{"completedSections":["old-section","event-handling"],"unlockedAchievements":["old-badge"],"startDate":1,"lastActivity":1,"totalTimeSpent":0}`))

	s, _ := newTestStore(t, gw)
	assert.Equal(t, []string{"old-section", "event-handling"}, s.CompletedItems())
	assert.Equal(t, 17, s.CompletionPercentage())
	assert.Equal(t, 0, s.AchievementPercentage())
}

func TestCurrentStreak(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore(t, store.NewMemory())
	s.AddTimeSpent(ctx, 5)

	clk.now = t0.Add(36 * time.Hour)
	assert.Equal(t, 1, s.CurrentStreak())

	clk.now = t0.Add(49 * time.Hour)
	assert.Equal(t, 0, s.CurrentStreak())
}

func TestFormatMinutes(t *testing.T) {
	cases := map[int]string{0: "0m", 5: "5m", 60: "1h 0m", 125: "2h 5m"}
	for in, want := range cases {
		assert.Equal(t, want, formatMinutes(in))
	}
}

func TestAddTimeSpent_IgnoresNonPositive(t *testing.T) {
	s, _ := newTestStore(t, store.NewMemory())
	s.AddTimeSpent(context.Background(), -10)
	assert.Equal(t, 0, s.Snapshot().TotalMinutesSpent)
}

func TestNextAndRecentlyCompleted(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, store.NewMemory())

	next, ok := s.NextItem()
	require.True(t, ok)
	assert.Equal(t, "components-templates", next.ID)

	for _, id := range []string{"advanced-patterns", "components-templates", "event-handling", "reactivity-data"} {
		s.MarkItemComplete(ctx, id)
	}

	next, ok = s.NextItem()
	require.True(t, ok)
	assert.Equal(t, "composition-api-deep", next.ID)

	var ids []string
	for _, sec := range s.RecentlyCompleted() {
		ids = append(ids, sec.ID)
	}
	assert.Equal(t, []string{"reactivity-data", "event-handling", "advanced-patterns"}, ids)

	st := s.Stats()
	assert.Equal(t, 4, st.CompletedSections)
	assert.Equal(t, 6, st.TotalSections)
	assert.Equal(t, 67, st.CompletionPercentage)
	assert.False(t, st.IsComplete)
}

func TestCompletedItemsIsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, store.NewMemory())
	s.MarkItemComplete(ctx, "event-handling")

	items := s.CompletedItems()
	items[0] = "mutated"
	assert.Equal(t, []string{"event-handling"}, s.CompletedItems())
}

func TestApplyChange_FromPeer(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	peer := gw.Peer()

	local, _ := newTestStore(t, gw)
	remote, _ := newTestStore(t, peer)
	remote.MarkItemComplete(ctx, "reactivity-data")

	raw, ok, err := peer.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, local.ApplyChange(store.Change{Key: StorageKey, NewValue: &raw}))
	assert.True(t, local.IsItemComplete("reactivity-data"))
	assert.False(t, local.ApplyChange(store.Change{Key: StorageKey, NewValue: &raw}))
	assert.False(t, local.ApplyChange(store.Change{Key: "user-preferences", NewValue: &raw}))

	assert.True(t, local.ApplyChange(store.Change{Key: StorageKey}))
	assert.Empty(t, local.CompletedItems())
}
