package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manual Scheduler: callbacks run when Advance passes their
// deadline.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.pending = append(c.pending, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	var rest []*fakeTimer
	for _, t := range c.pending {
		if !t.at.After(c.now) {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	c.pending = rest
	c.mu.Unlock()

	for _, t := range due {
		if !t.stopped {
			t.f()
		}
	}
}

func newTestQueue() (*Queue, *fakeClock) {
	c := newFakeClock()
	return NewQueue(WithScheduler(c), WithClock(c.Now)), c
}

func TestEnqueue_AssignsIncreasingIDs(t *testing.T) {
	q, _ := newTestQueue()
	a := q.Info("one", "")
	b := q.Info("two", "")
	c := q.Info("three", "")
	assert.Less(t, a, b)
	assert.Less(t, b, c)
	assert.Equal(t, 3, q.Len())
}

func TestEnqueue_AutoExpiry(t *testing.T) {
	q, clk := newTestQueue()
	id := q.Enqueue(Request{Message: "brief", Duration: 100 * time.Millisecond})
	keep := q.Enqueue(Request{Message: "sticky", Duration: 100 * time.Millisecond, Persistent: true})

	clk.Advance(50 * time.Millisecond)
	_, ok := q.Get(id)
	assert.True(t, ok)

	clk.Advance(100 * time.Millisecond)
	_, ok = q.Get(id)
	assert.False(t, ok)

	clk.Advance(time.Hour)
	_, ok = q.Get(keep)
	assert.True(t, ok)

	q.Remove(keep)
	assert.Equal(t, 0, q.Len())
}

func TestEnqueue_ProfileAndDefaults(t *testing.T) {
	q, _ := newTestQueue()

	id := q.Enqueue(Request{Message: "x", Kind: "bogus"})
	n, ok := q.Get(id)
	require.True(t, ok)
	assert.Equal(t, Kind("bogus"), n.Kind)
	assert.Equal(t, "#3B82F6", n.Color)
	assert.Equal(t, 4*time.Second, n.Duration)

	id = q.Enqueue(Request{Message: "x"})
	n, _ = q.Get(id)
	assert.Equal(t, KindInfo, n.Kind)

	id = q.Error("boom", "")
	n, _ = q.Get(id)
	assert.Equal(t, 6*time.Second, n.Duration)
	assert.Equal(t, int64(6000), n.DurationMs)
	assert.Equal(t, "mdi-alert-circle", n.Icon)

	id = q.Enqueue(Request{Kind: KindWarning, Duration: 1500 * time.Millisecond})
	n, _ = q.Get(id)
	assert.Equal(t, 1500*time.Millisecond, n.Duration)
}

func TestProfiles(t *testing.T) {
	want := map[Kind]time.Duration{
		KindSuccess:     4 * time.Second,
		KindError:       6 * time.Second,
		KindWarning:     5 * time.Second,
		KindInfo:        4 * time.Second,
		KindAchievement: 6 * time.Second,
	}
	for k, d := range want {
		assert.Equal(t, d, ProfileFor(k).Duration, k)
	}
	assert.Equal(t, "#8B5CF6", ProfileFor(KindAchievement).Color)
}

func TestRemoveAndClearAreIdempotent(t *testing.T) {
	q, clk := newTestQueue()
	id := q.Success("ok", "")
	q.Remove(id)
	q.Remove(id)
	q.Remove(999)
	assert.Equal(t, 0, q.Len())

	q.Success("a", "")
	q.Success("b", "")
	q.Clear()
	assert.Equal(t, 0, q.Len())

	// timers from cleared notifications fire as no-ops
	later := q.Info("after clear", "")
	clk.Advance(5 * time.Second)
	_, ok := q.Get(later)
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestRecentDescending(t *testing.T) {
	q, clk := newTestQueue()
	var ids []int64
	for i := 0; i < 7; i++ {
		ids = append(ids, q.Enqueue(Request{Message: "m", Persistent: true}))
		clk.Advance(time.Millisecond)
	}

	recent := q.RecentDescending(RecentLimit)
	require.Len(t, recent, 5)
	assert.Equal(t, ids[6], recent[0].ID)
	assert.Equal(t, ids[2], recent[4].ID)

	// insertion order is untouched
	assert.Equal(t, ids[0], q.All()[0].ID)
}

func TestByKind(t *testing.T) {
	q, _ := newTestQueue()
	q.Success("a", "")
	q.Error("b", "")
	q.Success("c", "")
	assert.Len(t, q.ByKind(KindSuccess), 2)
	assert.Len(t, q.ByKind(KindAchievement), 0)
}

func TestMessages(t *testing.T) {
	q, _ := newTestQueue()

	n, _ := q.Get(q.SectionComplete("Reactivity", true))
	assert.Equal(t, KindSuccess, n.Kind)
	assert.Equal(t, `Great job! You've completed "Reactivity"`, n.Message)
	assert.Equal(t, 5*time.Second, n.Duration)

	n, _ = q.Get(q.SectionComplete("Reactivity", false))
	assert.Equal(t, KindInfo, n.Kind)
	assert.Equal(t, 3*time.Second, n.Duration)

	assert.Equal(t, int64(0), q.ProgressUpdate(20, 1, 6))
	n, _ = q.Get(q.ProgressUpdate(50, 3, 6))
	assert.Equal(t, "You're halfway there! 3/6 sections complete", n.Message)
	n, _ = q.Get(q.ProgressUpdate(83, 5, 6))
	assert.Equal(t, "Almost done! 5/6 sections complete", n.Message)
	n, _ = q.Get(q.ProgressUpdate(100, 6, 6))
	assert.Equal(t, KindAchievement, n.Kind)
	assert.Equal(t, 8*time.Second, n.Duration)

	n, _ = q.Get(q.Tip("use v-for keys", ""))
	assert.Equal(t, "💡 Pro Tip", n.Title)
	n, _ = q.Get(q.Tip("use v-for keys", "Lists"))
	assert.Equal(t, "💡 Tip: Lists", n.Title)

	n, _ = q.Get(q.AchievementUnlocked("Vue Master", "All done"))
	assert.Equal(t, "Achievement Unlocked: Vue Master", n.Title)
}

func TestErrorWithSuggestion_ActionShowsTip(t *testing.T) {
	q, _ := newTestQueue()

	n, _ := q.Get(q.ErrorWithSuggestion("bad", ""))
	assert.Empty(t, n.Actions)

	n, _ = q.Get(q.ErrorWithSuggestion("bad", "check the console"))
	require.Len(t, n.Actions, 1)
	assert.Equal(t, "Learn More", n.Actions[0].Label)
	assert.Equal(t, 7*time.Second, n.Duration)

	n.Actions[0].Do()
	tips := q.ByKind(KindInfo)
	require.Len(t, tips, 1)
	assert.Equal(t, "💡 Tip: How to fix this", tips[0].Title)
	assert.Equal(t, "check the console", tips[0].Message)
}

func TestRealSchedulerExpires(t *testing.T) {
	q := NewQueue()
	id := q.Enqueue(Request{Message: "fast", Duration: 10 * time.Millisecond})
	assert.Eventually(t, func() bool {
		_, ok := q.Get(id)
		return !ok
	}, time.Second, 5*time.Millisecond)
}
