package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vuequest/internal/store"
)

func fixedNow() time.Time { return time.UnixMilli(1_700_000_000_000) }

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	s := New(ctx, gw, nil, fixedNow)

	assert.Nil(t, s.Get().CurrentSection)
	assert.Equal(t, int64(1_700_000_000_000), s.Get().LastVisited)

	s.UpdateCurrentSection(ctx, "reactivity-data")
	s.AddTimeSpent(ctx, 12)
	s.MarkExerciseComplete(ctx, "ex-1")
	s.MarkExerciseComplete(ctx, "ex-1")
	s.AddNote(ctx, "reactivity-data", "ref vs reactive")

	reloaded := New(ctx, gw, nil, fixedNow)
	got := reloaded.Get()
	require.NotNil(t, got.CurrentSection)
	assert.Equal(t, "reactivity-data", *got.CurrentSection)
	assert.Equal(t, 12, got.TimeSpent)
	assert.Equal(t, []string{"ex-1"}, got.CompletedExercises)
	assert.Equal(t, "ref vs reactive", reloaded.Note("reactivity-data"))
	assert.Equal(t, "", reloaded.Note("event-handling"))
}

func TestSession_BookmarksHaveDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, store.NewMemory(), nil, fixedNow)

	a := s.AddBookmark(ctx, "event-handling", "")
	b := s.AddBookmark(ctx, "event-handling", "again")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Stats().BookmarksCount)

	s.RemoveBookmark(ctx, a)
	bms := s.Get().Bookmarks
	require.Len(t, bms, 1)
	assert.Equal(t, b, bms[0].ID)
	assert.Equal(t, "again", bms[0].Note)
}

func TestSession_StatsAndReset(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, store.NewMemory(), nil, fixedNow)
	s.AddTimeSpent(ctx, 3)
	s.MarkExerciseComplete(ctx, "a")
	s.AddNote(ctx, "x", "y")

	assert.Equal(t, Stats{TimeSpent: 3, LastVisited: 1_700_000_000_000, ExercisesCompleted: 1, NotesCount: 1}, s.Stats())

	s.Reset(ctx)
	assert.Equal(t, Stats{LastVisited: 1_700_000_000_000}, s.Stats())
}

func TestSession_GetIsDeepCopy(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, store.NewMemory(), nil, fixedNow)
	s.AddNote(ctx, "x", "y")

	got := s.Get()
	got.Notes["x"] = "changed"
	assert.Equal(t, "y", s.Note("x"))
}

func TestSession_PartialRecordKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	require.NoError(t, gw.Set(ctx, StorageKey, `{"timeSpent":7}`))

	s := New(ctx, gw, nil, fixedNow)
	assert.Equal(t, 7, s.Stats().TimeSpent)
	assert.NotNil(t, s.Get().Notes)
	s.AddNote(ctx, "a", "b")
}

func TestSession_ApplyChange(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, store.NewMemory(), nil, fixedNow)

	v := `{"currentSection":"advanced-patterns","timeSpent":40}`
	assert.True(t, s.ApplyChange(store.Change{Key: StorageKey, NewValue: &v}))
	assert.Equal(t, 40, s.Stats().TimeSpent)
	assert.NotNil(t, s.Get().Bookmarks)
}
