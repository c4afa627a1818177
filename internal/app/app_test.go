package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vuequest/internal/config"
	"github.com/abhisek/vuequest/internal/llm"
	"github.com/abhisek/vuequest/internal/notify"
	"github.com/abhisek/vuequest/internal/prefs"
	"github.com/abhisek/vuequest/internal/progress"
	"github.com/abhisek/vuequest/internal/store"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

// heldScheduler never fires, so notifications stay queued.
type heldScheduler struct{}

func (heldScheduler) AfterFunc(time.Duration, func()) notify.Timer { return heldTimer{} }

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Backend: "memory"},
		Batch:   config.BatchConfig{Concurrency: 2},
	}
}

func newTestApp(t *testing.T, gw store.Gateway, p llm.Provider) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(), nil,
		WithGateway(gw),
		WithProvider(p),
		WithClock(func() time.Time { return t0 }),
		WithScheduler(heldScheduler{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_OpensConfiguredMemoryBackend(t *testing.T) {
	a, err := New(context.Background(), testConfig(), nil, WithProvider(llm.NewMockProvider()))
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.Gateway.(*store.Memory)
	assert.True(t, ok)
	assert.Nil(t, a.Events)
	assert.Equal(t, 0, a.Progress.CompletionPercentage())
}

func TestNew_OpensSQLiteBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Backend = "sqlite"
	cfg.DB = t.TempDir() + "/nested/vuequest.db"

	a, err := New(context.Background(), cfg, nil, WithProvider(llm.NewMockProvider()))
	require.NoError(t, err)

	assert.NotNil(t, a.Events)
	a.Prefs.SetTheme(context.Background(), prefs.ThemeDark)
	require.NoError(t, a.Close())

	b, err := New(context.Background(), cfg, nil, WithProvider(llm.NewMockProvider()))
	require.NoError(t, err)
	defer b.Close()
	assert.True(t, b.Prefs.IsDarkTheme())
}

func TestCompleteSection_QueuesNotifications(t *testing.T) {
	a := newTestApp(t, store.NewMemory(), llm.NewMockProvider())
	ctx := context.Background()

	assert.True(t, a.CompleteSection(ctx, "components-templates"))

	achievements := a.Notify.ByKind(notify.KindAchievement)
	require.Len(t, achievements, 1)
	assert.Contains(t, achievements[0].Title, "Achievement Unlocked")
	require.Len(t, a.Notify.ByKind(notify.KindSuccess), 1)

	assert.False(t, a.CompleteSection(ctx, "components-templates"))
	assert.Len(t, a.Notify.ByKind(notify.KindInfo), 1)

	assert.False(t, a.CompleteSection(ctx, "no-such-section"))
	assert.Equal(t, 3, a.Notify.Len())
}

func TestCompleteSection_MilestoneAtHalfway(t *testing.T) {
	a := newTestApp(t, store.NewMemory(), llm.NewMockProvider())
	ctx := context.Background()
	sections := a.Progress.Catalog().Sections

	for _, s := range sections[:3] {
		a.CompleteSection(ctx, s.ID)
	}

	var found bool
	for _, n := range a.Notify.All() {
		if n.Title == "Great Progress! 📈" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestWatch_AppliesWritesFromOtherHandles(t *testing.T) {
	gw := store.NewMemory()
	a := newTestApp(t, gw, llm.NewMockProvider())
	require.NoError(t, a.Watch(context.Background()))

	other := progress.New(context.Background(), gw.Peer(), nil)
	other.MarkItemComplete(context.Background(), "reactivity-data")

	assert.Eventually(t, func() bool {
		return a.Progress.IsItemComplete("reactivity-data")
	}, time.Second, 10*time.Millisecond)
}

func TestDispatch_IgnoresForeignKeys(t *testing.T) {
	a := newTestApp(t, store.NewMemory(), llm.NewMockProvider())
	v := "x"
	assert.False(t, a.Dispatch(store.Change{Key: "somebody-else", NewValue: &v}))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestApp(t, store.NewMemory(), llm.NewMockProvider())
	src.CompleteSection(ctx, "components-templates")
	src.Prefs.SetFontSize(ctx, 20)

	backup, err := src.Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, backup.Data, progress.StorageKey)
	assert.Contains(t, backup.Data, prefs.StorageKey)

	dst := newTestApp(t, store.NewMemory(), llm.NewMockProvider())
	require.NoError(t, dst.Import(ctx, backup))

	assert.True(t, dst.Progress.IsItemComplete("components-templates"))
	assert.Equal(t, 20, dst.Prefs.FontSize())
	assert.Len(t, dst.Notify.ByKind(notify.KindSuccess), 1)
}

func TestImport_RejectsBackupWithoutData(t *testing.T) {
	a := newTestApp(t, store.NewMemory(), llm.NewMockProvider())
	err := a.Import(context.Background(), store.Backup{})
	assert.ErrorIs(t, err, store.ErrInvalidBackup)
}

func TestClearAll_ResetsStores(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, store.NewMemory(), llm.NewMockProvider())
	a.CompleteSection(ctx, "components-templates")
	a.Prefs.SetTheme(ctx, prefs.ThemeDark)

	n, err := a.ClearAll(ctx)
	require.NoError(t, err)

	assert.Positive(t, n)
	assert.False(t, a.Progress.IsItemComplete("components-templates"))
	assert.False(t, a.Prefs.IsDarkTheme())
}

func TestChat_UsesStoredLearnerState(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(llm.MockText("Hello learner"))
	a := newTestApp(t, store.NewMemory(), mock)
	a.CompleteSection(ctx, "components-templates")
	a.Session.UpdateCurrentSection(ctx, "reactivity-data")

	assert.Equal(t, "Hello learner", a.Chat(ctx, "hi"))

	system := mock.LastCall().System
	assert.Contains(t, system, "Current section: reactivity-data")
	assert.Contains(t, system, "Completed topics: components-templates")
	assert.Contains(t, system, "User's level: beginner")
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "beginner", levelName(1))
	assert.Equal(t, "intermediate", levelName(4))
	assert.Equal(t, "advanced", levelName(10))
}
