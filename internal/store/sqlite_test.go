package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vuequest.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLite_PragmasApplied(t *testing.T) {
	s, _ := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+tt.pragma).Scan(&got))
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestSQLite_Contract(t *testing.T) {
	s, _ := openTestStore(t)
	gatewayContract(t, s)
}

func TestSQLite_ValuesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)
	require.NoError(t, s.Set(ctx, "vue-learning-progress", `{"completedItems":["components-templates"]}`))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "vue-learning-progress")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"completedItems":["components-templates"]}`, v)
}

func TestSQLite_SequenceIsMonotonic(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for range 5 {
		tx, err := s.DB().BeginTx(ctx, nil)
		require.NoError(t, err)
		seq, err := s.seq.Next(ctx, tx)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		assert.Greater(t, seq, prev)
		prev = seq
	}
}

func TestSQLite_WritesCommitInSequenceOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, path := openTestStore(t)
	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()
	watcher, err := Open(path)
	require.NoError(t, err)
	defer watcher.Close()
	watcher.PollInterval = 10 * time.Millisecond

	var seen changeLog
	require.NoError(t, watcher.Watch(ctx, seen.add))

	// a holds a write open after taking its sequence number.
	tx, err := a.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	first, err := a.seq.Next(ctx, tx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- b.Set(ctx, "user-preferences", `{"theme":"dark"}`) }()

	select {
	case err := <-done:
		t.Fatalf("second writer committed while the first was open: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv (key, value, seq, origin, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"vue-learning-progress", `{"completedItems":[]}`, first, a.origin, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, <-done)

	var second int64
	require.NoError(t, b.DB().QueryRow(`SELECT seq FROM kv WHERE key = ?`, "user-preferences").Scan(&second))
	assert.Greater(t, second, first)

	assert.Eventually(t, func() bool { return len(seen.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	got := seen.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "vue-learning-progress", got[0].Key)
	assert.Equal(t, "user-preferences", got[1].Key)
}

func TestSQLite_WatchSeesOtherHandle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, path := openTestStore(t)
	a.PollInterval = 10 * time.Millisecond

	b, err := Open(path)
	require.NoError(t, err)
	defer b.Close()

	// Writes before Watch are not replayed.
	require.NoError(t, b.Set(ctx, "old", "x"))

	var seen changeLog
	require.NoError(t, a.Watch(ctx, seen.add))

	require.NoError(t, a.Set(ctx, "own", "ignored"))
	require.NoError(t, b.Set(ctx, "user-preferences", `{"theme":"dark"}`))
	require.NoError(t, b.Remove(ctx, "old"))

	assert.Eventually(t, func() bool { return len(seen.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	got := seen.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "user-preferences", got[0].Key)
	require.NotNil(t, got[0].NewValue)
	assert.Equal(t, `{"theme":"dark"}`, *got[0].NewValue)
	assert.Equal(t, "old", got[1].Key)
	assert.Nil(t, got[1].NewValue)
}

func TestEventRepo_AppendQueryAggregate(t *testing.T) {
	s, _ := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "challenge-gen", InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true, RequestBody: "[user]\nmake one", ResponseBody: "{}"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "challenge-gen", InputTokens: 120, OutputTokens: 380, LatencyMs: 1100, Success: true},
		{Provider: "openai", Model: "gpt-4o", Purpose: "hint", InputTokens: 50, OutputTokens: 40, LatencyMs: 300, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "hint", all[0].Purpose, "newest first")

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Purpose: "challenge-gen"})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 120, limited[0].InputTokens)

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "[user]\nmake one", first.RequestBody)
	assert.False(t, first.Timestamp.IsZero())

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "challenge-gen", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 220, byPurpose[0].InputTokens)
	assert.Equal(t, int64(1000), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gpt-4o-mini", byModel[0].Model)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("VUEQUEST_DB", filepath.Join(dir, "explicit", "x.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "explicit", "x.db"), p)
	assert.DirExists(t, filepath.Join(dir, "explicit"))

	t.Setenv("VUEQUEST_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vuequest", "vuequest.db"), p)
}
