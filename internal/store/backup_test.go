package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAppData(t *testing.T, gw Gateway) map[string]string {
	t.Helper()
	data := map[string]string{
		"vue-learning-progress": `{"completedItems":["components-templates"],"unlockedAchievements":["first-component"]}`,
		"user-preferences":      `{"theme":"dark","fontSize":18}`,
		"learning-session":      `{"currentSection":"reactivity-data"}`,
		"vue-game-profile":      `{"currentLevel":3}`,
		"vue-game-state":        `{"currentStreak":2}`,
		"unrelated-key":         "keep me out",
	}
	for k, v := range data {
		require.NoError(t, gw.Set(context.Background(), k, v))
	}
	return data
}

func TestExportAll_Whitelist(t *testing.T) {
	gw := NewMemory()
	seedAppData(t, gw)

	b, err := ExportAll(context.Background(), gw)
	require.NoError(t, err)
	assert.Len(t, b.Data, 5)
	assert.NotContains(t, b.Data, "unrelated-key")
	assert.False(t, b.ExportDate.IsZero())

	only, err := ExportAll(context.Background(), gw, "vue-game-")
	require.NoError(t, err)
	assert.Len(t, only.Data, 2)
}

func TestExportImport_RoundTripIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	gw := NewMemory()
	before := seedAppData(t, gw)

	b, err := ExportAll(ctx, gw)
	require.NoError(t, err)

	// Through JSON, as the CLI and HTTP API move it.
	raw, err := json.Marshal(b)
	require.NoError(t, err)
	parsed, err := ParseBackup(raw)
	require.NoError(t, err)

	// Scramble the live values, then restore.
	for k := range b.Data {
		require.NoError(t, gw.Set(ctx, k, "scrambled"))
	}
	require.NoError(t, ImportAll(ctx, gw, parsed))

	for k := range b.Data {
		got, ok, err := gw.Get(ctx, k)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, before[k], got, k)
	}
}

func TestImportAll_MissingDataWritesNothing(t *testing.T) {
	ctx := context.Background()
	gw := NewMemory()

	assert.ErrorIs(t, ImportAll(ctx, gw, Backup{}), ErrInvalidBackup)
	keys, err := gw.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = ParseBackup([]byte(`{"exportDate":"2026-01-01T00:00:00Z"}`))
	assert.ErrorIs(t, err, ErrInvalidBackup)
	_, err = ParseBackup([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidBackup)
}

func TestClearAppDataAndUsage(t *testing.T) {
	ctx := context.Background()
	gw := NewMemory()
	require.NoError(t, gw.Set(ctx, "user-preferences", "abcd"))
	require.NoError(t, gw.Set(ctx, "other", "xy"))

	info, err := Usage(ctx, gw)
	require.NoError(t, err)
	assert.Equal(t, 2, info.TotalKeys)
	assert.Equal(t, len("user-preferences")+4+len("other")+2, info.EstimatedSize)
	assert.InDelta(t, 0.03, info.EstimatedSizeKB, 1e-9)

	require.NoError(t, gw.Set(ctx, "big", strings.Repeat("x", 1536-len("big"))))
	info, err = Usage(ctx, gw)
	require.NoError(t, err)
	assert.InDelta(t, 1.53, info.EstimatedSizeKB, 1e-9)

	n, err := ClearAppData(ctx, gw)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	keys, err := gw.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, keys)
}
