package prefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vuequest/internal/store"
)

func TestSetFontSize_Clamps(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	s := New(ctx, gw, nil)

	tests := []struct {
		in, want int
	}{
		{30, 24},
		{5, 12},
		{16, 16},
		{12, 12},
		{24, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.SetFontSize(ctx, tt.in))
		assert.Equal(t, tt.want, New(ctx, gw, nil).FontSize(), "persisted value for %d", tt.in)
	}
}

func TestDefaults(t *testing.T) {
	s := New(context.Background(), store.NewMemory(), nil)
	assert.Equal(t, Defaults(), s.Get())
	assert.False(t, s.IsDarkTheme())
}

func TestLoad_OutOfRangeNotClamped(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	require.NoError(t, gw.Set(ctx, StorageKey, `{"theme":"dark","fontSize":40}`))

	s := New(ctx, gw, nil)
	assert.Equal(t, 40, s.FontSize())
	assert.Equal(t, "en", s.Language())
	assert.True(t, s.ShowHints())

	assert.Equal(t, 24, s.IncreaseFontSize(ctx))
}

func TestLoad_CorruptFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	require.NoError(t, gw.Set(ctx, StorageKey, `nope`))

	assert.Equal(t, Defaults(), New(ctx, gw, nil).Get())
}

func TestToggleThemeAndStep(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, store.NewMemory(), nil)

	assert.Equal(t, ThemeDark, s.ToggleTheme(ctx))
	assert.True(t, s.IsDarkTheme())
	assert.Equal(t, ThemeLight, s.ToggleTheme(ctx))

	assert.Equal(t, 17, s.IncreaseFontSize(ctx))
	assert.Equal(t, 16, s.DecreaseFontSize(ctx))
	s.SetFontSize(ctx, 12)
	assert.Equal(t, 12, s.DecreaseFontSize(ctx))
}

func TestSetByName(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, store.NewMemory(), nil)

	require.NoError(t, s.Set(ctx, "soundEnabled", "false"))
	require.NoError(t, s.Set(ctx, "language", "de"))
	require.NoError(t, s.Set(ctx, "fontSize", "99"))
	require.NoError(t, s.Set(ctx, "theme", "dark"))

	p := s.Get()
	assert.False(t, p.SoundEnabled)
	assert.Equal(t, "de", p.Language)
	assert.Equal(t, 24, p.FontSize)
	assert.Equal(t, ThemeDark, p.Theme)

	assert.Error(t, s.Set(ctx, "fontSize", "big"))
	assert.Error(t, s.Set(ctx, "autoSave", "maybe"))
	assert.Error(t, s.Set(ctx, "colour", "red"))
}

func TestResetAndRemove(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	s := New(ctx, gw, nil)
	s.SetTheme(ctx, ThemeDark)

	assert.Equal(t, Defaults(), s.ResetToDefaults(ctx))
	raw, ok, err := gw.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"theme":"light"`)

	s.Remove(ctx)
	_, ok, err = gw.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplace_Clamps(t *testing.T) {
	s := New(context.Background(), store.NewMemory(), nil)
	p := Defaults()
	p.FontSize = 2
	assert.Equal(t, 12, s.Replace(context.Background(), p).FontSize)
}

func TestApplyChange(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	s := New(ctx, gw, nil)

	v := `{"theme":"dark","fontSize":20,"language":"fr"}`
	assert.True(t, s.ApplyChange(store.Change{Key: StorageKey, NewValue: &v}))
	assert.Equal(t, 20, s.FontSize())
	assert.True(t, s.AutoSave())
	assert.False(t, s.ApplyChange(store.Change{Key: StorageKey, NewValue: &v}))

	assert.True(t, s.ApplyChange(store.Change{Key: StorageKey}))
	assert.Equal(t, Defaults(), s.Get())
}

func TestFailingGateway(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	gw.SetFailing(true)
	s := New(ctx, gw, nil)

	assert.Equal(t, 24, s.SetFontSize(ctx, 100))
	assert.Equal(t, 24, s.FontSize())
}
