package components

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/vuequest/internal/challenge"
	"github.com/abhisek/vuequest/internal/notify"
	"github.com/abhisek/vuequest/internal/progress"
	"github.com/abhisek/vuequest/internal/store"
	"github.com/abhisek/vuequest/internal/ui/theme"
)

func TestProgressBar_Filled(t *testing.T) {
	tests := []struct {
		percent int
		want    int
	}{
		{0, 0},
		{50, 10},
		{100, 20},
		{150, 20},
		{-5, 0},
	}
	for _, tt := range tests {
		bar := NewProgressBar("", tt.percent, 40, theme.Dark)
		assert.Equal(t, tt.want, bar.Filled(20), "percent %d", tt.percent)
	}
}

func TestProgressBar_View(t *testing.T) {
	view := NewProgressBar("Sections", 50, 40, theme.Light).View()

	assert.Contains(t, view, "Sections")
	assert.Contains(t, view, "50%")
	assert.Contains(t, view, "█")
	assert.Contains(t, view, "░")
}

func TestToast(t *testing.T) {
	q := notify.NewQueue()
	q.Enqueue(notify.Request{Title: "Saved", Message: "Progress stored", Kind: notify.KindSuccess, Persistent: true})
	q.Enqueue(notify.Request{Message: "No title here", Persistent: true})

	all := q.All()
	assert.Contains(t, Toast(all[0], 40), "Saved")
	assert.Contains(t, Toast(all[0], 40), "Progress stored")
	assert.Contains(t, Toast(all[1], 40), "No title here")

	stacked := Toasts(all, 40)
	assert.Contains(t, stacked, "Saved")
	assert.Contains(t, stacked, "No title here")
}

func TestProgressReport(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := progress.New(ctx, store.NewMemory(), nil, progress.WithClock(func() time.Time { return now }))
	first := p.Catalog().Sections[0]
	p.MarkItemComplete(ctx, first.ID)

	view := ProgressReport(p, theme.Dark, 80)

	assert.Contains(t, view, "Your Vue Journey")
	assert.Contains(t, view, "●")
	assert.Contains(t, view, "○")
	assert.Contains(t, view, "17%")
	assert.NotContains(t, view, "No achievements yet")
}

func TestChallengeCard(t *testing.T) {
	c := challenge.Fallback("components", 3, challenge.EnrichContext{Level: 1, Now: time.Now()})

	view := ChallengeCard(c, theme.Dark, 100)

	assert.Contains(t, view, c.Title)
	assert.True(t, strings.Contains(view, "difficulty 3/10"))
	assert.Contains(t, view, "1. ")
}
