package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vuequest/internal/notify"
)

var kindGlyphs = map[notify.Kind]string{
	notify.KindSuccess:     "✔",
	notify.KindError:       "✖",
	notify.KindWarning:     "⚠",
	notify.KindInfo:        "ℹ",
	notify.KindAchievement: "🏆",
}

// Toast renders a notification as a bordered box in its kind's colors.
func Toast(n notify.Notification, width int) string {
	glyph, ok := kindGlyphs[n.Kind]
	if !ok {
		glyph = kindGlyphs[notify.KindInfo]
	}
	accent := lipgloss.Color(n.Color)

	var b strings.Builder
	if n.Title != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(accent).Render(glyph + " " + n.Title))
		b.WriteString("\n")
		b.WriteString(n.Message)
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(accent).Render(glyph) + " " + n.Message)
	}
	for _, a := range n.Actions {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Underline(true).Foreground(accent).Render("[" + a.Label + "]"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(n.BorderColor)).
		Padding(0, 1).
		Width(width).
		Render(b.String())
}

// Toasts renders notifications stacked, newest first.
func Toasts(ns []notify.Notification, width int) string {
	views := make([]string, len(ns))
	for i, n := range ns {
		views[i] = Toast(n, width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, views...)
}
