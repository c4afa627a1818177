package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vuequest/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     int // 0-100
	ShowPercent bool
	Width       int
	Palette     theme.Palette
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent int, width int, p theme.Palette) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: true,
		Width:       width,
		Palette:     p,
	}
}

// Filled returns how many of barWidth cells are filled.
func (p ProgressBar) Filled(barWidth int) int {
	return min(max(barWidth*p.Percent/100, 0), barWidth)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(p.Palette.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := max(p.Width-labelWidth-percentWidth, 4)
	filled := p.Filled(barWidth)

	result += lipgloss.NewStyle().Foreground(p.Palette.Primary).Render(strings.Repeat("█", filled))
	result += lipgloss.NewStyle().Foreground(p.Palette.Border).Render(strings.Repeat("░", barWidth-filled))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(p.Palette.TextDim).
			Render(fmt.Sprintf("  %d%%", p.Percent))
	}

	return result
}
