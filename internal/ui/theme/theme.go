// Package theme holds the lipgloss styles used to render vuequest output.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette is one color scheme. Light and Dark follow the learner's theme
// preference.
type Palette struct {
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	Border    color.Color
}

var (
	Dark = Palette{
		Primary:   lipgloss.Color("#42B883"), // Vue green
		Secondary: lipgloss.Color("#35495E"), // Vue slate
		Accent:    lipgloss.Color("#8B5CF6"),
		Success:   lipgloss.Color("#10B981"),
		Error:     lipgloss.Color("#EF4444"),
		Text:      lipgloss.Color("#F8FAFC"),
		TextDim:   lipgloss.Color("#94A3B8"),
		Border:    lipgloss.Color("#334155"),
	}

	Light = Palette{
		Primary:   lipgloss.Color("#2F9768"),
		Secondary: lipgloss.Color("#35495E"),
		Accent:    lipgloss.Color("#7C3AED"),
		Success:   lipgloss.Color("#059669"),
		Error:     lipgloss.Color("#DC2626"),
		Text:      lipgloss.Color("#0F172A"),
		TextDim:   lipgloss.Color("#64748B"),
		Border:    lipgloss.Color("#CBD5E1"),
	}
)

// For returns the palette for the dark or light theme.
func For(dark bool) Palette {
	if dark {
		return Dark
	}
	return Light
}

func (p Palette) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
}

func (p Palette) Body() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Text)
}

func (p Palette) Hint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.TextDim).Italic(true)
}

func (p Palette) Card() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
}

func (p Palette) Done() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.Success).Bold(true)
}

func (p Palette) Pending() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.TextDim)
}
