package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vuequest/internal/ui/theme"
)

// MultiChoice is one quiz question answered with the arrow keys or by
// pressing an option's letter.
type MultiChoice struct {
	Question     string
	Options      []string
	CorrectIndex int
	Selected     int
	Submitted    bool
	ChosenIndex  int

	palette theme.Palette
}

func NewMultiChoice(question string, options []string, correctIndex int, p theme.Palette) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		CorrectIndex: correctIndex,
		ChosenIndex:  -1,
		palette:      p,
	}
}

func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and submits. Keys are ignored once submitted.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter", "space":
		m.submit(m.Selected)
	default:
		if len(key) == 1 && key[0] >= 'a' && int(key[0]-'a') < len(m.Options) {
			m.Selected = int(key[0] - 'a')
			m.submit(m.Selected)
		}
	}
	return m, nil
}

func (m *MultiChoice) submit(i int) {
	m.Submitted = true
	m.ChosenIndex = i
}

func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(m.palette.Title().Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%c) %s", prefix, 'a'+i, opt)

		style := m.palette.Body()
		switch {
		case m.Submitted && i == m.CorrectIndex:
			style = m.palette.Done()
		case m.Submitted && i == m.ChosenIndex:
			style = style.Foreground(m.palette.Error).Bold(true)
		case m.Submitted:
			style = m.palette.Pending()
		case i == m.Selected:
			style = style.Foreground(m.palette.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.ChosenIndex == m.CorrectIndex
}
