// Package chat is the interactive tutor conversation.
package chat

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vuequest/internal/ui/components"
	"github.com/abhisek/vuequest/internal/ui/theme"
)

// ReplyFunc answers one learner message. It must not return an error;
// the tutor serves its own fallback.
type ReplyFunc func(ctx context.Context, message string) string

type replyMsg struct {
	text string
}

type line struct {
	fromLearner bool
	text        string
}

type Model struct {
	ctx     context.Context
	reply   ReplyFunc
	input   components.TextInput
	lines   []line
	waiting bool
	palette theme.Palette
}

func New(ctx context.Context, reply ReplyFunc, p theme.Palette) Model {
	return Model{
		ctx:     ctx,
		reply:   reply,
		input:   components.NewTextInput("Ask about Vue...", 500, p),
		palette: p,
	}
}

func (m Model) Init() tea.Cmd {
	return m.input.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		m.waiting = false
		m.lines = append(m.lines, line{text: msg.text})
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.waiting {
				return m, nil
			}
			text := m.input.Take()
			if text == "" {
				return m, tea.Quit
			}
			m.lines = append(m.lines, line{fromLearner: true, text: text})
			m.waiting = true
			return m, m.ask(text)
		}
		if m.waiting {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(text string) tea.Cmd {
	ctx, reply := m.ctx, m.reply
	return func() tea.Msg {
		return replyMsg{text: reply(ctx, text)}
	}
}

func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m Model) render() string {
	var b strings.Builder
	if len(m.lines) == 0 {
		b.WriteString(m.palette.Hint().Render("Ask away! An empty line ends the chat."))
		b.WriteString("\n\n")
	}
	for _, l := range m.lines {
		if l.fromLearner {
			b.WriteString(m.palette.Title().Render("you: "))
			b.WriteString(l.text)
		} else {
			b.WriteString(m.palette.Body().Render(l.text))
		}
		b.WriteString("\n\n")
	}
	if m.waiting {
		b.WriteString(m.palette.Hint().Render("thinking..."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

// Turns is the number of messages the learner sent.
func (m Model) Turns() int {
	n := 0
	for _, l := range m.lines {
		if l.fromLearner {
			n++
		}
	}
	return n
}
