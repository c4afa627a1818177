// Package quiz is the interactive terminal quiz: one multiple-choice
// question at a time, with the explanation shown after each answer.
package quiz

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vuequest/internal/tutor"
	"github.com/abhisek/vuequest/internal/ui/components"
	"github.com/abhisek/vuequest/internal/ui/theme"
)

type Model struct {
	quiz    tutor.Quiz
	index   int
	choice  components.MultiChoice
	correct int
	done    bool
	palette theme.Palette
}

func New(q tutor.Quiz, p theme.Palette) Model {
	m := Model{quiz: q, palette: p}
	if len(q.Questions) == 0 {
		m.done = true
		return m
	}
	m.choice = m.question(0)
	return m
}

func (m Model) question(i int) components.MultiChoice {
	q := m.quiz.Questions[i]
	return components.NewMultiChoice(q.Question, q.Options, q.CorrectAnswer, m.palette)
}

func (m Model) Init() tea.Cmd {
	if m.done {
		return tea.Quit
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}
	switch kmsg.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	}

	if !m.choice.Submitted {
		m.choice, _ = m.choice.Update(msg)
		if m.choice.IsCorrect() {
			m.correct++
		}
		return m, nil
	}

	switch kmsg.String() {
	case "enter", "space", "n":
		if m.index == len(m.quiz.Questions)-1 {
			m.done = true
			return m, tea.Quit
		}
		m.index++
		m.choice = m.question(m.index)
	}
	return m, nil
}

func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m Model) render() string {
	var b strings.Builder
	total := len(m.quiz.Questions)

	if m.done {
		b.WriteString(m.palette.Title().Render(fmt.Sprintf("You got %d of %d.", m.correct, total)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.palette.Hint().Render(fmt.Sprintf("Question %d of %d", m.index+1, total)))
	b.WriteString("\n\n")
	b.WriteString(m.choice.View())

	if m.choice.Submitted {
		q := m.quiz.Questions[m.index]
		b.WriteString("\n")
		if m.choice.IsCorrect() {
			b.WriteString(m.palette.Done().Render("Correct!"))
		} else {
			b.WriteString(fmt.Sprintf("The answer was %c) %s", 'a'+q.CorrectAnswer, q.Options[q.CorrectAnswer]))
		}
		b.WriteString("\n")
		b.WriteString(m.palette.Body().Render(q.Explanation))
		if q.MemoryHint != "" {
			b.WriteString("\n")
			b.WriteString(m.palette.Hint().Render(q.MemoryHint))
		}
		b.WriteString("\n\n")
		b.WriteString(m.palette.Hint().Render("enter: next  q: quit"))
	} else {
		b.WriteString("\n")
		b.WriteString(m.palette.Hint().Render("↑/↓ or a-d to choose, enter to answer"))
	}
	b.WriteString("\n")
	return b.String()
}

// Score is the number answered correctly and the number of questions.
func (m Model) Score() (correct, total int) {
	return m.correct, len(m.quiz.Questions)
}

// Finished reports whether every question was answered.
func (m Model) Finished() bool {
	return m.done
}
