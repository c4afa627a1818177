package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vuequest/internal/ui/theme"
)

// TextInput wraps bubbles/textinput as a single-line chat prompt.
type TextInput struct {
	Model textinput.Model

	palette theme.Palette
}

func NewTextInput(placeholder string, charLimit int, p theme.Palette) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()
	return TextInput{Model: ti, palette: p}
}

func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	return t.palette.Body().Render(t.Model.View())
}

func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// Take returns the trimmed input and clears the field.
func (t *TextInput) Take() string {
	v := t.Value()
	t.Model.Reset()
	return v
}
