package chat

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vuequest/internal/ui/theme"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func step(t *testing.T, m tea.Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(Model)
	require.True(t, ok)
	return cm, cmd
}

func echo(asked *[]string) ReplyFunc {
	return func(_ context.Context, msg string) string {
		*asked = append(*asked, msg)
		return "Try computed() for " + msg
	}
}

func TestChat_AskAndReply(t *testing.T) {
	var asked []string
	m := New(context.Background(), echo(&asked), theme.Dark)
	assert.Contains(t, m.render(), "An empty line ends the chat.")

	m.input.SetValue("derived state")
	m, cmd := step(t, m, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Contains(t, m.render(), "thinking...")

	// A second enter while waiting does nothing.
	m, again := step(t, m, specialKey(tea.KeyEnter))
	assert.Nil(t, again)

	m, _ = step(t, m, cmd())
	assert.Equal(t, []string{"derived state"}, asked)
	view := m.render()
	assert.Contains(t, view, "derived state")
	assert.Contains(t, view, "Try computed() for derived state")
	assert.NotContains(t, view, "thinking...")
	assert.Equal(t, 1, m.Turns())
}

func TestChat_EmptyLineQuits(t *testing.T) {
	var asked []string
	m := New(context.Background(), echo(&asked), theme.Light)

	_, cmd := step(t, m, specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Empty(t, asked)
}
