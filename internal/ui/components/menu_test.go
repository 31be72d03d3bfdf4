package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(code rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: code} }

func TestMenu_Wraps(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "a"}, {Label: "b"}, {Label: "c"}})

	m, _ = m.Update(press(tea.KeyUp))
	assert.Equal(t, 2, m.Selected)
	m, _ = m.Update(press(tea.KeyDown))
	assert.Equal(t, 0, m.Selected)
	m, _ = m.Update(press(tea.KeyEnd))
	assert.Equal(t, 2, m.Selected)
}

func TestMenu_EnterRunsAction(t *testing.T) {
	type picked struct{}
	m := NewMenu([]MenuItem{
		{Label: "a"},
		{Label: "b", Action: func() tea.Cmd { return func() tea.Msg { return picked{} } }},
	})

	_, cmd := m.Update(press(tea.KeyEnter))
	assert.Nil(t, cmd, "item without action")

	m, _ = m.Update(press(tea.KeyDown))
	_, cmd = m.Update(press(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.IsType(t, picked{}, cmd())
}

func TestMenu_View(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "Low oxygen", Detail: "4 expert steps"}, {Label: "Quit"}})
	out := m.View()
	assert.Contains(t, out, "▸ Low oxygen")
	assert.Contains(t, out, "4 expert steps")
	assert.Contains(t, out, "Quit")
}
