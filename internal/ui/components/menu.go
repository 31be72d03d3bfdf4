package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/clinreason/internal/ui/theme"
)

// MenuItem is one row of a Menu. Detail is shown dimmed after the label.
type MenuItem struct {
	Label  string
	Detail string
	Action func() tea.Cmd
}

// Menu is a single-choice vertical list. The cursor wraps at both ends.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	return Menu{Items: items}
}

func (m Menu) move(delta int) Menu {
	if n := len(m.Items); n > 0 {
		m.Selected = (m.Selected + delta + n) % n
	}
	return m
}

// Update moves the cursor and runs the selected item's Action on enter.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		return m.move(-1), nil
	case "down", "j":
		return m.move(1), nil
	case "home", "g":
		m.Selected = 0
	case "end", "G":
		m.Selected = len(m.Items) - 1
	case "enter":
		if act := m.Items[m.Selected].Action; act != nil {
			return m, act()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	lines := make([]string, len(m.Items))
	for i, item := range m.Items {
		row := theme.Unselected.Render("    " + item.Label)
		if i == m.Selected {
			row = theme.Selected.Render("  ▸ " + item.Label)
		}
		if item.Detail != "" {
			row += "  " + theme.Hint.Render(item.Detail)
		}
		lines[i] = row
	}
	return strings.Join(lines, "\n") + "\n"
}
