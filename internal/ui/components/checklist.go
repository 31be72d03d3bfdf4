package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/clinreason/internal/ui/theme"
)

// Checklist is a cursor over a fixed list of options, each of which can
// be checked. The owner decides what toggling means.
type Checklist struct {
	Options []string
	Checked map[string]bool
	Cursor  int
	Focused bool
}

// NewChecklist creates an unchecked list.
func NewChecklist(options []string) Checklist {
	return Checklist{Options: options, Checked: make(map[string]bool)}
}

// Update moves the cursor. It reports the option under the cursor when
// space or x was pressed.
func (c Checklist) Update(msg tea.Msg) (Checklist, string) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.Focused || len(c.Options) == 0 {
		return c, ""
	}
	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space", " ", "x":
		return c, c.Options[c.Cursor]
	}
	return c, ""
}

// View renders the checklist.
func (c Checklist) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		box := "[ ]"
		if c.Checked[opt] {
			box = "[x]"
		}
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if c.Checked[opt] {
			style = style.Foreground(theme.Success)
		}
		prefix := "  "
		if c.Focused && i == c.Cursor {
			prefix = "▸ "
			style = style.Bold(true)
		}
		b.WriteString(style.Render(prefix + box + " " + opt))
		b.WriteString("\n")
	}
	return b.String()
}
