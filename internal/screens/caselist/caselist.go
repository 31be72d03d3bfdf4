package caselist

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/router"
	"github.com/abhisek/clinreason/internal/screen"
	"github.com/abhisek/clinreason/internal/ui/components"
	"github.com/abhisek/clinreason/internal/ui/layout"
	"github.com/abhisek/clinreason/internal/ui/theme"
)

// CaseListScreen is the home screen: pick a case to reason through.
type CaseListScreen struct {
	cases []*cases.Case
	menu  components.Menu
}

var (
	_ screen.Screen          = (*CaseListScreen)(nil)
	_ screen.KeyHintProvider = (*CaseListScreen)(nil)
)

// New lists the library's cases. open builds the screen for a chosen case.
func New(lib *cases.Library, open func(*cases.Case) screen.Screen) *CaseListScreen {
	all := lib.All()
	items := make([]components.MenuItem, 0, len(all)+1)
	for _, c := range all {
		items = append(items, components.MenuItem{
			Label:  c.Title,
			Detail: fmt.Sprintf("%d expert steps", len(c.Reference)),
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: open(c)} }
			},
		})
	}
	items = append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }})
	return &CaseListScreen{cases: all, menu: components.NewMenu(items)}
}

func (s *CaseListScreen) Init() tea.Cmd {
	return nil
}

func (s *CaseListScreen) Title() string {
	return "Cases"
}

func (s *CaseListScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start case"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *CaseListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *CaseListScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Clinical reasoning practice"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Write your reasoning. Watch it take shape. Compare with an expert."))
	b.WriteString("\n\n")

	menu := s.menu.View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, menu))

	if i := s.menu.Selected; i >= 0 && i < len(s.cases) {
		c := s.cases[i]
		preview := theme.Card.Width(min(width-8, 72)).Render(
			theme.Section.Render(c.Title) + "\n" + theme.Body.Render(c.Presentation))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, preview))
	}
	return b.String()
}
