// Package app wires the screens into the root Bubble Tea program.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/router"
	"github.com/abhisek/clinreason/internal/screen"
	"github.com/abhisek/clinreason/internal/screens/caselist"
	"github.com/abhisek/clinreason/internal/screens/reasoning"
	"github.com/abhisek/clinreason/internal/screens/results"
	"github.com/abhisek/clinreason/internal/session"
	uilayout "github.com/abhisek/clinreason/internal/ui/layout"
)

// Deps holds everything the screens need.
type Deps struct {
	Library    *cases.Library
	NewSession func(*cases.Case) *session.Session
	Layouts    *layout.Cache
	Spacing    layout.Spacing
	Logger     *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the case list as root.
func newAppModel(ctx context.Context, deps Deps) AppModel {
	openResults := func(sess *session.Session) screen.Screen {
		return results.New(sess, deps.Layouts, deps.Spacing)
	}
	openCase := func(c *cases.Case) screen.Screen {
		deps.Logger.Info("case opened", zap.String("case_id", c.ID))
		return reasoning.New(ctx, deps.NewSession(c), deps.Layouts, deps.Spacing, openResults)
	}
	return AppModel{
		router: router.New(caselist.New(deps.Library, openCase)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	size := uilayout.Size{Width: m.width, Height: m.height}
	if !size.Known() {
		return v
	}
	if !size.Fits() {
		v.SetContent(uilayout.TooSmall(size))
		return v
	}

	frame := uilayout.Frame{Hints: m.defaultHints()}
	if active := m.router.Active(); active != nil {
		frame.Title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			frame.Status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			frame.Hints = kp.KeyHints()
		}
	}

	v.SetContent(frame.Render(size, m.router.View))
	return v
}

func (m AppModel) defaultHints() []uilayout.KeyHint {
	if m.router.Depth() > 1 {
		return []uilayout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []uilayout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	m := newAppModel(ctx, deps)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	m.router.CloseAll()
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
