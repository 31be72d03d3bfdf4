package caselist

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/router"
	"github.com/abhisek/clinreason/internal/screen"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                            { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func TestCaseList_OpensSelectedCase(t *testing.T) {
	lib, err := cases.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	var opened *cases.Case
	s := New(lib, func(c *cases.Case) screen.Screen {
		opened = c
		return &stubScreen{title: c.ID}
	})

	if got := len(s.menu.Items); got != lib.Len()+1 {
		t.Fatalf("menu items = %d, want %d", got, lib.Len()+1)
	}

	s.menu.Selected = 1
	cmd := s.menu.Items[1].Action()
	msg := cmd()
	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	if opened == nil || opened.ID != lib.All()[1].ID {
		t.Errorf("opened wrong case: %+v", opened)
	}
	if push.Screen.Title() != opened.ID {
		t.Errorf("pushed screen = %q", push.Screen.Title())
	}
}

func TestCaseList_ViewShowsPresentation(t *testing.T) {
	lib, err := cases.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	s := New(lib, func(c *cases.Case) screen.Screen { return &stubScreen{} })

	if out := s.View(100, 30); out == "" {
		t.Fatal("empty view")
	}
}
