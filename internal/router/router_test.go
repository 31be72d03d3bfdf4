package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/clinreason/internal/screen"
)

type fakeScreen struct {
	name   string
	inits  int
	closed int
	seen   []tea.Msg
}

func (f *fakeScreen) Init() tea.Cmd { f.inits++; return nil }
func (f *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	f.seen = append(f.seen, msg)
	return f, nil
}
func (f *fakeScreen) View(w, h int) string { return f.name }
func (f *fakeScreen) Title() string        { return f.name }
func (f *fakeScreen) Close()               { f.closed++ }

func stack(names ...string) (*Router, []*fakeScreen) {
	screens := make([]*fakeScreen, len(names))
	for i, n := range names {
		screens[i] = &fakeScreen{name: n}
	}
	r := New(screens[0])
	for _, s := range screens[1:] {
		r.Push(s)
	}
	return r, screens
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name       string
		open       []string
		msg        tea.Msg
		wantDepth  int
		wantActive string
		wantClosed []int
	}{
		{"push", []string{"cases"}, PushScreenMsg{Screen: &fakeScreen{name: "reasoning"}}, 2, "reasoning", []int{0}},
		{"pop", []string{"cases", "reasoning"}, PopScreenMsg{}, 1, "cases", []int{0, 1}},
		{"pop at root", []string{"cases"}, PopScreenMsg{}, 1, "cases", []int{0}},
		{"replace", []string{"cases", "reasoning"}, ReplaceScreenMsg{Screen: &fakeScreen{name: "results"}}, 2, "results", []int{0, 1}},
		{"pop to root", []string{"cases", "reasoning", "results"}, PopToRootMsg{}, 1, "cases", []int{0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, screens := stack(tt.open...)
			r.Update(tt.msg)

			assert.Equal(t, tt.wantDepth, r.Depth())
			assert.Equal(t, tt.wantActive, r.Active().Title())
			for i, want := range tt.wantClosed {
				assert.Equal(t, want, screens[i].closed, "screen %s", screens[i].name)
			}
		})
	}
}

func TestPushRunsInit(t *testing.T) {
	r, _ := stack("cases")
	next := &fakeScreen{name: "reasoning"}
	r.Update(PushScreenMsg{Screen: next})
	assert.Equal(t, 1, next.inits)
}

func TestUpdate_ForwardsToActive(t *testing.T) {
	r, screens := stack("cases", "reasoning")
	r.Update(tea.WindowSizeMsg{Width: 90, Height: 30})

	assert.Empty(t, screens[0].seen)
	assert.Len(t, screens[1].seen, 1)
	assert.Equal(t, "reasoning", r.View(90, 30))
}

func TestCloseAll(t *testing.T) {
	r, screens := stack("cases", "reasoning")
	r.CloseAll()
	assert.Equal(t, 1, screens[0].closed)
	assert.Equal(t, 1, screens[1].closed)
}
