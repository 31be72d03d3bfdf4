// Package router keeps the stack of open screens. Screens navigate by
// returning one of the *Msg commands below rather than touching the stack.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/clinreason/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the top screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg closes the top screen and opens Screen in its place.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// PopToRootMsg closes everything above the first screen.
type PopToRootMsg struct{}

// Router never drops below one screen.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

// Push opens s and runs its Init.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the top screen unless it is the root.
func (r *Router) Pop() {
	r.truncate(max(r.top(), 1))
}

// Replace closes the top screen and opens s in its slot.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	closeScreen(r.stack[r.top()])
	r.stack[r.top()] = s
	return s.Init()
}

// PopToRoot closes every screen above the root, newest first.
func (r *Router) PopToRoot() {
	r.truncate(1)
}

func (r *Router) truncate(n int) {
	for i := r.top(); i >= n; i-- {
		closeScreen(r.stack[i])
		r.stack[i] = nil
	}
	r.stack = r.stack[:n]
}

// CloseAll closes every open screen including the root. Call it once on
// exit; the router is unusable afterwards.
func (r *Router) CloseAll() {
	for i := r.top(); i >= 0; i-- {
		closeScreen(r.stack[i])
	}
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

func (r *Router) Active() screen.Screen { return r.stack[r.top()] }

func (r *Router) Depth() int { return len(r.stack) }

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopScreenMsg:
		r.Pop()
		return nil
	case PopToRootMsg:
		r.PopToRoot()
		return nil
	}

	next, cmd := r.Active().Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
