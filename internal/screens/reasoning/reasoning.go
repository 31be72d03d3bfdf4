// Package reasoning is the main practice screen: a free-text editor whose
// reasoning graph is regenerated while the learner writes.
package reasoning

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/live"
	"github.com/abhisek/clinreason/internal/router"
	"github.com/abhisek/clinreason/internal/screen"
	"github.com/abhisek/clinreason/internal/session"
	"github.com/abhisek/clinreason/internal/ui/components"
	uilayout "github.com/abhisek/clinreason/internal/ui/layout"
)

type focus int

const (
	focusEditor focus = iota
	focusTreatments
)

const confidenceStep = 5

// ResultsFactory builds the results screen for a scored session.
type ResultsFactory func(*session.Session) screen.Screen

// ReasoningScreen edits one session.
type ReasoningScreen struct {
	ctx     context.Context
	sess    *session.Session
	results ResultsFactory
	layouts *layout.Cache
	spacing layout.Spacing

	editor     textarea.Model
	treatments components.Checklist
	focus      focus

	updating   bool
	submitting bool
	notice     string
	countdown  int

	done      chan struct{}
	closeOnce sync.Once
}

var (
	_ screen.Screen          = (*ReasoningScreen)(nil)
	_ screen.KeyHintProvider = (*ReasoningScreen)(nil)
	_ screen.StatusProvider  = (*ReasoningScreen)(nil)
	_ screen.Closer          = (*ReasoningScreen)(nil)
)

// New creates the screen. The session's live timers start in Init and
// stop when the screen leaves the router stack.
func New(ctx context.Context, sess *session.Session, cache *layout.Cache, spacing layout.Spacing, results ResultsFactory) *ReasoningScreen {
	ta := textarea.New()
	ta.Placeholder = "Describe your thinking: what you notice, what it means, what you would do and why..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	return &ReasoningScreen{
		ctx:        ctx,
		sess:       sess,
		results:    results,
		layouts:    cache,
		spacing:    spacing,
		editor:     ta,
		treatments: components.NewChecklist(sess.Case.Treatments),
		done:       make(chan struct{}),
	}
}

func (s *ReasoningScreen) Init() tea.Cmd {
	return tea.Batch(
		s.editor.Focus(),
		s.startLive(),
		s.listen(),
	)
}

func (s *ReasoningScreen) Title() string {
	return s.sess.Case.Title
}

// Status shows the live countdown in the header.
func (s *ReasoningScreen) Status() string {
	switch {
	case s.submitting:
		return "Analyzing…"
	case s.sess.Mode() == session.ModeSubmitted:
		return "Submitted"
	case s.updating || s.sess.Regenerating():
		return "Updating diagram…"
	case s.sess.Live():
		return fmt.Sprintf("Next update in %ds", s.countdown)
	}
	return "Paused"
}

func (s *ReasoningScreen) KeyHints() []uilayout.KeyHint {
	if s.sess.Mode() == session.ModeSubmitted {
		return []uilayout.KeyHint{
			{Key: "Ctrl+S", Description: "Retry submit"},
			{Key: "Ctrl+R", Description: "Keep editing"},
			{Key: "Esc", Description: "Cases"},
		}
	}
	hints := []uilayout.KeyHint{
		{Key: "Tab", Description: "Editor/treatments"},
		{Key: "Ctrl+U", Description: "Update now"},
		{Key: "Ctrl+S", Description: "Submit"},
		{Key: "Esc", Description: "Cases"},
	}
	if s.focus == focusTreatments {
		hints = slices.Insert(hints, 1,
			uilayout.KeyHint{Key: "Space", Description: "Toggle"},
			uilayout.KeyHint{Key: "←→", Description: "Confidence"},
		)
	}
	return hints
}

// Close stops the live timers and the event listener.
func (s *ReasoningScreen) Close() {
	s.sess.StopLive()
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *ReasoningScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case liveEventMsg:
		// The diagram is read from the session on render; a graph event
		// only needs to wake the program up.
		if msg.Countdown >= 0 {
			s.countdown = msg.Countdown
		}
		return s, s.listen()

	case liveStartedMsg:
		if msg.Err != nil {
			s.notice = "Live updates unavailable: " + msg.Err.Error()
		}
		s.countdown = s.sess.Countdown(time.Now())
		return s, nil

	case updateDoneMsg:
		s.updating = false
		s.notice = updateNotice(msg)
		s.countdown = s.sess.Countdown(time.Now())
		return s, nil

	case submitDoneMsg:
		s.submitting = false
		if msg.Err != nil {
			s.notice = "Analysis failed: " + msg.Err.Error() + ". Press Ctrl+S to retry."
			return s, nil
		}
		s.notice = ""
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: s.results(s.sess)} }

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.focus == focusEditor && s.sess.Mode() == session.ModeLive {
		return s.updateEditor(msg)
	}
	return s, nil
}

func (s *ReasoningScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+s":
		return s.submit()
	case "ctrl+r":
		if s.sess.Mode() == session.ModeSubmitted && !s.submitting {
			if err := s.sess.Resume(s.ctx); err != nil {
				s.notice = err.Error()
				return s, nil
			}
			s.notice = ""
			return s, s.editor.Focus()
		}
		return s, nil
	}

	if s.sess.Mode() != session.ModeLive {
		return s, nil
	}

	switch key {
	case "ctrl+u":
		if s.updating {
			return s, nil
		}
		s.updating = true
		return s, s.updateNow()
	case "tab":
		if s.focus == focusEditor {
			s.focus = focusTreatments
			s.editor.Blur()
			s.treatments.Focused = true
			return s, nil
		}
		s.focus = focusEditor
		s.treatments.Focused = false
		return s, s.editor.Focus()
	}

	if s.focus == focusTreatments {
		switch key {
		case "left", "h":
			s.sess.SetConfidence(s.sess.Confidence() - confidenceStep)
			return s, nil
		case "right", "l":
			s.sess.SetConfidence(s.sess.Confidence() + confidenceStep)
			return s, nil
		}
		var toggled string
		s.treatments, toggled = s.treatments.Update(msg)
		if toggled != "" {
			on, err := s.sess.ToggleTreatment(toggled)
			if err != nil {
				s.notice = err.Error()
				return s, nil
			}
			s.treatments.Checked[toggled] = on
		}
		return s, nil
	}

	return s.updateEditor(msg)
}

func (s *ReasoningScreen) updateEditor(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.editor, cmd = s.editor.Update(msg)
	s.sess.SetText(s.editor.Value())
	return s, cmd
}

func (s *ReasoningScreen) submit() (screen.Screen, tea.Cmd) {
	if s.submitting {
		return s, nil
	}
	s.submitting = true
	s.notice = ""
	s.editor.Blur()
	sess, ctx := s.sess, s.ctx
	return s, func() tea.Msg {
		res, err := sess.Submit(ctx)
		return submitDoneMsg{Result: res, Err: err}
	}
}

func (s *ReasoningScreen) startLive() tea.Cmd {
	sess, ctx := s.sess, s.ctx
	return func() tea.Msg {
		return liveStartedMsg{Err: sess.StartLive(ctx)}
	}
}

func (s *ReasoningScreen) updateNow() tea.Cmd {
	sess, ctx := s.sess, s.ctx
	return func() tea.Msg {
		out, err := sess.UpdateNow(ctx)
		return updateDoneMsg{Outcome: out, Err: err}
	}
}

func updateNotice(msg updateDoneMsg) string {
	if msg.Err != nil {
		return msg.Err.Error()
	}
	switch msg.Outcome {
	case live.OutcomeTooShort:
		return "Write a little more before updating."
	case live.OutcomeBusy:
		return "An update is already running."
	case live.OutcomeFailed:
		return "The diagram could not be updated; it will retry on the next change."
	}
	return ""
}

// listen waits for the next live event. It returns nil once the screen
// is closed, which ends the chain.
func (s *ReasoningScreen) listen() tea.Cmd {
	events, done := s.sess.Events(), s.done
	return func() tea.Msg {
		select {
		case <-done:
			return nil
		default:
		}
		select {
		case ev := <-events:
			return liveEventMsg(ev)
		case <-done:
			return nil
		}
	}
}
