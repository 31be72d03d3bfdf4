package reasoning

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/live"
	"github.com/abhisek/clinreason/internal/router"
	"github.com/abhisek/clinreason/internal/screen"
	"github.com/abhisek/clinreason/internal/session"
)

const caseYAML = `
id: hypoxia
title: Low oxygen
presentation: SpO2 84% on room air.
treatments: [oxygen, nebulizer]
reference:
  - id: a
    kind: observation
    title: hypoxia noted
    connects_to: [b]
  - id: b
    kind: decision
    title: administer supplemental oxygen
`

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                            { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func newScreen(t *testing.T) (*ReasoningScreen, *session.Session) {
	t.Helper()
	c, err := cases.Parse([]byte(caseYAML))
	if err != nil {
		t.Fatal(err)
	}
	classifier := live.ClassifierFunc(func(ctx context.Context, req live.Request) ([]blockgraph.Block, error) {
		return []blockgraph.Block{
			{ID: "x", Kind: blockgraph.KindObservation, Title: "hypoxia noted", ConnectsTo: []string{"y"}},
			{ID: "y", Kind: blockgraph.KindDecision, Title: "administer supplemental oxygen"},
		}, nil
	})
	sess := session.New(c, classifier, nil, session.Options{})
	cache, err := layout.NewCache(4)
	if err != nil {
		t.Fatal(err)
	}
	s := New(context.Background(), sess, cache, layout.DefaultSpacing(), func(*session.Session) screen.Screen {
		return &stubScreen{title: "results"}
	})
	t.Cleanup(s.Close)
	return s, sess
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func typeText(s *ReasoningScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func TestTypingUpdatesSession(t *testing.T) {
	s, sess := newScreen(t)
	s.editor.Focus()

	typeText(s, "low sats")

	if got := sess.Text(); got != "low sats" {
		t.Errorf("session text = %q, want %q", got, "low sats")
	}
}

func TestTreatmentsAndConfidence(t *testing.T) {
	s, sess := newScreen(t)

	s.Update(specialKey(tea.KeyTab))
	if s.focus != focusTreatments {
		t.Fatal("expected treatments focus after Tab")
	}

	s.Update(keyPress('x'))
	s.Update(specialKey(tea.KeyDown))
	s.Update(keyPress('x'))
	if got := sess.Treatments(); len(got) != 2 || got[0] != "oxygen" || got[1] != "nebulizer" {
		t.Errorf("treatments = %v", got)
	}

	s.Update(keyPress('x'))
	if got := sess.Treatments(); len(got) != 1 || got[0] != "oxygen" {
		t.Errorf("treatments after untoggle = %v", got)
	}
	if s.treatments.Checked["nebulizer"] {
		t.Error("nebulizer still checked")
	}

	s.Update(specialKey(tea.KeyRight))
	if got := sess.Confidence(); got != 55 {
		t.Errorf("confidence = %d, want 55", got)
	}
	s.Update(specialKey(tea.KeyLeft))
	s.Update(specialKey(tea.KeyLeft))
	if got := sess.Confidence(); got != 45 {
		t.Errorf("confidence = %d, want 45", got)
	}
}

func TestUpdateNow(t *testing.T) {
	s, sess := newScreen(t)
	sess.SetText("Hypoxic on room air so I would start oxygen.")

	_, cmd := s.Update(ctrl('u'))
	if cmd == nil {
		t.Fatal("expected update command")
	}
	if !s.updating {
		t.Error("expected updating flag")
	}
	msg := cmd()
	done, ok := msg.(updateDoneMsg)
	if !ok {
		t.Fatalf("expected updateDoneMsg, got %T", msg)
	}
	if done.Outcome != live.OutcomeApplied {
		t.Errorf("outcome = %v", done.Outcome)
	}
	s.Update(done)
	if s.updating || s.notice != "" {
		t.Errorf("updating=%v notice=%q", s.updating, s.notice)
	}
	if sess.Graph().Len() != 2 {
		t.Errorf("graph len = %d", sess.Graph().Len())
	}
	if !strings.Contains(s.View(120, 40), "administer supplemental oxygen") {
		t.Error("diagram missing regenerated block")
	}
}

func TestUpdateNow_TooShortNotice(t *testing.T) {
	s, sess := newScreen(t)
	sess.SetText("short")

	_, cmd := s.Update(ctrl('u'))
	s.Update(cmd())

	if !strings.Contains(s.notice, "Write a little more") {
		t.Errorf("notice = %q", s.notice)
	}
}

func TestSubmitPushesResults(t *testing.T) {
	s, sess := newScreen(t)
	sess.SetText("Hypoxic on room air so I would start oxygen.")

	_, cmd := s.Update(ctrl('s'))
	if !s.submitting || s.Status() != "Analyzing…" {
		t.Fatalf("submitting=%v status=%q", s.submitting, s.Status())
	}
	done := cmd().(submitDoneMsg)
	if done.Err != nil {
		t.Fatal(done.Err)
	}

	_, cmd = s.Update(done)
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if push.Screen.Title() != "results" {
		t.Errorf("pushed %q", push.Screen.Title())
	}
	if s.Status() != "Submitted" {
		t.Errorf("status = %q", s.Status())
	}
}

func TestSubmitFailureShowsNotice(t *testing.T) {
	s, _ := newScreen(t)

	_, cmd := s.Update(ctrl('s'))
	s.Update(cmd())

	if !strings.Contains(s.notice, "Analysis failed") {
		t.Errorf("notice = %q", s.notice)
	}
	if s.submitting {
		t.Error("still submitting")
	}
}

func TestResumeAfterSubmit(t *testing.T) {
	s, sess := newScreen(t)
	sess.SetText("Hypoxic on room air.")
	_, cmd := s.Update(ctrl('s'))
	s.Update(cmd())

	s.Update(ctrl('r'))

	if sess.Mode() != session.ModeLive {
		t.Errorf("mode = %v", sess.Mode())
	}
	if !sess.Live() {
		t.Error("live timers not restarted")
	}
}

func TestLiveCountdownReachesHeader(t *testing.T) {
	s, sess := newScreen(t)
	if err := sess.StartLive(context.Background()); err != nil {
		t.Fatal(err)
	}

	msg := s.listen()()
	ev, ok := msg.(liveEventMsg)
	if !ok {
		t.Fatalf("expected liveEventMsg, got %T", msg)
	}
	_, cmd := s.Update(ev)
	if cmd == nil {
		t.Error("expected the listener to re-arm")
	}
	if want := fmt.Sprintf("Next update in %ds", ev.Countdown); s.Status() != want {
		t.Errorf("status = %q, want %q", s.Status(), want)
	}

	s.Close()
	if sess.Live() {
		t.Error("closing the screen should stop the live timers")
	}
	if msg := s.listen()(); msg != nil {
		t.Errorf("listener after close = %T, want nil", msg)
	}
}
