package results

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/live"
	"github.com/abhisek/clinreason/internal/router"
	"github.com/abhisek/clinreason/internal/session"
)

const caseYAML = `
id: hypoxia
title: Low oxygen
presentation: SpO2 84% on room air.
treatments: [oxygen]
reference:
  - id: a
    kind: observation
    title: hypoxia noted
    connects_to: [b]
  - id: b
    kind: decision
    title: administer supplemental oxygen
`

func submittedSession(t *testing.T) *session.Session {
	t.Helper()
	c, err := cases.Parse([]byte(caseYAML))
	require.NoError(t, err)

	classifier := live.ClassifierFunc(func(ctx context.Context, req live.Request) ([]blockgraph.Block, error) {
		return []blockgraph.Block{
			{ID: "x", Kind: blockgraph.KindObservation, Title: "hypoxia noted", ConnectsTo: []string{"y"}},
			{ID: "y", Kind: blockgraph.KindDecision, Title: "administer supplemental oxygen"},
		}, nil
	})
	sess := session.New(c, classifier, nil, session.Options{})
	t.Cleanup(sess.StopLive)

	sess.SetText("saturation is low so I start oxygen straight away")
	_, err = sess.UpdateNow(context.Background())
	require.NoError(t, err)
	_, err = sess.Submit(context.Background())
	require.NoError(t, err)
	return sess
}

func newScreen(t *testing.T, sess *session.Session) *ResultsScreen {
	t.Helper()
	cache, err := layout.NewCache(4)
	require.NoError(t, err)
	return New(sess, cache, layout.DefaultSpacing())
}

func TestView_ShowsSummary(t *testing.T) {
	s := newScreen(t, submittedSession(t))

	out := s.View(120, 60)
	assert.Contains(t, out, "Low oxygen")
	assert.Contains(t, out, "Alignment")
	assert.Contains(t, out, "Matched: 2")
	assert.Contains(t, out, "Your reasoning, graded")
}

func TestTabTogglesExpertDiagram(t *testing.T) {
	s := newScreen(t, submittedSession(t))

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Contains(t, s.View(120, 60), "Expert reasoning")

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Contains(t, s.View(120, 60), "Your reasoning, graded")
}

func TestEnterReturnsToCases(t *testing.T) {
	s := newScreen(t, submittedSession(t))

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopToRootMsg)
	assert.True(t, ok)
}

func TestView_NoResult(t *testing.T) {
	c, err := cases.Parse([]byte(caseYAML))
	require.NoError(t, err)
	sess := session.New(c, nil, nil, session.Options{})

	s := newScreen(t, sess)
	assert.True(t, strings.Contains(s.View(80, 24), "No result yet"))
}

func TestCalibrationLine(t *testing.T) {
	assert.Contains(t, calibrationLine(40), "40 points more confident")
	assert.Contains(t, calibrationLine(-30), "30 points stronger")
	assert.Equal(t, "Your confidence matched your reasoning.", calibrationLine(5))
}

func TestMissedLine(t *testing.T) {
	assert.Empty(t, missedLine(nil))
	got := missedLine(map[blockgraph.Kind]int{blockgraph.KindDecision: 2})
	assert.Equal(t, "Missed expert steps: 2 decision", got)
}
