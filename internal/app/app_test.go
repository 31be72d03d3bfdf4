package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/router"
	"github.com/abhisek/clinreason/internal/session"
)

func newTestModel(t *testing.T) AppModel {
	t.Helper()
	lib, err := cases.Builtin()
	require.NoError(t, err)
	cache, err := layout.NewCache(8)
	require.NoError(t, err)

	m := newAppModel(context.Background(), Deps{
		Library: lib,
		NewSession: func(c *cases.Case) *session.Session {
			return session.New(c, nil, nil, session.Options{})
		},
		Layouts: cache,
		Spacing: layout.DefaultSpacing(),
		Logger:  zap.NewNop(),
	})
	t.Cleanup(m.router.CloseAll)
	return m
}

// send delivers msg and feeds any router navigation message it produces
// back into the model.
func send(m AppModel, msg tea.Msg) AppModel {
	updated, cmd := m.Update(msg)
	m = updated.(AppModel)
	if cmd == nil {
		return m
	}
	switch next := cmd().(type) {
	case router.PushScreenMsg, router.PopScreenMsg, router.PopToRootMsg:
		updated, _ = m.Update(next)
		m = updated.(AppModel)
	}
	return m
}

func TestStartsOnCaseList(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 1, m.router.Depth())
	assert.Equal(t, "Cases", m.router.Active().Title())
}

func TestOpenCaseAndGoBack(t *testing.T) {
	m := newTestModel(t)

	m = send(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.Equal(t, 2, m.router.Depth())

	m = send(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, 1, m.router.Depth())
}

func TestEscOnRootIsNoop(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.router.Depth())
}

func TestWindowSize(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(AppModel)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}
