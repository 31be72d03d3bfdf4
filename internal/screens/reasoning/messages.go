package reasoning

import (
	"github.com/abhisek/clinreason/internal/live"
	"github.com/abhisek/clinreason/internal/session"
)

// liveEventMsg carries a countdown or a regenerated graph from the
// session's live timers.
type liveEventMsg session.Event

// liveStartedMsg reports the live runner starting.
type liveStartedMsg struct {
	Err error
}

// updateDoneMsg is the result of a manual update.
type updateDoneMsg struct {
	Outcome live.Outcome
	Err     error
}

// submitDoneMsg is the result of a submission.
type submitDoneMsg struct {
	Result *session.Result
	Err    error
}
