package live

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// DefaultMinManualLength is the shortest text a manual update accepts.
const DefaultMinManualLength = 20

// State is where the scheduler is in its update cycle.
type State int

const (
	StateIdle State = iota
	StateEvaluating
	StateInvoking
	StateApplying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateInvoking:
		return "invoking"
	case StateApplying:
		return "applying"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome reports what a tick or trigger did.
type Outcome int

const (
	// OutcomeUnchanged means the text matched the last checked text.
	OutcomeUnchanged Outcome = iota
	// OutcomeNotSignificant means the change was below the threshold.
	OutcomeNotSignificant
	// OutcomeTooShort means a manual trigger had too little text.
	OutcomeTooShort
	// OutcomeBusy means a classifier call was already in flight.
	OutcomeBusy
	// OutcomeApplied means the learner graph was replaced.
	OutcomeApplied
	// OutcomeFailed means the classifier call failed; the graph is untouched.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeNotSignificant:
		return "not-significant"
	case OutcomeTooShort:
		return "too-short"
	case OutcomeBusy:
		return "busy"
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Input is the learner's current editor state.
type Input struct {
	Text       string
	Treatments []string
	Confidence int
}

// Options configures a Scheduler.
type Options struct {
	MinDelta        int
	MinManualLength int
	CaseContext     string
	Logger          *zap.Logger
	Now             func() time.Time
	NewID           func() string

	// OnUpdate is called, outside the scheduler lock, after every
	// successful regeneration.
	OnUpdate func(*blockgraph.Graph)
}

func (o *Options) applyDefaults() {
	if o.MinDelta <= 0 {
		o.MinDelta = DefaultMinDelta
	}
	if o.MinManualLength <= 0 {
		o.MinManualLength = DefaultMinManualLength
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = blockgraph.NewID
	}
}

// Scheduler gates classifier calls for one editing session. At most one
// call is in flight at a time; ticks and triggers arriving meanwhile are
// dropped, never queued. It is safe for concurrent use.
type Scheduler struct {
	classifier Classifier
	opts       Options

	mu          sync.Mutex
	state       State
	inFlight    bool
	lastChecked string
	last        Snapshot
	graph       *blockgraph.Graph
	calls       int
}

// NewScheduler creates a scheduler starting from initial, which may be nil.
func NewScheduler(c Classifier, initial *blockgraph.Graph, opts Options) *Scheduler {
	opts.applyDefaults()
	if initial == nil {
		initial = blockgraph.MustNew(nil)
	}
	return &Scheduler{
		classifier: c,
		opts:       opts,
		graph:      initial,
	}
}

// Tick is the periodic check. It is a no-op when the text has not
// changed since the last check, and otherwise calls the classifier only
// when the change is significant.
func (s *Scheduler) Tick(ctx context.Context, in Input) Outcome {
	s.mu.Lock()
	if in.Text == s.lastChecked {
		s.mu.Unlock()
		return OutcomeUnchanged
	}
	if s.inFlight {
		s.mu.Unlock()
		return OutcomeBusy
	}

	s.state = StateEvaluating
	s.lastChecked = in.Text
	next := s.snapshot(in)
	if !Significant(s.last, next, s.opts.MinDelta) {
		s.state = StateIdle
		s.mu.Unlock()
		return OutcomeNotSignificant
	}
	return s.invokeLocked(ctx, next)
}

// Trigger is the learner's explicit "update now". It skips the
// significance gate but still needs MinManualLength characters and no
// call in flight.
func (s *Scheduler) Trigger(ctx context.Context, in Input) Outcome {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return OutcomeBusy
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Text)) < s.opts.MinManualLength {
		s.mu.Unlock()
		return OutcomeTooShort
	}
	s.state = StateEvaluating
	s.lastChecked = in.Text
	return s.invokeLocked(ctx, s.snapshot(in))
}

// invokeLocked is entered with s.mu held and returns with it released.
func (s *Scheduler) invokeLocked(ctx context.Context, next Snapshot) Outcome {
	s.inFlight = true
	s.state = StateInvoking
	s.calls++
	req := Request{
		PreviousText:  s.last.Text,
		NewText:       next.Text,
		DiffSummary:   Summarize(s.last.Text, next.Text),
		CurrentBlocks: s.graph.Blocks(),
		CaseContext:   s.opts.CaseContext,
		Treatments:    next.Treatments,
	}
	s.mu.Unlock()

	start := s.opts.Now()
	graph, err := s.classify(ctx, req)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		s.opts.Logger.Warn("live classification failed",
			zap.Int("text_len", utf8.RuneCountInString(next.Text)),
			zap.Duration("elapsed", s.opts.Now().Sub(start)),
			zap.Error(err),
		)
		return OutcomeFailed
	}

	s.state = StateApplying
	s.graph = graph
	s.last = next
	s.state = StateIdle
	s.mu.Unlock()

	s.opts.Logger.Debug("learner graph regenerated",
		zap.Int("blocks", graph.Len()),
		zap.Duration("elapsed", s.opts.Now().Sub(start)),
	)
	if s.opts.OnUpdate != nil {
		s.opts.OnUpdate(graph)
	}
	return OutcomeApplied
}

func (s *Scheduler) classify(ctx context.Context, req Request) (*blockgraph.Graph, error) {
	blocks, err := s.classifier.Classify(ctx, req)
	if err != nil {
		return nil, err
	}
	blocks, repairs := blockgraph.Normalize(blocks, s.opts.NewID)
	for _, r := range repairs {
		s.opts.Logger.Debug("repaired classifier block",
			zap.String("block_id", r.BlockID),
			zap.String("detail", r.Detail),
		)
	}
	g, err := blockgraph.New(blocks)
	if err != nil {
		return nil, fmt.Errorf("build learner graph: %w", err)
	}
	return g, nil
}

func (s *Scheduler) snapshot(in Input) Snapshot {
	return Snapshot{
		Text:       in.Text,
		Treatments: append([]string(nil), in.Treatments...),
		Confidence: in.Confidence,
		TakenAt:    s.opts.Now(),
	}
}

// Graph returns the current learner graph.
func (s *Scheduler) Graph() *blockgraph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InFlight reports whether a classifier call is running.
func (s *Scheduler) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// LastSnapshot returns the inputs of the last successful regeneration.
func (s *Scheduler) LastSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Calls returns how many classifier calls have been started.
func (s *Scheduler) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
