// Package session is one learner working through one case: live
// regeneration of their reasoning graph while they write, then a final
// analysis scored against the case's reference graph.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/clinreason/internal/blockgraph"
	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/compare"
	"github.com/abhisek/clinreason/internal/live"
)

var (
	ErrEmptyText        = errors.New("nothing to submit")
	ErrAnalyzing        = errors.New("analysis already in progress")
	ErrNotLive          = errors.New("session is not in live mode")
	ErrUnknownTreatment = errors.New("treatment is not offered by this case")
)

// Options configures a Session.
type Options struct {
	Live   live.Options
	Runner live.RunnerOptions

	// Threshold is the match threshold for the final comparison; zero
	// means compare.DefaultThreshold.
	Threshold float64
	// Rules replaces the default insight rules when non-nil.
	Rules []compare.Rule

	Logger *zap.Logger
	Now    func() time.Time
}

// Result is a scored submission.
type Result struct {
	Analysis    *Analysis
	Learner     *blockgraph.Graph
	Reference   *blockgraph.Graph
	Comparison  compare.Result
	Annotated   []blockgraph.Block
	SubmittedAt time.Time
}

// Session is safe for concurrent use; the TUI drives it from Bubble Tea
// commands while the live runner ticks on its own goroutine.
type Session struct {
	ID        string
	Case      *cases.Case
	StartedAt time.Time

	analyzer Analyzer
	sched    *live.Scheduler
	runner   *live.Runner
	opts     Options
	logger   *zap.Logger

	events chan Event

	mu         sync.Mutex
	text       string
	treatments []string
	confidence int
	mode       Mode
	status     Status
	err        error
	result     *Result
}

// New starts a session on c. analyzer may be nil, in which case Submit
// scores the live graph as it stands.
func New(c *cases.Case, classifier live.Classifier, analyzer Analyzer, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		ID:         uuid.NewString(),
		Case:       c,
		StartedAt:  opts.Now(),
		analyzer:   analyzer,
		opts:       opts,
		confidence: MaxConfidence / 2,
		mode:       ModeLive,
		status:     StatusIdle,
		events:     make(chan Event, eventBuffer),
	}
	s.logger = opts.Logger.With(zap.String("session_id", s.ID), zap.String("case_id", c.ID))

	liveOpts := opts.Live
	liveOpts.CaseContext = c.Context()
	if liveOpts.Logger == nil {
		liveOpts.Logger = s.logger
	}
	onUpdate := liveOpts.OnUpdate
	liveOpts.OnUpdate = func(g *blockgraph.Graph) {
		if onUpdate != nil {
			onUpdate(g)
		}
		s.emit(Event{Graph: g, Countdown: -1})
	}
	s.sched = live.NewScheduler(classifier, nil, liveOpts)

	runnerOpts := opts.Runner
	if runnerOpts.Logger == nil {
		runnerOpts.Logger = s.logger
	}
	onCountdown := runnerOpts.OnCountdown
	runnerOpts.OnCountdown = func(secs int) {
		if onCountdown != nil {
			onCountdown(secs)
		}
		s.emit(Event{Countdown: secs})
	}
	s.runner = live.NewRunner(s.sched, s.Input, runnerOpts)
	return s
}

// SetText replaces the reasoning text. It is ignored after submission.
func (s *Session) SetText(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeLive {
		return false
	}
	s.text = text
	return true
}

// Text returns the current reasoning text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// ToggleTreatment selects or deselects a treatment and reports whether it
// is now selected. The selection keeps the case's treatment order.
func (s *Session) ToggleTreatment(name string) (bool, error) {
	if !s.Case.HasTreatment(name) {
		return false, fmt.Errorf("%w: %q", ErrUnknownTreatment, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeLive {
		return slices.Contains(s.treatments, name), ErrNotLive
	}

	if i := slices.Index(s.treatments, name); i >= 0 {
		s.treatments = slices.Delete(s.treatments, i, i+1)
		return false, nil
	}
	var next []string
	for _, t := range s.Case.Treatments {
		if t == name || slices.Contains(s.treatments, t) {
			next = append(next, t)
		}
	}
	s.treatments = next
	return true, nil
}

// Treatments returns the selected treatments.
func (s *Session) Treatments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.treatments)
}

// SetConfidence sets the learner's confidence, clamped to 0-100.
func (s *Session) SetConfidence(v int) int {
	v = min(max(v, MinConfidence), MaxConfidence)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confidence = v
	return v
}

// Confidence returns the learner's confidence.
func (s *Session) Confidence() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confidence
}

// Input is the editor state fed to the live scheduler.
func (s *Session) Input() live.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return live.Input{
		Text:       s.text,
		Treatments: slices.Clone(s.treatments),
		Confidence: s.confidence,
	}
}

// eventBuffer holds a few seconds of countdown; older events are dropped
// rather than blocking the timers.
const eventBuffer = 8

// Event is something the live timers did. Graph is set after a
// regeneration, with Countdown -1; otherwise Countdown is the seconds
// until the next tick.
type Event struct {
	Countdown int
	Graph     *blockgraph.Graph
}

// Events delivers live timer events. Nothing is sent once the live
// timers are stopped, except for a classification that was already in
// flight.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("live event dropped, no listener")
	}
}

// StartLive starts the regeneration and countdown timers.
func (s *Session) StartLive(ctx context.Context) error {
	if s.Mode() != ModeLive {
		return ErrNotLive
	}
	return s.runner.Start(ctx)
}

// StopLive cancels both timers. An in-flight classification finishes.
func (s *Session) StopLive() {
	s.runner.Stop()
}

// Live reports whether the live timers are running.
func (s *Session) Live() bool {
	return s.runner.Running()
}

// UpdateNow is the learner's manual regeneration request.
func (s *Session) UpdateNow(ctx context.Context) (live.Outcome, error) {
	if s.Mode() != ModeLive {
		return 0, ErrNotLive
	}
	return s.runner.UpdateNow(ctx), nil
}

// Countdown is the seconds until the next live regeneration.
func (s *Session) Countdown(now time.Time) int {
	return s.runner.Countdown(now)
}

// Graph returns the current learner graph.
func (s *Session) Graph() *blockgraph.Graph {
	return s.sched.Graph()
}

// Regenerating reports whether a live classification is in flight.
func (s *Session) Regenerating() bool {
	return s.sched.InFlight()
}

// Mode returns the session mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Status returns the analysis status and, when failed, its error.
func (s *Session) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.err
}

// Result returns the last scored submission, or nil.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Submit stops live mode, runs the final analysis and scores it against
// the reference graph. A failure leaves the session in StatusFailed;
// calling Submit again retries.
func (s *Session) Submit(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.status == StatusAnalyzing {
		s.mu.Unlock()
		return nil, ErrAnalyzing
	}
	if strings.TrimSpace(s.text) == "" {
		s.mu.Unlock()
		return nil, ErrEmptyText
	}
	s.mode = ModeSubmitted
	s.status = StatusAnalyzing
	s.err = nil
	req := AnalysisRequest{
		CaseID:          s.Case.ID,
		CaseContext:     s.Case.Context(),
		Text:            s.text,
		Treatments:      slices.Clone(s.treatments),
		Confidence:      s.confidence,
		CurrentBlocks:   s.sched.Graph().Blocks(),
		ReferenceBlocks: s.Case.Graph().Blocks(),
	}
	s.mu.Unlock()

	s.runner.Stop()
	s.logger.Info("submission started", zap.Int("text_len", len(req.Text)))

	res, err := s.score(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = StatusFailed
		s.err = err
		s.logger.Warn("submission failed", zap.Error(err))
		return nil, err
	}
	s.status = StatusDone
	s.result = res
	s.logger.Info("submission scored",
		zap.Int("alignment", res.Comparison.Alignment),
		zap.Int("matched", len(res.Comparison.Matched)),
		zap.Int("missed", len(res.Comparison.Missed)),
		zap.Int("incorrect", len(res.Comparison.Incorrect)),
	)
	return res, nil
}

func (s *Session) score(ctx context.Context, req AnalysisRequest) (*Result, error) {
	analysis := &Analysis{StudentBlocks: req.CurrentBlocks}
	if s.analyzer != nil {
		a, err := s.analyzer.Analyze(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("final analysis: %w", err)
		}
		analysis = a
	}

	blocks, _ := blockgraph.Normalize(analysis.StudentBlocks, nil)
	learner, err := blockgraph.New(blocks)
	if err != nil {
		return nil, fmt.Errorf("build learner graph: %w", err)
	}
	reference := s.Case.Graph()

	var opts []compare.Option
	if s.opts.Threshold > 0 {
		opts = append(opts, compare.WithThreshold(s.opts.Threshold))
	}
	if s.opts.Rules != nil {
		opts = append(opts, compare.WithRules(s.opts.Rules...))
	}
	cmp := compare.Compare(learner.Blocks(), reference.Blocks(), opts...)

	return &Result{
		Analysis:    analysis,
		Learner:     learner,
		Reference:   reference,
		Comparison:  cmp,
		Annotated:   compare.Annotate(learner, reference, cmp),
		SubmittedAt: s.opts.Now(),
	}, nil
}

// Resume returns a submitted session to live mode so the learner can keep
// editing. The last result is kept until the next submission.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusAnalyzing {
		s.mu.Unlock()
		return ErrAnalyzing
	}
	s.mode = ModeLive
	s.status = StatusIdle
	s.err = nil
	s.mu.Unlock()
	return s.runner.Start(ctx)
}
