package live

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval is the period of the background regeneration tick.
const DefaultInterval = 10 * time.Second

// ErrRunnerStarted is returned by Start on a running Runner.
var ErrRunnerStarted = errors.New("live runner already started")

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Interval time.Duration
	Logger   *zap.Logger

	// OnCountdown, when set, receives the seconds left until the next
	// tick once per second.
	OnCountdown func(seconds int)
	// OnOutcome, when set, receives the outcome of every tick.
	OnOutcome func(Outcome)
}

// Runner owns the timers of a live editing session: the regeneration
// tick and the one-second countdown. Both are cron entries on a private
// cron instance and are cancelled together by Stop. Stop never cancels
// a classifier call that is already running.
type Runner struct {
	sched  *Scheduler
	source func() Input
	opts   RunnerOptions

	mu          sync.Mutex
	cron        *cron.Cron
	ctx         context.Context
	tickID      cron.EntryID
	countdownID cron.EntryID
	manual      bool
}

// NewRunner creates a Runner that feeds source() into sched.
func NewRunner(sched *Scheduler, source func() Input, opts RunnerOptions) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{sched: sched, source: source, opts: opts}
}

// Start schedules both timers. ctx is handed to every classifier call.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return ErrRunnerStarted
	}

	r.ctx = ctx
	logger := cronLogger{r.opts.Logger.Sugar()}
	r.cron = cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger)))
	r.tickID = r.cron.Schedule(cron.Every(r.opts.Interval), cron.FuncJob(r.tick))
	if r.opts.OnCountdown != nil {
		r.countdownID = r.cron.Schedule(cron.Every(time.Second), cron.FuncJob(func() {
			r.opts.OnCountdown(r.Countdown(time.Now()))
		}))
	}
	r.cron.Start()

	r.opts.Logger.Info("live updates started", zap.Duration("interval", r.opts.Interval))
	return nil
}

// Stop cancels both timers. It is safe to call on a stopped Runner.
func (r *Runner) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.tickID, r.countdownID = 0, 0
	r.mu.Unlock()

	if c == nil {
		return
	}
	// The returned context tracks running jobs; we do not wait on it.
	c.Stop()
	r.opts.Logger.Info("live updates stopped")
}

// Running reports whether the timers are scheduled.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cron != nil
}

// UpdateNow cancels the pending tick, runs a manual trigger and then
// schedules a fresh tick a full interval away. On a stopped Runner it
// only runs the trigger. A call made while another UpdateNow is running
// returns OutcomeBusy and leaves the schedule alone.
func (r *Runner) UpdateNow(ctx context.Context) Outcome {
	r.mu.Lock()
	if r.manual {
		r.mu.Unlock()
		return OutcomeBusy
	}
	r.manual = true
	c := r.cron
	if c != nil {
		c.Remove(r.tickID)
	}
	r.mu.Unlock()

	out := r.sched.Trigger(ctx, r.source())

	r.mu.Lock()
	r.manual = false
	// A Stop and Start in between brings its own tick.
	if c != nil && r.cron == c {
		r.tickID = r.cron.Schedule(cron.Every(r.opts.Interval), cron.FuncJob(r.tick))
	}
	r.mu.Unlock()
	return out
}

// Countdown returns the whole seconds until the next tick, or 0 when
// none is scheduled. It is derived from the cron entry and drives
// nothing.
func (r *Runner) Countdown(now time.Time) int {
	r.mu.Lock()
	c, id := r.cron, r.tickID
	r.mu.Unlock()
	if c == nil {
		return 0
	}
	entry := c.Entry(id)
	if !entry.Valid() || entry.Next.IsZero() {
		return 0
	}
	secs := math.Ceil(entry.Next.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return int(secs)
}

func (r *Runner) tick() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	out := r.sched.Tick(ctx, r.source())
	if out == OutcomeBusy {
		r.opts.Logger.Debug("live tick dropped, classification in flight")
	}
	if r.opts.OnOutcome != nil {
		r.opts.OnOutcome(out)
	}
}

// cronLogger routes cron's own logging into zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
