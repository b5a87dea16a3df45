package cleanup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Runner drives a Session with three periodic callbacks: the countdown poll,
// the spawn tick and the expiry sweep. The tickers are owned by the runner,
// started by Start and stopped on finish, Stop, session teardown or context
// cancellation.
type Runner struct {
	session  *Session
	clock    clockwork.Clock
	logger   *slog.Logger
	onFinish func(Result)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock sets the clock used for ticks and timestamps.
func WithClock(c clockwork.Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// OnFinish registers a handler that receives the terminal result once. It
// runs on the runner goroutine.
func OnFinish(fn func(Result)) RunnerOption {
	return func(r *Runner) { r.onFinish = fn }
}

// NewRunner wraps session. The session must be idle.
func NewRunner(session *Session, opts ...RunnerOption) *Runner {
	r := &Runner{
		session: session,
		clock:   clockwork.NewRealClock(),
		logger:  slog.New(slog.DiscardHandler),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the driven session.
func (r *Runner) Session() *Session { return r.session }

// Clock returns the runner's clock.
func (r *Runner) Clock() clockwork.Clock { return r.clock }

// Start starts the session and its tickers. A runner can only be started
// once; if the session refuses to start, Done is closed straight away.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrInvalidTransition
	}
	r.started = true
	if err := r.session.Start(r.clock.Now()); err != nil {
		close(r.done)
		return err
	}

	// Tickers are created before the goroutine so a fake clock sees all
	// three waiters as soon as Start returns.
	cfg := r.session.Config()
	poll := r.clock.NewTicker(cfg.PollInterval)
	spawn := r.clock.NewTicker(cfg.SpawnInterval)
	sweep := r.clock.NewTicker(cfg.SweepInterval)

	ctx, r.cancel = context.WithCancel(ctx)
	r.logger.Info("cleanup_session_started",
		"duration_ms", cfg.Duration.Milliseconds(),
		"initial_items", cfg.InitialItems)

	go r.loop(ctx, poll, spawn, sweep)
	return nil
}

func (r *Runner) loop(ctx context.Context, poll, spawn, sweep clockwork.Ticker) {
	defer close(r.done)
	defer poll.Stop()
	defer spawn.Stop()
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("cleanup_session_abandoned", "items_cleared", r.session.ItemsCleared())
			return
		case <-r.session.TornDown():
			r.logger.Info("cleanup_session_torn_down")
			return
		case <-poll.Chan():
			if res, ok := r.session.Poll(r.clock.Now()); ok {
				r.logger.Info("cleanup_session_finished",
					"items_cleared", res.ItemsCleared,
					"reward_tier", res.RewardTier)
				if r.onFinish != nil {
					r.onFinish(res)
				}
				return
			}
		case <-spawn.Chan():
			r.session.SpawnTick(r.clock.Now())
		case <-sweep.Chan():
			if n := r.session.Sweep(r.clock.Now()); n > 0 {
				r.logger.Debug("cleanup_items_expired", "count", n)
			}
		}
	}
}

// Clear forwards a user clear to the session at the runner's current time.
func (r *Runner) Clear(id string) error {
	return r.session.Clear(id, r.clock.Now())
}

// Done is closed once the loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Stop cancels the tickers and waits for the loop to exit. No callback runs
// after Stop returns. Stopping a runner that never started is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, started := r.cancel, r.started
	r.mu.Unlock()
	if !started {
		return
	}
	if cancel != nil {
		cancel()
	}
	<-r.done
}
