// Package cleanup implements the Ocean Cleanup session engine: a fixed
// countdown anchored to the wall clock, a pool of transient trash items with
// per-item expiry, and a cleared-item score mapped to reward tiers.
//
// Session methods take the current time explicitly so they can be driven by
// a Runner in production and stepped by hand in tests.
package cleanup

import (
	"errors"
	"sync"
	"time"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
)

var (
	// ErrInvalidTransition is returned by Start and Reset outside the state
	// that permits them.
	ErrInvalidTransition = errors.New("invalid session state transition")
	// ErrNotRunning is returned by Clear when the session is not running.
	ErrNotRunning = errors.New("session is not running")
	// ErrUnknownItem is returned by Clear for an id that is no longer live.
	ErrUnknownItem = errors.New("unknown or expired item")
	// ErrTornDown is returned by every operation after Teardown.
	ErrTornDown = errors.New("session torn down")
)

// Result is the terminal outcome of a session.
type Result struct {
	ItemsCleared int
	RewardTier   int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Session is one play-through. It is safe for concurrent use; all mutations
// serialize on an internal lock.
type Session struct {
	cfg Config
	rng Rand

	mu        sync.Mutex
	state     State
	startedAt time.Time
	cleared   int
	items     []Item
	result    Result
	reported  bool
	tornDown  bool
	gone      chan struct{}
}

// NewSession creates an idle session. cfg must pass Validate. A nil rng is
// replaced by a generator seeded from crypto/rand.
func NewSession(cfg Config, rng Rand) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		rng = NewRand(seed)
	}
	return &Session{cfg: cfg, rng: rng, state: StateIdle, gone: make(chan struct{})}, nil
}

// Config returns the session's fixed configuration.
func (s *Session) Config() Config { return s.cfg }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartedAt returns the instant Start succeeded, or the zero time if idle.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// ItemsCleared returns the current score.
func (s *Session) ItemsCleared() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

// CurrentTier previews the tier reached by the current score.
func (s *Session) CurrentTier() int {
	return RewardTier(s.ItemsCleared(), s.cfg.Tiers)
}

// Items returns a copy of the live pool in spawn order. After the session
// finishes it returns the pool as it stood at the final instant.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Result returns the terminal result and whether the session has finished.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.state == StateFinished
}

// Start begins the countdown and populates the initial batch. A second Start
// while running or finished is rejected and leaves startedAt unchanged.
func (s *Session) Start(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return ErrTornDown
	}
	if s.state != StateIdle {
		return ErrInvalidTransition
	}
	s.state = StateRunning
	s.startedAt = now
	s.cleared = 0
	s.items = make([]Item, 0, max(s.cfg.SpawnCap, s.cfg.InitialItems))
	for range s.cfg.InitialItems {
		s.items = append(s.items, newItem(s.cfg, s.rng, now))
	}
	return nil
}

// Remaining returns max(0, budget - (now - startedAt)). It never accumulates
// ticks, so suspended hosts see the correct value on the next call.
func (s *Session) Remaining(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked(now)
}

func (s *Session) remainingLocked(now time.Time) time.Duration {
	switch s.state {
	case StateIdle:
		return s.cfg.Duration
	case StateFinished:
		return 0
	}
	left := s.cfg.Duration - now.Sub(s.startedAt)
	if left < 0 {
		return 0
	}
	if left > s.cfg.Duration {
		// Clock stepped backwards past startedAt.
		return s.cfg.Duration
	}
	return left
}

// DisplaySeconds returns the whole seconds shown on a countdown, rounded up.
func (s *Session) DisplaySeconds(now time.Time) int {
	left := s.Remaining(now)
	return int((left + time.Second - 1) / time.Second)
}

// Poll checks the countdown. The first call that observes an exhausted
// budget returns the terminal result with true; every other call returns
// false. Other operations may perform the transition itself, but only Poll
// emits the result.
func (s *Session) Poll(now time.Time) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return Result{}, false
	}
	s.finishIfDueLocked(now)
	if s.state != StateFinished || s.reported {
		return Result{}, false
	}
	s.reported = true
	return s.result, true
}

func (s *Session) finishIfDueLocked(now time.Time) {
	if s.tornDown || s.state != StateRunning {
		return
	}
	if s.remainingLocked(now) > 0 {
		return
	}
	s.state = StateFinished
	s.result = Result{
		ItemsCleared: s.cleared,
		RewardTier:   RewardTier(s.cleared, s.cfg.Tiers),
		StartedAt:    s.startedAt,
		FinishedAt:   s.startedAt.Add(s.cfg.Duration),
	}
}

// SpawnTick adds one item unless the pool is at its cap. It reports whether
// an item was added.
func (s *Session) SpawnTick(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishIfDueLocked(now)
	if s.tornDown || s.state != StateRunning {
		return false
	}
	if len(s.items) >= s.cfg.SpawnCap {
		return false
	}
	s.items = append(s.items, newItem(s.cfg, s.rng, now))
	return true
}

// Sweep removes every item whose age has reached its lifetime and returns
// how many were dropped. Expired items are not credited.
func (s *Session) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishIfDueLocked(now)
	if s.tornDown || s.state != StateRunning {
		return 0
	}
	kept := s.items[:0]
	for _, it := range s.items {
		if !it.Expired(now) {
			kept = append(kept, it)
		}
	}
	removed := len(s.items) - len(kept)
	clear(s.items[len(kept):])
	s.items = kept
	return removed
}

// Clear removes a live item and credits one point, whatever its weight.
func (s *Session) Clear(id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return ErrTornDown
	}
	s.finishIfDueLocked(now)
	if s.state != StateRunning {
		return ErrNotRunning
	}
	for i, it := range s.items {
		if it.ID != id {
			continue
		}
		// An item past its lifetime is gone even if no sweep has run yet.
		if it.Expired(now) {
			break
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.cleared++
		return nil
	}
	return ErrUnknownItem
}

// Reset returns a finished session to idle so it can be started again.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return ErrTornDown
	}
	switch s.state {
	case StateIdle:
		return nil
	case StateRunning:
		return ErrInvalidTransition
	}
	s.state = StateIdle
	s.startedAt = time.Time{}
	s.cleared = 0
	s.items = nil
	s.result = Result{}
	s.reported = false
	return nil
}

// Teardown destroys the session and stops any runner driving it. Later
// calls are no-ops.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tornDown {
		return
	}
	s.tornDown = true
	s.items = nil
	close(s.gone)
}

// TornDown is closed by Teardown.
func (s *Session) TornDown() <-chan struct{} { return s.gone }
