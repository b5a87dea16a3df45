package cleanup

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Script schedules clears at offsets from the session start. Each scheduled
// clear targets the oldest live item at that instant.
type Script struct {
	ClearAt []time.Duration
}

// EvenScript spreads n clears every interval, the first at offset.
func EvenScript(n int, offset, every time.Duration) Script {
	at := make([]time.Duration, 0, n)
	for i := range n {
		at = append(at, offset+time.Duration(i)*every)
	}
	return Script{ClearAt: at}
}

// SimReport summarizes a simulated session.
type SimReport struct {
	Result   Result
	Attempts int
	Misses   int
	Spawned  int
	Expired  int
	MaxPool  int
}

// Simulate plays an idle session headlessly from start, stepping virtual
// time at the poll interval and firing spawn and sweep whenever their
// interval has elapsed, the way Runner's tickers would.
func Simulate(s *Session, start time.Time, script Script) (SimReport, error) {
	if err := s.Start(start); err != nil {
		return SimReport{}, fmt.Errorf("starting simulated session: %w", err)
	}
	cfg := s.Config()
	clears := slices.Clone(script.ClearAt)
	slices.Sort(clears)

	var rep SimReport
	rep.MaxPool = len(s.Items())

	var elapsed, sinceSpawn, sinceSweep time.Duration
	for {
		elapsed += cfg.PollInterval
		sinceSpawn += cfg.PollInterval
		sinceSweep += cfg.PollInterval
		now := start.Add(elapsed)

		if sinceSpawn >= cfg.SpawnInterval {
			sinceSpawn -= cfg.SpawnInterval
			if s.SpawnTick(now) {
				rep.Spawned++
			}
		}
		if sinceSweep >= cfg.SweepInterval {
			sinceSweep -= cfg.SweepInterval
			rep.Expired += s.Sweep(now)
		}
		for len(clears) > 0 && clears[0] <= elapsed {
			clears = clears[1:]
			rep.Attempts++
			if err := clearOldest(s, now); err != nil {
				if !errors.Is(err, ErrUnknownItem) && !errors.Is(err, ErrNotRunning) {
					return rep, err
				}
				rep.Misses++
			}
		}
		rep.MaxPool = max(rep.MaxPool, len(s.Items()))

		if res, ok := s.Poll(now); ok {
			rep.Result = res
			return rep, nil
		}
	}
}

func clearOldest(s *Session, now time.Time) error {
	for _, it := range s.Items() {
		if !it.Expired(now) {
			return s.Clear(it.ID, now)
		}
	}
	if s.State() != StateRunning {
		return ErrNotRunning
	}
	return ErrUnknownItem
}
