package cleanup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := NewSession(cfg, NewRand(42))
	require.NoError(t, err)
	return s
}

// smallConfig has a single category so lifetimes are predictable.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Categories = []Category{{Name: "cup", Glyph: "%", BaseLifetime: 6 * time.Second}}
	return cfg
}

func TestNewSession_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnCap = 0
	_, err := NewSession(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewSession_NilRandUsesSeededDefault(t *testing.T) {
	s, err := NewSession(DefaultConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start(epoch))
	assert.Len(t, s.Items(), DefaultInitialItems)
}

func TestSession_StartPopulatesInitialBatch(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))

	assert.Equal(t, StateRunning, s.State())
	assert.Equal(t, epoch, s.StartedAt())
	items := s.Items()
	require.Len(t, items, 12)

	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "ids must be unique")
		seen[it.ID] = true
		assert.GreaterOrEqual(t, it.X, 10.0)
		assert.Less(t, it.X, 90.0)
		assert.GreaterOrEqual(t, it.Y, 10.0)
		assert.Less(t, it.Y, 80.0)
		assert.GreaterOrEqual(t, it.Weight, 1)
		assert.LessOrEqual(t, it.Weight, 3)
		assert.Equal(t, it.Category.BaseLifetime+DefaultGrace, it.Lifetime)
		assert.Equal(t, epoch, it.CreatedAt)
	}
}

func TestSession_DoubleStartKeepsStartedAt(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))

	err := s.Start(epoch.Add(5 * time.Second))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, epoch, s.StartedAt())
	assert.Equal(t, 55*time.Second, s.Remaining(epoch.Add(5*time.Second)))
}

func TestSession_StartAfterFinishRejected(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))
	_, ok := s.Poll(epoch.Add(61 * time.Second))
	require.True(t, ok)

	assert.ErrorIs(t, s.Start(epoch.Add(62*time.Second)), ErrInvalidTransition)
}

func TestSession_RemainingNonIncreasingAndClamped(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	assert.Equal(t, DefaultDuration, s.Remaining(epoch), "idle session reports the full budget")
	require.NoError(t, s.Start(epoch))

	prev := s.Remaining(epoch)
	assert.Equal(t, DefaultDuration, prev)
	zeros := 0
	for ms := 0; ms <= 70_000; ms += 333 {
		r := s.Remaining(epoch.Add(time.Duration(ms) * time.Millisecond))
		assert.LessOrEqual(t, r, prev)
		assert.GreaterOrEqual(t, r, time.Duration(0))
		if r == 0 && prev != 0 {
			zeros++
		}
		prev = r
	}
	assert.Equal(t, 1, zeros, "remaining reaches zero exactly once")
}

func TestSession_RemainingSurvivesSuspension(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))

	// No polls for 45s, as if the host was backgrounded.
	assert.Equal(t, 15*time.Second, s.Remaining(epoch.Add(45*time.Second)))
	assert.Equal(t, 15, s.DisplaySeconds(epoch.Add(45*time.Second)))
	assert.Equal(t, 16, s.DisplaySeconds(epoch.Add(44*time.Second+900*time.Millisecond)))
}

func TestSession_PollEmitsOnce(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))

	_, ok := s.Poll(epoch.Add(59 * time.Second))
	assert.False(t, ok)
	assert.Equal(t, StateRunning, s.State())

	res, ok := s.Poll(epoch.Add(60 * time.Second))
	require.True(t, ok)
	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, 0, res.ItemsCleared)
	assert.Equal(t, 0, res.RewardTier)
	assert.Equal(t, epoch.Add(60*time.Second), res.FinishedAt)

	_, ok = s.Poll(epoch.Add(61 * time.Second))
	assert.False(t, ok, "later polls are no-ops")
	final, finished := s.Result()
	assert.True(t, finished)
	assert.Equal(t, res, final)
}

func TestSession_ClearLiveItemOnce(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))
	id := s.Items()[3].ID
	weight := s.Items()[3].Weight

	require.NoError(t, s.Clear(id, epoch.Add(time.Second)))
	assert.Equal(t, 1, s.ItemsCleared(), "a clear credits one point regardless of weight %d", weight)
	assert.Len(t, s.Items(), 11)

	assert.ErrorIs(t, s.Clear(id, epoch.Add(2*time.Second)), ErrUnknownItem)
	assert.Equal(t, 1, s.ItemsCleared())
}

func TestSession_ClearUnknownID(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))
	assert.ErrorIs(t, s.Clear("no-such-item", epoch), ErrUnknownItem)
	assert.Equal(t, 0, s.ItemsCleared())
}

func TestSession_ClearExpiredItemFails(t *testing.T) {
	s := newTestSession(t, smallConfig())
	require.NoError(t, s.Start(epoch))
	id := s.Items()[0].ID

	// Lifetime is 6s + 3s grace. No sweep has run yet.
	assert.ErrorIs(t, s.Clear(id, epoch.Add(9*time.Second)), ErrUnknownItem)
	assert.Equal(t, 0, s.ItemsCleared())

	// After a sweep the id is gone entirely.
	assert.Equal(t, 12, s.Sweep(epoch.Add(9*time.Second)))
	assert.ErrorIs(t, s.Clear(id, epoch.Add(9*time.Second)), ErrUnknownItem)
}

func TestSession_ClearStillWorksWhileFaded(t *testing.T) {
	s := newTestSession(t, smallConfig())
	require.NoError(t, s.Start(epoch))
	it := s.Items()[0]
	now := epoch.Add(8*time.Second + 900*time.Millisecond)

	assert.InDelta(t, 0.3, Fade(it, now), 1e-9)
	require.NoError(t, s.Clear(it.ID, now))
}

func TestSession_ClearRejectedOutsideRunning(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	assert.ErrorIs(t, s.Clear("x", epoch), ErrNotRunning)

	require.NoError(t, s.Start(epoch))
	id := s.Items()[0].ID
	_, ok := s.Poll(epoch.Add(60 * time.Second))
	require.True(t, ok)

	assert.ErrorIs(t, s.Clear(id, epoch.Add(60*time.Second)), ErrNotRunning)
	assert.Equal(t, 0, s.ItemsCleared())
}

func TestSession_SweepBoundary(t *testing.T) {
	s := newTestSession(t, smallConfig())
	require.NoError(t, s.Start(epoch))

	// Lifetime 9s: one nanosecond short survives, exactly 9s is removed.
	assert.Equal(t, 0, s.Sweep(epoch.Add(9*time.Second-time.Nanosecond)))
	assert.Len(t, s.Items(), 12)
	assert.Equal(t, 12, s.Sweep(epoch.Add(9*time.Second)))
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.ItemsCleared(), "expired items are not credited")
}

func TestSession_SweepKeepsYoungItems(t *testing.T) {
	s := newTestSession(t, smallConfig())
	require.NoError(t, s.Start(epoch))
	require.True(t, s.SpawnTick(epoch.Add(2*time.Second)))
	young := s.Items()[12].ID

	assert.Equal(t, 12, s.Sweep(epoch.Add(9*time.Second)))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, young, items[0].ID)
}

func TestSession_SpawnNeverExceedsCap(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))

	added := 0
	for i := 1; i <= 10; i++ {
		if s.SpawnTick(epoch.Add(time.Duration(i) * 100 * time.Millisecond)) {
			added++
		}
		assert.LessOrEqual(t, len(s.Items()), DefaultSpawnCap)
	}
	assert.Equal(t, 3, added)
	assert.Len(t, s.Items(), DefaultSpawnCap)
}

func TestSession_NoMutationAfterFinish(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))
	require.NoError(t, s.Clear(s.Items()[0].ID, epoch.Add(time.Second)))
	before := s.Items()

	// Callbacks that fire after the budget, before any poll, still see the
	// session as finished.
	late := epoch.Add(60 * time.Second)
	assert.False(t, s.SpawnTick(late))
	assert.Equal(t, 0, s.Sweep(late.Add(time.Hour)))
	assert.ErrorIs(t, s.Clear(before[0].ID, late), ErrNotRunning)

	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, before, s.Items())
	assert.Equal(t, 1, s.ItemsCleared())

	res, ok := s.Poll(late)
	require.True(t, ok, "the first poll still emits the result")
	assert.Equal(t, 1, res.ItemsCleared)
}

func TestSession_ResetRequiresFinished(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Reset(), "reset while idle is a no-op")
	require.NoError(t, s.Start(epoch))
	assert.ErrorIs(t, s.Reset(), ErrInvalidTransition)

	_, ok := s.Poll(epoch.Add(time.Minute))
	require.True(t, ok)
	require.NoError(t, s.Reset())
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, s.StartedAt().IsZero())

	require.NoError(t, s.Start(epoch.Add(2*time.Minute)))
	assert.Equal(t, epoch.Add(2*time.Minute), s.StartedAt())
	assert.Len(t, s.Items(), DefaultInitialItems)
}

func TestSession_TeardownStopsEverything(t *testing.T) {
	s := newTestSession(t, DefaultConfig())
	require.NoError(t, s.Start(epoch))
	id := s.Items()[0].ID
	s.Teardown()

	assert.ErrorIs(t, s.Clear(id, epoch), ErrTornDown)
	assert.False(t, s.SpawnTick(epoch.Add(2*time.Second)))
	assert.Equal(t, 0, s.Sweep(epoch.Add(time.Minute)))
	_, ok := s.Poll(epoch.Add(time.Minute))
	assert.False(t, ok)
	assert.ErrorIs(t, s.Start(epoch), ErrTornDown)
	assert.ErrorIs(t, s.Reset(), ErrTornDown)
	assert.Equal(t, 0, s.ItemsCleared())
}

func TestSession_SeededSpawnsAreReproducible(t *testing.T) {
	a, err := NewSession(DefaultConfig(), NewRand(7))
	require.NoError(t, err)
	b, err := NewSession(DefaultConfig(), NewRand(7))
	require.NoError(t, err)
	require.NoError(t, a.Start(epoch))
	require.NoError(t, b.Start(epoch))

	ia, ib := a.Items(), b.Items()
	require.Len(t, ib, len(ia))
	for i := range ia {
		assert.Equal(t, ia[i].X, ib[i].X)
		assert.Equal(t, ia[i].Y, ib[i].Y)
		assert.Equal(t, ia[i].Category, ib[i].Category)
		assert.Equal(t, ia[i].Weight, ib[i].Weight)
	}
}
