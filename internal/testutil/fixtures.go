package testutil

import (
	"time"

	"github.com/alexanderramin/dagatna/internal/domain"
	"github.com/google/uuid"
)

// Run options
type RunOption func(*domain.CleanupRun)

func WithStartedAt(t time.Time) RunOption {
	return func(r *domain.CleanupRun) {
		r.StartedAt = t
		r.FinishedAt = t.Add(time.Duration(r.DurationMs) * time.Millisecond)
	}
}

func WithCleared(n, tier int) RunOption {
	return func(r *domain.CleanupRun) {
		r.ItemsCleared = n
		r.RewardTier = tier
	}
}

func WithSeed(seed uint64) RunOption {
	return func(r *domain.CleanupRun) {
		r.Seed = seed
	}
}

func WithRewardCap(limit int) RunOption {
	return func(r *domain.CleanupRun) {
		r.RewardCap = limit
	}
}

func WithSource(src domain.RunSource) RunOption {
	return func(r *domain.CleanupRun) {
		r.Source = src
	}
}

// NewTestRun builds a finished one-minute run that started an hour ago.
func NewTestRun(opts ...RunOption) *domain.CleanupRun {
	now := time.Now().UTC()
	started := now.Add(-time.Hour)
	r := &domain.CleanupRun{
		ID:           uuid.New().String(),
		Seed:         42,
		StartedAt:    started,
		FinishedAt:   started.Add(time.Minute),
		DurationMs:   time.Minute.Milliseconds(),
		ItemsCleared: 12,
		RewardTier:   1,
		RewardCap:    10,
		Source:       domain.RunSourcePlay,
		CreatedAt:    now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Claim options
type ClaimOption func(*domain.RewardClaim)

func WithClaimStatus(s domain.ClaimStatus) ClaimOption {
	return func(c *domain.RewardClaim) {
		c.Status = s
	}
}

func NewTestClaim(runID string, amount int, opts ...ClaimOption) *domain.RewardClaim {
	now := time.Now().UTC()
	c := &domain.RewardClaim{
		ID:        uuid.New().String(),
		RunID:     runID,
		Amount:    amount,
		Status:    domain.ClaimPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
