package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/domain"
)

var (
	// ErrNothingToClaim is returned when a run's reward clamps to zero.
	ErrNothingToClaim = errors.New("run earned no reward")
	// ErrAlreadyClaimed is returned when a run has a submitted or in-flight claim.
	ErrAlreadyClaimed = errors.New("run reward already claimed")
	// ErrClaimFailed wraps errors from the external claim step.
	ErrClaimFailed = errors.New("reward claim failed")
	// ErrSimulatedRun is returned when a claim targets a simulated run.
	ErrSimulatedRun = errors.New("simulated runs cannot be claimed")
)

// RunRecord is a finished session as handed to RecordRun. An empty Source
// is recorded as a played run.
type RunRecord struct {
	Seed      uint64
	Result    cleanup.Result
	RewardCap int
	Source    domain.RunSource
}

type RunService interface {
	// CheckCooldown returns how long the host must wait before starting a
	// new session. Zero means a session may start now.
	CheckCooldown(ctx context.Context) (time.Duration, error)
	RecordRun(ctx context.Context, rec RunRecord) (*domain.CleanupRun, error)
	GetByID(ctx context.Context, id string) (*domain.CleanupRun, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.CleanupRun, error)
}

type ClaimService interface {
	Claim(ctx context.Context, runID string) (*domain.RewardClaim, error)
	// Claimable returns the amount Claim would hand to the claimer for run,
	// ignoring claims already made.
	Claimable(run *domain.CleanupRun) int
	ListByRun(ctx context.Context, runID string) ([]*domain.RewardClaim, error)
	Balance(ctx context.Context) (int, error)
}

// ClaimRequest is what the external claim step receives.
type ClaimRequest struct {
	RunID  string
	Amount int
}

// Claimer hands a reward to the external system that grants it. The
// engine's numbers are advisory; the claimer's system is authoritative.
type Claimer interface {
	ClaimReward(ctx context.Context, req ClaimRequest) (reference string, err error)
}
