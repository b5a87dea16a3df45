package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/dagatna/internal/domain"
)

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = errors.New("not found")

type RunRepo interface {
	Create(ctx context.Context, r *domain.CleanupRun) error
	GetByID(ctx context.Context, id string) (*domain.CleanupRun, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.CleanupRun, error)
	// LatestStartedAt returns the start of the most recent run, or nil when
	// no run has been recorded.
	LatestStartedAt(ctx context.Context) (*time.Time, error)
}

type ClaimRepo interface {
	Create(ctx context.Context, c *domain.RewardClaim) error
	Update(ctx context.Context, c *domain.RewardClaim) error
	ListByRun(ctx context.Context, runID string) ([]*domain.RewardClaim, error)
	SumSubmitted(ctx context.Context) (int, error)
}
