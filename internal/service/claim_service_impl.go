package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/dagatna/internal/cleanup"
	"github.com/alexanderramin/dagatna/internal/db"
	"github.com/alexanderramin/dagatna/internal/domain"
	"github.com/alexanderramin/dagatna/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// pendingClaimTTL is how long a pending claim blocks a retry. A claim left
// pending longer than this was interrupted before its outcome was recorded.
const pendingClaimTTL = 5 * time.Minute

type claimService struct {
	runs      repository.RunRepo
	claims    repository.ClaimRepo
	uow       db.UnitOfWork
	claimer   Claimer
	clock     clockwork.Clock
	rewardCap int
	observer  UseCaseObserver
}

// NewClaimService creates a ClaimService. rewardCap bounds every amount
// handed to the claimer, on top of the cap stored with each run.
func NewClaimService(
	runs repository.RunRepo,
	claims repository.ClaimRepo,
	uow db.UnitOfWork,
	claimer Claimer,
	clock clockwork.Clock,
	rewardCap int,
	observers ...UseCaseObserver,
) ClaimService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &claimService{
		runs:      runs,
		claims:    claims,
		uow:       uow,
		claimer:   claimer,
		clock:     clock,
		rewardCap: rewardCap,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *claimService) Claim(ctx context.Context, runID string) (claim *domain.RewardClaim, err error) {
	fields := map[string]any{"run_id": runID}
	defer observe(ctx, s.observer, "claim-reward", time.Now().UTC(), fields, &err)

	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Source == domain.RunSourceSimulate {
		return nil, ErrSimulatedRun
	}
	amount := s.Claimable(run)
	fields["amount"] = amount
	if amount <= 0 {
		return nil, ErrNothingToClaim
	}

	now := s.clock.Now().UTC()
	claim = &domain.RewardClaim{
		ID:        uuid.New().String(),
		RunID:     run.ID,
		Amount:    amount,
		Status:    domain.ClaimPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txClaims := repository.NewSQLiteClaimRepo(tx)
		existing, err := txClaims.ListByRun(ctx, run.ID)
		if err != nil {
			return err
		}
		for _, c := range existing {
			if s.blocksRetry(c, now) {
				return fmt.Errorf("claim %s is %s: %w", c.ID, c.Status, ErrAlreadyClaimed)
			}
		}
		return txClaims.Create(ctx, claim)
	})
	if err != nil {
		return nil, err
	}
	fields["claim_id"] = claim.ID

	// The external step runs outside the transaction; its outcome is
	// recorded afterwards.
	ref, claimErr := s.claimer.ClaimReward(ctx, ClaimRequest{RunID: run.ID, Amount: amount})
	if claimErr != nil {
		claim.MarkFailed(claimErr, s.clock.Now().UTC())
	} else {
		claim.MarkSubmitted(ref, s.clock.Now().UTC())
	}
	if err = s.claims.Update(ctx, claim); err != nil {
		return claim, fmt.Errorf("recording claim outcome: %w", err)
	}
	if claimErr != nil {
		return claim, fmt.Errorf("%w: %v", ErrClaimFailed, claimErr)
	}
	fields["reference"] = ref
	return claim, nil
}

func (s *claimService) Claimable(run *domain.CleanupRun) int {
	if run.Source == domain.RunSourceSimulate {
		return 0
	}
	return cleanup.ClaimAmount(run.RewardTier, min(run.RewardCap, s.rewardCap))
}

func (s *claimService) blocksRetry(c *domain.RewardClaim, now time.Time) bool {
	switch c.Status {
	case domain.ClaimSubmitted:
		return true
	case domain.ClaimPending:
		return now.Sub(c.UpdatedAt) < pendingClaimTTL
	}
	return false
}

func (s *claimService) ListByRun(ctx context.Context, runID string) ([]*domain.RewardClaim, error) {
	if _, err := s.runs.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	return s.claims.ListByRun(ctx, runID)
}

func (s *claimService) Balance(ctx context.Context) (int, error) {
	return s.claims.SumSubmitted(ctx)
}
