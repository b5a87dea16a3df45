package service

import (
	"context"
	"time"

	"github.com/alexanderramin/dagatna/internal/domain"
	"github.com/alexanderramin/dagatna/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type runService struct {
	runs     repository.RunRepo
	clock    clockwork.Clock
	cooldown time.Duration
	observer UseCaseObserver
}

// NewRunService creates a RunService. A non-positive cooldown disables the
// start gate.
func NewRunService(runs repository.RunRepo, clock clockwork.Clock, cooldown time.Duration, observers ...UseCaseObserver) RunService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &runService{
		runs:     runs,
		clock:    clock,
		cooldown: cooldown,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *runService) CheckCooldown(ctx context.Context) (wait time.Duration, err error) {
	if s.cooldown <= 0 {
		return 0, nil
	}
	latest, err := s.runs.LatestStartedAt(ctx)
	if err != nil || latest == nil {
		return 0, err
	}
	wait = s.cooldown - s.clock.Since(*latest)
	if wait < 0 {
		return 0, nil
	}
	return wait, nil
}

func (s *runService) RecordRun(ctx context.Context, rec RunRecord) (run *domain.CleanupRun, err error) {
	res := rec.Result
	source := rec.Source
	if source == "" {
		source = domain.RunSourcePlay
	}
	fields := map[string]any{
		"items_cleared": res.ItemsCleared,
		"reward_tier":   res.RewardTier,
		"source":        string(source),
	}
	defer observe(ctx, s.observer, "record-run", time.Now().UTC(), fields, &err)

	run = &domain.CleanupRun{
		ID:           uuid.New().String(),
		Seed:         rec.Seed,
		StartedAt:    res.StartedAt.UTC(),
		FinishedAt:   res.FinishedAt.UTC(),
		DurationMs:   res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
		ItemsCleared: res.ItemsCleared,
		RewardTier:   res.RewardTier,
		RewardCap:    max(rec.RewardCap, 0),
		Source:       source,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err = s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	fields["run_id"] = run.ID
	return run, nil
}

func (s *runService) GetByID(ctx context.Context, id string) (*domain.CleanupRun, error) {
	return s.runs.GetByID(ctx, id)
}

func (s *runService) ListRecent(ctx context.Context, limit int) ([]*domain.CleanupRun, error) {
	return s.runs.ListRecent(ctx, limit)
}
