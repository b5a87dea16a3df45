package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// OfflineClaimer grants rewards locally. It stands in for a remote reward
// system and always succeeds with a fresh reference.
type OfflineClaimer struct {
	logger *slog.Logger
}

// NewOfflineClaimer creates an OfflineClaimer that logs each grant.
func NewOfflineClaimer(logger *slog.Logger) *OfflineClaimer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OfflineClaimer{logger: logger}
}

func (c *OfflineClaimer) ClaimReward(ctx context.Context, req ClaimRequest) (string, error) {
	if req.Amount <= 0 {
		return "", fmt.Errorf("claim amount must be positive, got %d", req.Amount)
	}
	ref := "offline-" + uuid.New().String()
	c.logger.InfoContext(ctx, "reward_granted",
		"run_id", req.RunID,
		"amount", req.Amount,
		"reference", ref)
	return ref, nil
}

// ClaimerFunc adapts a function to the Claimer interface.
type ClaimerFunc func(ctx context.Context, req ClaimRequest) (string, error)

func (f ClaimerFunc) ClaimReward(ctx context.Context, req ClaimRequest) (string, error) {
	return f(ctx, req)
}
