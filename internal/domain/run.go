package domain

import "time"

// CleanupRun is the stored record of a finished Ocean Cleanup session.
// It is advisory: the reward grant itself happens in an external system.
type CleanupRun struct {
	ID           string
	Seed         uint64
	StartedAt    time.Time
	FinishedAt   time.Time
	DurationMs   int64
	ItemsCleared int
	RewardTier   int
	// RewardCap is the claim cap the session was configured with.
	RewardCap int
	Source    RunSource
	CreatedAt time.Time
}
