package domain

import "time"

// RewardClaim tracks the handoff of a run's reward to the external claim step.
type RewardClaim struct {
	ID        string
	RunID     string
	Amount    int
	Status    ClaimStatus
	Reference string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarkSubmitted records a successful handoff.
func (c *RewardClaim) MarkSubmitted(ref string, now time.Time) {
	c.Status = ClaimSubmitted
	c.Reference = ref
	c.Error = ""
	c.UpdatedAt = now
}

// MarkFailed records a failed handoff. The run itself is left untouched.
func (c *RewardClaim) MarkFailed(err error, now time.Time) {
	c.Status = ClaimFailed
	if err != nil {
		c.Error = err.Error()
	}
	c.UpdatedAt = now
}
