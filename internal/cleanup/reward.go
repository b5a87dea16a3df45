package cleanup

// RewardTier returns the reward bracket reached by n cleared items.
// tiers must be ordered by descending MinCleared, as DefaultTiers is.
// It has no side effects and may be called speculatively for previews.
func RewardTier(n int, tiers []Tier) int {
	for _, t := range tiers {
		if n >= t.MinCleared {
			return t.Reward
		}
	}
	return 0
}

// ClaimAmount clamps a tier value to [0, limit] before it is handed to any
// external claim step.
func ClaimAmount(tier, limit int) int {
	if tier < 0 {
		return 0
	}
	return min(tier, limit)
}

// Progress describes how far a cleared count is toward the next tier.
type Progress struct {
	NextTarget int     // threshold of the next tier; the top threshold once reached
	Fraction   float64 // 0..1 within the current bracket
	Maxed      bool    // top tier reached
}

// ProgressFor computes the live progress bar state for n cleared items.
func ProgressFor(n int, tiers []Tier) Progress {
	if len(tiers) == 0 {
		return Progress{Fraction: 1, Maxed: true}
	}
	if n >= tiers[0].MinCleared {
		return Progress{NextTarget: tiers[0].MinCleared, Fraction: 1, Maxed: true}
	}

	// Walk up from the lowest bracket to find the one n sits in.
	floor := 0
	for i := len(tiers) - 1; i >= 0; i-- {
		target := tiers[i].MinCleared
		if n < target {
			span := target - floor
			frac := 0.0
			if span > 0 {
				frac = float64(n-floor) / float64(span)
			}
			return Progress{NextTarget: target, Fraction: frac}
		}
		floor = target
	}
	return Progress{NextTarget: tiers[0].MinCleared, Fraction: 1, Maxed: true}
}
