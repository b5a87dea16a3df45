package config

import "github.com/spf13/pflag"

// BindFlags registers the engine knobs on fs. Current values of e become the
// flag defaults, so env settings apply unless a flag overrides them.
func BindFlags(fs *pflag.FlagSet, e *EngineConfig) {
	fs.DurationVar(&e.Duration, "duration", e.Duration, "session length")
	fs.DurationVar(&e.PollInterval, "poll-interval", e.PollInterval, "countdown poll period")
	fs.DurationVar(&e.SpawnInterval, "spawn-interval", e.SpawnInterval, "time between spawns")
	fs.DurationVar(&e.SweepInterval, "sweep-interval", e.SweepInterval, "time between expiry sweeps")
	fs.IntVar(&e.SpawnCap, "spawn-cap", e.SpawnCap, "maximum live items")
	fs.IntVar(&e.InitialItems, "initial-items", e.InitialItems, "items present at start")
	fs.IntVar(&e.RewardCap, "reward-cap", e.RewardCap, "upper bound on a claimed reward, at most DAGATNA_REWARD_CAP")
}
