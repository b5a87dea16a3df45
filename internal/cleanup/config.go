package cleanup

import (
	"errors"
	"fmt"
	"time"
)

// Canonical tuning of the Ocean Cleanup mini-game.
const (
	DefaultDuration      = 60 * time.Second
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultSpawnInterval = 2 * time.Second
	DefaultSweepInterval = 500 * time.Millisecond
	DefaultSpawnCap      = 15
	DefaultInitialItems  = 12
	DefaultGrace         = 3 * time.Second
	DefaultRewardCap     = 10
)

// Category is a visual kind of trash. Each kind has its own base lifetime.
type Category struct {
	Name         string
	Glyph        string
	BaseLifetime time.Duration
}

// DefaultCategories is the trash table of the canonical game. Glyphs are
// never letters so they cannot be mistaken for key labels.
var DefaultCategories = []Category{
	{Name: "bin", Glyph: "#", BaseLifetime: 8 * time.Second},
	{Name: "cup", Glyph: "%", BaseLifetime: 6 * time.Second},
	{Name: "bag", Glyph: "&", BaseLifetime: 10 * time.Second},
	{Name: "bottle", Glyph: "!", BaseLifetime: 5 * time.Second},
	{Name: "can", Glyph: "@", BaseLifetime: 7 * time.Second},
}

// Region bounds item positions, in percent of the play area.
// Min is inclusive, Max exclusive.
type Region struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// DefaultRegion keeps items away from the play-area edges.
var DefaultRegion = Region{MinX: 10, MaxX: 90, MinY: 10, MaxY: 80}

// Tier maps a minimum cleared count to a reward value.
type Tier struct {
	MinCleared int
	Reward     int
}

// DefaultTiers lists reward brackets from highest to lowest.
var DefaultTiers = []Tier{
	{MinCleared: 40, Reward: 3},
	{MinCleared: 20, Reward: 2},
	{MinCleared: 10, Reward: 1},
}

// Config is the host-supplied fixed configuration of a session.
type Config struct {
	Duration      time.Duration
	PollInterval  time.Duration
	SpawnInterval time.Duration
	SweepInterval time.Duration
	SpawnCap      int
	InitialItems  int
	Grace         time.Duration
	Region        Region
	Categories    []Category
	Tiers         []Tier
	RewardCap     int
}

// DefaultConfig returns the canonical configuration.
func DefaultConfig() Config {
	return Config{
		Duration:      DefaultDuration,
		PollInterval:  DefaultPollInterval,
		SpawnInterval: DefaultSpawnInterval,
		SweepInterval: DefaultSweepInterval,
		SpawnCap:      DefaultSpawnCap,
		InitialItems:  DefaultInitialItems,
		Grace:         DefaultGrace,
		Region:        DefaultRegion,
		Categories:    append([]Category(nil), DefaultCategories...),
		Tiers:         append([]Tier(nil), DefaultTiers...),
		RewardCap:     DefaultRewardCap,
	}
}

// ErrInvalidConfig wraps every error returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid cleanup config")

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	switch {
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidConfig)
	case c.PollInterval <= 0 || c.SpawnInterval <= 0 || c.SweepInterval <= 0:
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	case c.SpawnCap <= 0:
		return fmt.Errorf("%w: spawn cap must be positive", ErrInvalidConfig)
	case c.InitialItems < 0:
		return fmt.Errorf("%w: initial items must not be negative", ErrInvalidConfig)
	case c.Grace < 0:
		return fmt.Errorf("%w: grace must not be negative", ErrInvalidConfig)
	case len(c.Categories) == 0:
		return fmt.Errorf("%w: at least one category is required", ErrInvalidConfig)
	case c.Region.MaxX <= c.Region.MinX || c.Region.MaxY <= c.Region.MinY:
		return fmt.Errorf("%w: empty spawn region", ErrInvalidConfig)
	case c.RewardCap < 0:
		return fmt.Errorf("%w: reward cap must not be negative", ErrInvalidConfig)
	}
	for _, cat := range c.Categories {
		if cat.BaseLifetime <= 0 {
			return fmt.Errorf("%w: category %q needs a positive lifetime", ErrInvalidConfig, cat.Name)
		}
	}
	for i := 1; i < len(c.Tiers); i++ {
		if c.Tiers[i].MinCleared >= c.Tiers[i-1].MinCleared {
			return fmt.Errorf("%w: tiers must be ordered by descending threshold", ErrInvalidConfig)
		}
	}
	return nil
}
