package cleanup

import (
	"time"

	"github.com/google/uuid"
)

// Item is a transient collectible in the spawn pool.
type Item struct {
	ID        string
	X, Y      float64
	Category  Category
	CreatedAt time.Time
	Lifetime  time.Duration

	// Weight is drawn per item but never consulted by scoring.
	Weight int
}

// Age returns how long the item has been alive at now.
func (it Item) Age(now time.Time) time.Duration {
	return now.Sub(it.CreatedAt)
}

// Expired reports whether the item's lifetime has elapsed at now.
func (it Item) Expired(now time.Time) bool {
	return it.Age(now) >= it.Lifetime
}

// minFade is the lowest opacity an item is drawn with before it expires.
const minFade = 0.3

// Fade returns the display opacity of it at now, in [0.3, 1].
// It is cosmetic: an item stays clearable until it expires, however faded.
func Fade(it Item, now time.Time) float64 {
	if it.Lifetime <= 0 {
		return minFade
	}
	life := 1 - float64(it.Age(now))/float64(it.Lifetime)
	if life > 1 {
		life = 1
	}
	return max(minFade, life)
}

// newItem draws an item with independent position, category and weight.
func newItem(cfg Config, rng Rand, now time.Time) Item {
	cat := cfg.Categories[rng.IntN(len(cfg.Categories))]
	r := cfg.Region
	return Item{
		ID:        uuid.New().String(),
		X:         r.MinX + rng.Float64()*(r.MaxX-r.MinX),
		Y:         r.MinY + rng.Float64()*(r.MaxY-r.MinY),
		Category:  cat,
		CreatedAt: now,
		Lifetime:  cat.BaseLifetime + cfg.Grace,
		Weight:    rng.IntN(3) + 1,
	}
}
