// Package food holds the consumables and the manager that places them.
package food

import (
	"math/rand"
	"time"

	"github.com/hoshinonyaruko/snake-in-term/snake"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

// Kind 食物种类
type Kind int

const (
	Standard Kind = iota
	Bonus
	TimedSpecial
)

const (
	DefaultBonusLifetime = 10 * time.Second
	DefaultBonusChance   = 2 // 百分比
	DefaultTimedInterval = 30 * time.Second
	BonusTintDuration    = 3 * time.Second
)

var kindNames = map[Kind]string{
	Standard:     "standard",
	Bonus:        "bonus",
	TimedSpecial: "timed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a roster entry from the config file to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Consumable is a food item. The Kind tag selects its growth, color and spawn policy.
type Consumable struct {
	Kind Kind

	pos       structs.Position
	active    bool
	spawnedAt time.Time

	// Bonus
	lifetime  time.Duration
	despawnAt time.Time
	chance    int
	triggered bool

	// TimedSpecial
	interval     time.Duration
	nextEligible time.Time
}

func NewStandard() *Consumable {
	return &Consumable{Kind: Standard}
}

// NewBonus returns a bonus item that lives for lifetime once spawned and is
// triggered with chance percent whenever a standard item is eaten.
func NewBonus(lifetime time.Duration, chance int) *Consumable {
	if lifetime <= 0 {
		lifetime = DefaultBonusLifetime
	}
	return &Consumable{Kind: Bonus, lifetime: lifetime, chance: chance}
}

// NewTimedSpecial returns an item that becomes eligible at firstEligible and
// then interval after every time it is eaten. A zero firstEligible spawns it
// with the first update.
func NewTimedSpecial(interval time.Duration, firstEligible time.Time) *Consumable {
	if interval <= 0 {
		interval = DefaultTimedInterval
	}
	return &Consumable{Kind: TimedSpecial, interval: interval, nextEligible: firstEligible}
}

func (c *Consumable) Position() structs.Position { return c.pos }

func (c *Consumable) Active() bool { return c.active }

func (c *Consumable) SpawnedAt() time.Time { return c.spawnedAt }

func (c *Consumable) Color() structs.Color {
	switch c.Kind {
	case Bonus:
		return structs.ColorYellow
	case TimedSpecial:
		return structs.ColorMagenta
	default:
		return structs.ColorRed
	}
}

// GrowthAmount 吃掉后蛇增长的节数
func (c *Consumable) GrowthAmount() int {
	switch c.Kind {
	case Bonus:
		return 50
	case TimedSpecial:
		return 9
	default:
		return 3
	}
}

// Respawn picks a uniform cell inside the inclusive bounds and activates the
// item. It does not look at occupancy; the Manager retries on conflicts.
func (c *Consumable) Respawn(bounds structs.Bounds, rng *rand.Rand, now time.Time) {
	c.pos = structs.Position{
		X: bounds.XStart + rng.Intn(bounds.Width()),
		Y: bounds.YStart + rng.Intn(bounds.Height()),
	}
	c.active = true
	c.spawnedAt = now
	if c.Kind == Bonus {
		c.despawnAt = now.Add(c.lifetime)
	}
}

// OnConsume grows the body, applies the variant side effect and deactivates the
// item. The return value asks the Manager to drop it from the active set.
func (c *Consumable) OnConsume(body *snake.Body, now time.Time) bool {
	body.Grow(c.GrowthAmount())
	switch c.Kind {
	case Bonus:
		body.Tint(structs.ColorYellow, now.Add(BonusTintDuration))
	case TimedSpecial:
		c.nextEligible = now.Add(c.interval)
	}
	c.active = false
	return true
}

// ShouldSpawn reports spawn eligibility. For Bonus items the check consumes
// the trigger, so it must not be called speculatively.
func (c *Consumable) ShouldSpawn(now time.Time) bool {
	switch c.Kind {
	case Bonus:
		ok := c.triggered
		c.triggered = false
		return ok
	case TimedSpecial:
		return !now.Before(c.nextEligible)
	default:
		return true
	}
}

// Update advances lifetime state. An expired bonus just disappears.
func (c *Consumable) Update(now time.Time) {
	if c.Kind == Bonus && c.active && !now.Before(c.despawnAt) {
		c.active = false
	}
}

// Trigger arms a bonus item for the next spawn check.
func (c *Consumable) Trigger() {
	if c.Kind == Bonus {
		c.triggered = true
	}
}

// Roll draws the bonus chance; it never succeeds for other kinds.
func (c *Consumable) Roll(rng *rand.Rand) bool {
	return c.Kind == Bonus && rng.Intn(100) < c.chance
}

func (c *Consumable) deactivate() {
	c.active = false
}
