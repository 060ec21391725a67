package food

import (
	"math/rand"
	"time"

	"github.com/hoshinonyaruko/snake-in-term/snake"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

// MaxSpawnAttempts caps placement retries so a nearly full board cannot stall a tick.
const MaxSpawnAttempts = 100

type EventKind int

const (
	Spawned EventKind = iota
	Expired
)

// Event is a render delta produced by the manager.
type Event struct {
	Kind  EventKind
	Item  *Consumable
	Pos   structs.Position
	Color structs.Color
}

// Manager owns the active and pending consumables and the occupied-cell index.
type Manager struct {
	bounds   structs.Bounds
	rng      *rand.Rand
	active   []*Consumable
	pending  []*Consumable
	occupied map[structs.Position]struct{}
	events   []Event
}

func NewManager(bounds structs.Bounds, rng *rand.Rand) *Manager {
	return &Manager{
		bounds:   bounds,
		rng:      rng,
		occupied: make(map[structs.Position]struct{}),
	}
}

// RegisterConsumable spawns c right away if it is eligible, otherwise parks it.
func (m *Manager) RegisterConsumable(c *Consumable, now time.Time) {
	if c.ShouldSpawn(now) {
		m.spawn(c, now)
		return
	}
	m.pending = append(m.pending, c)
}

// Update spawns pending items that became eligible, then ages active ones.
func (m *Manager) Update(now time.Time) {
	waiting := m.pending
	m.pending = nil
	for _, c := range waiting {
		if c.ShouldSpawn(now) {
			m.spawn(c, now)
		} else {
			m.pending = append(m.pending, c)
		}
	}

	kept := m.active[:0]
	for _, c := range m.active {
		c.Update(now)
		if c.Active() {
			kept = append(kept, c)
			continue
		}
		delete(m.occupied, c.Position())
		m.pending = append(m.pending, c)
		m.events = append(m.events, Event{Kind: Expired, Item: c, Pos: c.Position(), Color: c.Color()})
	}
	m.active = kept
}

// CheckCollision returns the active item at pos, or nil.
func (m *Manager) CheckCollision(pos structs.Position) *Consumable {
	for _, c := range m.active {
		if c.Position() == pos {
			return c
		}
	}
	return nil
}

// ConsumeItem feeds c to body. Standard items come straight back and may arm
// pending bonuses; the others wait for their own spawn policy.
func (m *Manager) ConsumeItem(c *Consumable, body *snake.Body, now time.Time) {
	if !c.OnConsume(body, now) {
		return
	}
	m.removeActive(c)
	// the eater's head enters this cell next, so it stays occupied until the next rebuild
	if c.Kind != Standard {
		m.pending = append(m.pending, c)
		return
	}
	for _, p := range m.pending {
		if p.Roll(m.rng) {
			p.Trigger()
		}
	}
	m.RegisterConsumable(c, now)
}

// UpdateOccupiedPositions rebuilds the occupied set from the snake cells and
// the active items. Call it before Update so spawns avoid the latest body.
func (m *Manager) UpdateOccupiedPositions(cells []structs.Position) {
	clear(m.occupied)
	for _, p := range cells {
		m.occupied[p] = struct{}{}
	}
	for _, c := range m.active {
		m.occupied[c.Position()] = struct{}{}
	}
}

func (m *Manager) IsPositionOccupied(pos structs.Position) bool {
	_, ok := m.occupied[pos]
	return ok
}

func (m *Manager) Active() []*Consumable {
	out := make([]*Consumable, len(m.active))
	copy(out, m.active)
	return out
}

func (m *Manager) Pending() []*Consumable {
	out := make([]*Consumable, len(m.pending))
	copy(out, m.pending)
	return out
}

// TakeEvents returns the deltas recorded since the last call.
func (m *Manager) TakeEvents() []Event {
	events := m.events
	m.events = nil
	return events
}

func (m *Manager) spawn(c *Consumable, now time.Time) bool {
	if m.bounds.Cells() > 0 {
		for attempt := 0; attempt < MaxSpawnAttempts; attempt++ {
			c.Respawn(m.bounds, m.rng, now)
			if m.IsPositionOccupied(c.Position()) {
				continue
			}
			m.active = append(m.active, c)
			m.occupied[c.Position()] = struct{}{}
			m.events = append(m.events, Event{Kind: Spawned, Item: c, Pos: c.Position(), Color: c.Color()})
			return true
		}
	}
	// 没有空位，本轮放弃，下次 Update 再试
	c.deactivate()
	c.Trigger() // a bonus keeps its trigger for the retry
	m.pending = append(m.pending, c)
	return false
}

func (m *Manager) removeActive(c *Consumable) {
	for i, a := range m.active {
		if a == c {
			m.active = append(m.active[:i], m.active[i+1:]...)
			return
		}
	}
}
