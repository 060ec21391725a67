// Package game runs the fixed-tick simulation loop.
package game

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hoshinonyaruko/snake-in-term/food"
	"github.com/hoshinonyaruko/snake-in-term/snake"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

const (
	MinTickLength     = 25 * time.Millisecond
	MaxTickLength     = 250 * time.Millisecond
	DefaultTickLength = 75 * time.Millisecond
	DefaultLength     = 5
)

// State of the tick state machine.
type State int

const (
	Running State = iota
	Paused
	GameOver
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "gameover"
	}
}

// Config is read once when the session is created.
type Config struct {
	TickLength    time.Duration
	Bounds        structs.Bounds
	InitialLength int
	Roster        []food.Kind
	BonusChance   int
	BonusLifetime time.Duration
	TimedInterval time.Duration
}

func (c Config) normalized() Config {
	if c.TickLength == 0 {
		c.TickLength = DefaultTickLength
	}
	if c.TickLength < MinTickLength {
		c.TickLength = MinTickLength
	}
	if c.TickLength > MaxTickLength {
		c.TickLength = MaxTickLength
	}
	if c.InitialLength < 1 {
		c.InitialLength = DefaultLength
	}
	if c.Bounds.Cells() > 0 {
		// the body unrolls to the left of the start cell
		c.InitialLength = min(c.InitialLength, startPosition(c.Bounds).X-c.Bounds.XStart+1)
	}
	return c
}

// startPosition is Bounds.Center, or the middle of the board when the center
// formula falls outside it (large XStart or YStart).
func startPosition(b structs.Bounds) structs.Position {
	p := b.Center()
	if b.Contains(p) || b.Cells() == 0 {
		return p
	}
	return structs.Position{X: b.XStart + (b.XEnd-b.XStart)/2, Y: b.YStart + (b.YEnd-b.YStart)/2}
}

type Option func(*Session)

func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

// WithRand replaces the unseeded generator, mostly for tests.
func WithRand(r *rand.Rand) Option { return func(s *Session) { s.rng = r } }

func WithScoreSink(sink ScoreSink) Option { return func(s *Session) { s.sink = sink } }

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// Session owns the snake, the food manager, the RNG and the renderer handle
// for the lifetime of one game. It is not safe for concurrent use.
type Session struct {
	id  string
	cfg Config

	body  *snake.Body
	food  *food.Manager
	dir   structs.Direction
	state State
	quit  bool

	ticks     int64
	deadline  time.Time
	shownSecs int64
	started   bool

	renderer  Renderer
	input     InputSource
	clock     Clock
	rng       *rand.Rand
	sink      ScoreSink
	observers []Observer
}

func NewSession(cfg Config, renderer Renderer, input InputSource, opts ...Option) *Session {
	cfg = cfg.normalized()
	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		dir:      structs.Right,
		state:    Running,
		renderer: renderer,
		input:    input,
		clock:    SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.body = snake.New(cfg.InitialLength, startPosition(cfg.Bounds))
	s.food = food.NewManager(cfg.Bounds, s.rng)
	return s
}

// Run drives ticks until the session is over, then reports the score.
// A sink failure is returned together with the score; the session state is final either way.
func (s *Session) Run() (structs.Score, error) {
	s.Start()
	for s.state != GameOver {
		s.Tick()
	}
	return s.finish()
}

// Start draws the initial board and places the configured food. Run calls it.
func (s *Session) Start() {
	if s.started {
		return
	}
	s.started = true
	now := s.clock.Now()
	s.deadline = now

	for i, p := range s.body.Segments() {
		role := structs.RoleBody
		if i == 0 {
			role = structs.RoleHead
		}
		s.renderer.DrawSegment(p, role)
	}

	s.food.UpdateOccupiedPositions(s.reservedCells())
	for _, kind := range s.cfg.Roster {
		s.food.RegisterConsumable(s.newConsumable(kind), now)
	}
	s.flushFood()
	s.renderer.UpdateLengthDisplay(s.visibleLength())
	s.renderer.UpdateElapsedTime(0)
	log.Printf("session %s started: tick=%v bounds=%+v", s.id, s.cfg.TickLength, s.cfg.Bounds)
}

// Tick runs one iteration of the loop and returns the resulting state.
func (s *Session) Tick() State {
	if !s.started {
		s.Start()
	}
	if s.quit {
		s.state = GameOver
	}
	switch s.state {
	case GameOver:
		return s.state
	case Paused:
		// the clock keeps its cadence so resuming causes no catch-up burst
		s.waitTick()
		s.handleInput()
		if s.state == Running {
			s.evaluate()
		}
		return s.state
	}

	s.advance()
	s.waitTick()
	s.ticks++
	s.updateElapsed()
	s.handleInput()
	if s.state != Running {
		return s.state
	}
	s.evaluate()
	return s.state
}

func (s *Session) ID() string                   { return s.id }
func (s *Session) State() State                 { return s.state }
func (s *Session) Direction() structs.Direction { return s.dir }
func (s *Session) Ticks() int64                 { return s.ticks }
func (s *Session) Body() *snake.Body            { return s.body }
func (s *Session) Food() *food.Manager          { return s.food }
func (s *Session) Config() Config               { return s.cfg }

// Score is time survived (ticks × tick length) and the current length.
func (s *Session) Score() structs.Score {
	tickMs := int(s.cfg.TickLength / time.Millisecond)
	return structs.Score{
		SessionID: s.id,
		PlayedMs:  s.ticks * int64(tickMs),
		Length:    s.body.Length(),
		TickMs:    tickMs,
	}
}

func (s *Session) newConsumable(kind food.Kind) *food.Consumable {
	switch kind {
	case food.Bonus:
		return food.NewBonus(s.cfg.BonusLifetime, s.cfg.BonusChance)
	case food.TimedSpecial:
		return food.NewTimedSpecial(s.cfg.TimedInterval, time.Time{})
	default:
		return food.NewStandard()
	}
}

// advance commits the move and draws only what changed.
func (s *Session) advance() {
	oldHead, oldTail := s.body.Head(), s.body.Tail()
	s.body.Move(s.dir)

	role := structs.RoleBody
	if _, ok := s.body.Tinted(s.clock.Now()); ok {
		role = structs.RoleTinted
	}
	if s.body.Length() > 1 {
		s.renderer.DrawSegment(oldHead, role)
	}
	s.renderer.DrawSegment(s.body.Head(), structs.RoleHead)
	if !s.body.Contains(oldTail) {
		s.renderer.EraseCell(oldTail)
	}
}

func (s *Session) waitTick() {
	s.clock.SleepUntil(s.deadline)
	s.deadline = s.deadline.Add(s.cfg.TickLength)
}

// handleInput reads at most one key per tick.
func (s *Session) handleInput() {
	key, ok := s.input.PollKey()
	if !ok {
		return
	}
	switch key {
	case KeyUp:
		s.turn(structs.Up)
	case KeyDown:
		s.turn(structs.Down)
	case KeyLeft:
		s.turn(structs.Left)
	case KeyRight:
		s.turn(structs.Right)
	case KeyPause:
		if s.state == Paused {
			s.state = Running
		} else {
			s.state = Paused
		}
	case KeyQuit:
		s.quit = true
	}
}

func (s *Session) turn(d structs.Direction) {
	if s.state != Running || d.IsReverseOf(s.dir) {
		return
	}
	s.dir = d
}

// evaluate checks the cell the head will enter on the next move, so the game
// ends before anything is drawn on a wall or on the body.
func (s *Session) evaluate() {
	now := s.clock.Now()
	next := s.body.Head().Add(s.dir)

	if !s.cfg.Bounds.Contains(next) {
		s.state = GameOver
		return
	}
	if s.body.CheckSelfCollision(next, snake.SelfCollisionSkip) {
		s.state = GameOver
		return
	}

	if item := s.food.CheckCollision(next); item != nil {
		kind, growth := item.Kind, item.GrowthAmount()
		s.food.UpdateOccupiedPositions(s.reservedCells())
		s.food.ConsumeItem(item, s.body, now)
		for _, o := range s.observers {
			o.FoodEaten(kind, growth)
		}
	}

	s.food.UpdateOccupiedPositions(s.reservedCells())
	s.food.Update(now)
	s.flushFood()
	s.renderer.UpdateLengthDisplay(s.visibleLength())
}

// reservedCells is the body plus the cell the head enters next.
func (s *Session) reservedCells() []structs.Position {
	cells := s.body.Segments()
	return append(cells, s.body.Head().Add(s.dir))
}

func (s *Session) flushFood() {
	for _, e := range s.food.TakeEvents() {
		switch e.Kind {
		case food.Spawned:
			s.renderer.DrawFood(e.Pos, e.Color)
		case food.Expired:
			s.renderer.EraseCell(e.Pos)
		}
	}
}

// visibleLength grows by one per tick while added segments unroll.
func (s *Session) visibleLength() int {
	return s.body.Length() - s.body.StackedTail()
}

func (s *Session) updateElapsed() {
	played := time.Duration(s.ticks) * s.cfg.TickLength
	secs := int64(played / time.Second)
	if secs > s.shownSecs {
		s.shownSecs = secs
		s.renderer.UpdateElapsedTime(time.Duration(secs) * time.Second)
	}
}

func (s *Session) finish() (structs.Score, error) {
	s.state = GameOver
	s.renderer.ShowGameOver()

	score := s.Score()
	score.FinishedAt = s.clock.Now()
	for _, o := range s.observers {
		o.GameOver(score)
	}
	log.Printf("session %s over: played=%dms length=%d", s.id, score.PlayedMs, score.Length)

	if s.sink != nil {
		if err := s.sink.SaveScore(score); err != nil {
			return score, fmt.Errorf("save score: %w", err)
		}
	}
	return score, nil
}
