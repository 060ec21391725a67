package game

import (
	"time"

	"github.com/hoshinonyaruko/snake-in-term/food"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

// Key is an input already mapped from a concrete device.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPause
	KeyQuit
)

// Renderer receives per-tick deltas, never a full redraw.
type Renderer interface {
	DrawSegment(pos structs.Position, role structs.ColorRole)
	EraseCell(pos structs.Position)
	DrawFood(pos structs.Position, color structs.Color)
	UpdateLengthDisplay(n int)
	UpdateElapsedTime(d time.Duration)
	ShowGameOver()
}

// InputSource must not block.
type InputSource interface {
	PollKey() (Key, bool)
}

// ScoreSink persists the final score of a session.
type ScoreSink interface {
	SaveScore(score structs.Score) error
}

// Observer is told about events that are not render deltas (sound, stats).
type Observer interface {
	FoodEaten(kind food.Kind, growth int)
	GameOver(score structs.Score)
}

// Clock is the session's only suspension point.
type Clock interface {
	Now() time.Time
	SleepUntil(deadline time.Time)
}

// SystemClock sleeps until the deadline instead of spinning.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) SleepUntil(deadline time.Time) {
	if d := time.Until(deadline); d > 0 {
		time.Sleep(d)
	}
}

// Renderers fans every delta out to several renderers.
type Renderers []Renderer

func (rs Renderers) DrawSegment(pos structs.Position, role structs.ColorRole) {
	for _, r := range rs {
		r.DrawSegment(pos, role)
	}
}

func (rs Renderers) EraseCell(pos structs.Position) {
	for _, r := range rs {
		r.EraseCell(pos)
	}
}

func (rs Renderers) DrawFood(pos structs.Position, color structs.Color) {
	for _, r := range rs {
		r.DrawFood(pos, color)
	}
}

func (rs Renderers) UpdateLengthDisplay(n int) {
	for _, r := range rs {
		r.UpdateLengthDisplay(n)
	}
}

func (rs Renderers) UpdateElapsedTime(d time.Duration) {
	for _, r := range rs {
		r.UpdateElapsedTime(d)
	}
}

func (rs Renderers) ShowGameOver() {
	for _, r := range rs {
		r.ShowGameOver()
	}
}
