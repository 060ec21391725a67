package audio

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/hoshinonyaruko/snake-in-term/food"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

const sampleRate = beep.SampleRate(44100)

type note struct {
	freq     float64
	duration time.Duration
}

var (
	eatNotes = map[food.Kind][]note{
		food.Standard:     {{880, 50 * time.Millisecond}},
		food.Bonus:        {{880, 40 * time.Millisecond}, {1320, 80 * time.Millisecond}},
		food.TimedSpecial: {{660, 60 * time.Millisecond}, {990, 60 * time.Millisecond}, {1320, 60 * time.Millisecond}},
	}
	gameOverNotes = []note{
		{440, 150 * time.Millisecond},
		{330, 150 * time.Millisecond},
		{220, 300 * time.Millisecond},
	}
)

const notePause = 20 * time.Millisecond

// Player beeps when food is eaten and when a session ends. It implements
// game.Observer; without a working sound device it stays silent.
type Player struct {
	rate beep.SampleRate
	play func(beep.Streamer)
	// open and shut wrap the speaker so tests run without a sound device
	open func() error
	shut func()

	mu          sync.Mutex
	enabled     bool
	initialized bool
}

// NewPlayer opens the speaker when enabled is true. Failing to open it is
// not fatal, the game runs without sound.
func NewPlayer(enabled bool) *Player {
	p := &Player{
		rate: sampleRate,
		play: func(s beep.Streamer) { speaker.Play(s) },
		shut: speaker.Close,
	}
	p.open = func() error { return speaker.Init(p.rate, p.rate.N(time.Second/10)) }
	p.SetEnabled(enabled)
	return p
}

// SetEnabled mutes or unmutes the player. The speaker is opened the first
// time sound is switched on; if that fails the player stays silent.
func (p *Player) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enabled && !p.initialized {
		if err := p.open(); err != nil {
			log.Printf("Audio initialization failed: %v", err)
			p.enabled = false
			return
		}
		p.initialized = true
	}
	p.enabled = enabled
}

func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *Player) FoodEaten(kind food.Kind, growth int) {
	notes, ok := eatNotes[kind]
	if !ok {
		return
	}
	p.playNotes(notes)
}

func (p *Player) GameOver(score structs.Score) {
	p.playNotes(gameOverNotes)
}

func (p *Player) playNotes(notes []note) {
	if !p.Enabled() {
		return
	}
	p.play(p.melody(notes))
}

func (p *Player) melody(notes []note) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(notes)*2)
	for i, n := range notes {
		if i > 0 {
			parts = append(parts, beep.Silence(p.rate.N(notePause)))
		}
		parts = append(parts, p.tone(n))
	}
	return &effects.Volume{Streamer: beep.Seq(parts...), Base: 2, Volume: -1}
}

func (p *Player) tone(n note) beep.Streamer {
	samples := p.rate.N(n.duration)
	sine, err := generators.SineTone(p.rate, n.freq)
	if err != nil {
		return beep.Silence(samples)
	}
	return beep.Take(samples, sine)
}

// Close releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	p.shut()
	p.initialized = false
	p.enabled = false
}
