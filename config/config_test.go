package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hoshinonyaruko/snake-in-term/food"
	"github.com/hoshinonyaruko/snake-in-term/game"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

func resetSingleton() {
	once = sync.Once{}
	loadErr = nil
	mu.Lock()
	instance = nil
	mu.Unlock()
}

func TestLoadConfigWritesDefaults(t *testing.T) {
	resetSingleton()
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
	if cfg.TickMs != 75 || cfg.Bounds() != (structs.Bounds{XStart: 1, XEnd: 78, YStart: 2, YEnd: 23}) {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if GetConfigValue("port").(string) != "38870" {
		t.Errorf("port = %v", GetConfigValue("port"))
	}
	if GetConfigValue("blocksize").(int) != 20 {
		t.Errorf("blocksize = %v", GetConfigValue("blocksize"))
	}
}

func TestLoadConfigClampsValues(t *testing.T) {
	resetSingleton()
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{"tickms": 5, "xend": 200, "yend": 3, "initiallength": 0, "snakecolor": "plaid", "bonuschance": 150}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.TickMs != 25 {
		t.Errorf("TickMs = %d, want 25", cfg.TickMs)
	}
	if cfg.XEnd != 78 || cfg.YEnd != 7 {
		t.Errorf("bounds end = (%d,%d), want (78,7)", cfg.XEnd, cfg.YEnd)
	}
	if cfg.InitialLength != 5 {
		t.Errorf("InitialLength = %d, want 5", cfg.InitialLength)
	}
	if cfg.SnakeColor != "green" {
		t.Errorf("SnakeColor = %q, want green", cfg.SnakeColor)
	}
	if cfg.BonusChance != 100 {
		t.Errorf("BonusChance = %d, want 100", cfg.BonusChance)
	}
}

func TestTickRoundsToSteps(t *testing.T) {
	cfg := Defaults()
	cfg.TickMs = 110
	cfg.Normalize()
	if cfg.TickMs != 100 {
		t.Errorf("TickMs = %d, want 100", cfg.TickMs)
	}
	cfg.TickMs = 240
	cfg.Normalize()
	if cfg.TickMs != 250 {
		t.Errorf("TickMs = %d, want 250", cfg.TickMs)
	}
}

func TestGameConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Roster = []string{"standard", "golden", "timed"}
	cfg.TickMs = 100
	gc := cfg.GameConfig()

	if gc.TickLength != 100*time.Millisecond {
		t.Errorf("TickLength = %v", gc.TickLength)
	}
	if len(gc.Roster) != 2 || gc.Roster[0] != food.Standard || gc.Roster[1] != food.TimedSpecial {
		t.Errorf("Roster = %v, want [standard timed]", gc.Roster)
	}
	if gc.BonusLifetime != 10*time.Second || gc.TimedInterval != 30*time.Second {
		t.Errorf("lifetimes = %v, %v", gc.BonusLifetime, gc.TimedInterval)
	}
	if cfg.Color() != structs.ColorGreen {
		t.Errorf("Color() = %v, want green", cfg.Color())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	resetSingleton()
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := LoadConfig(path); err != nil {
		t.Fatal(err)
	}
	snap := Snapshot()
	snap.Roster[0] = "mutated"
	if Snapshot().Roster[0] != "standard" {
		t.Error("Snapshot shares its roster with the singleton")
	}
}

func TestWatchConfigReloads(t *testing.T) {
	resetSingleton()
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := LoadConfig(path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan AppConfig, 4)
	stop, err := WatchConfig(path, func(cfg AppConfig) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("WatchConfig() error = %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte(`{"tickms": 150}`), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.TickMs == 150 {
				if Snapshot().TickMs != 150 {
					t.Error("singleton not updated by reload")
				}
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestNormalizeKeepsStartOnBoard(t *testing.T) {
	cases := []AppConfig{
		{XStart: 40, XEnd: 78, YStart: 20, YEnd: 23, InitialLength: 5},
		{XStart: 1, XEnd: 10, YStart: 2, YEnd: 7, InitialLength: 20},
		{XStart: 0, XEnd: 30, YStart: 0, YEnd: 15, InitialLength: 5},
		{XStart: -4, XEnd: 10, YStart: 9, YEnd: 7, InitialLength: 100},
	}
	for _, cfg := range cases {
		in := cfg
		cfg.Normalize()
		b := cfg.Bounds()

		if cfg.XStart < 1 || cfg.YStart < 2 {
			t.Errorf("%+v: start (%d,%d) leaves no room for the outline", in, cfg.XStart, cfg.YStart)
		}
		head := b.Center()
		if !b.Contains(head) {
			t.Errorf("%+v: start cell %v outside %+v", in, head, b)
		}
		tail := structs.Position{X: head.X - (cfg.InitialLength - 1), Y: head.Y}
		if cfg.InitialLength < 1 || !b.Contains(tail) {
			t.Errorf("%+v: length %d puts the tail at %v outside %+v", in, cfg.InitialLength, tail, b)
		}
	}
}

func TestNormalizedLayoutDrawsOnBoard(t *testing.T) {
	cfg := Defaults()
	cfg.XStart, cfg.XEnd = 40, 78
	cfg.InitialLength = 60
	cfg.Normalize()

	gc := cfg.GameConfig()
	s := game.NewSession(gc, &boundsRenderer{t: t, bounds: gc.Bounds}, noInput{},
		game.WithClock(&instantClock{now: time.Unix(0, 0)}))
	s.Start()
	for _, seg := range s.Body().Segments() {
		if !gc.Bounds.Contains(seg) {
			t.Fatalf("segment %v outside %+v", seg, gc.Bounds)
		}
	}
}

// boundsRenderer fails the test for any snake cell drawn off the board.
type boundsRenderer struct {
	t      *testing.T
	bounds structs.Bounds
}

func (r *boundsRenderer) DrawSegment(pos structs.Position, role structs.ColorRole) {
	if !r.bounds.Contains(pos) {
		r.t.Errorf("segment drawn at %v outside %+v", pos, r.bounds)
	}
}
func (r *boundsRenderer) EraseCell(structs.Position)               {}
func (r *boundsRenderer) DrawFood(structs.Position, structs.Color) {}
func (r *boundsRenderer) UpdateLengthDisplay(int)                  {}
func (r *boundsRenderer) UpdateElapsedTime(time.Duration)          {}
func (r *boundsRenderer) ShowGameOver()                            {}

type noInput struct{}

func (noInput) PollKey() (game.Key, bool) { return game.KeyNone, false }

type instantClock struct{ now time.Time }

func (c *instantClock) Now() time.Time { return c.now }
func (c *instantClock) SleepUntil(deadline time.Time) {
	if deadline.After(c.now) {
		c.now = deadline
	}
}
