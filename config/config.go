package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hoshinonyaruko/snake-in-term/food"
	"github.com/hoshinonyaruko/snake-in-term/game"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	Port          string   `json:"port"` // 留空则不启动HTTP服务
	DBPath        string   `json:"dbpath"`
	SpriteDir     string   `json:"spritedir"`
	Blocksize     int      `json:"blocksize"`
	TickMs        int      `json:"tickms"`
	XStart        int      `json:"xstart"`
	XEnd          int      `json:"xend"`
	YStart        int      `json:"ystart"`
	YEnd          int      `json:"yend"`
	InitialLength int      `json:"initiallength"`
	SnakeColor    string   `json:"snakecolor"`
	Roster        []string `json:"roster"`
	BonusChance   int      `json:"bonuschance"`   // 百分比
	BonusLifetime int      `json:"bonuslifetime"` // 秒
	TimedInterval int      `json:"timedinterval"` // 秒
	Sound         bool     `json:"sound"`
	Debug         bool     `json:"debug"`
}

const (
	minXStart = 1
	minYStart = 2
)

var (
	instance *AppConfig
	once     sync.Once
	loadErr  error
	mu       sync.RWMutex
)

// Defaults mirrors the classic console layout: 78×22 playfield, 75ms ticks.
func Defaults() AppConfig {
	return AppConfig{
		Port:          "38870",
		DBPath:        "snake.db",
		SpriteDir:     "sprites",
		Blocksize:     20,
		TickMs:        75,
		XStart:        1,
		XEnd:          78,
		YStart:        2,
		YEnd:          23,
		InitialLength: game.DefaultLength,
		SnakeColor:    "green",
		Roster:        []string{"standard", "bonus", "timed"},
		BonusChance:   food.DefaultBonusChance,
		BonusLifetime: int(food.DefaultBonusLifetime / time.Second),
		TimedInterval: int(food.DefaultTimedInterval / time.Second),
		Sound:         true,
	}
}

// LoadConfig initializes the singleton from filePath, writing defaults there
// if the file does not exist yet.
func LoadConfig(filePath string) (AppConfig, error) {
	once.Do(func() {
		cfg := Defaults()
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			loadErr = saveConfig(filePath, cfg)
		} else {
			cfg, loadErr = readConfig(filePath)
		}
		cfg.Normalize()
		mu.Lock()
		instance = &cfg
		mu.Unlock()
	})
	return Snapshot(), loadErr
}

// Reload re-reads filePath and replaces the current settings.
// Sessions that already started keep the copy they took.
func Reload(filePath string) (AppConfig, error) {
	cfg, err := readConfig(filePath)
	if err != nil {
		return Snapshot(), err
	}
	cfg.Normalize()
	mu.Lock()
	instance = &cfg
	mu.Unlock()
	return cfg, nil
}

// Snapshot returns a copy of the current settings.
func Snapshot() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return Defaults()
	}
	cfg := *instance
	cfg.Roster = append([]string(nil), instance.Roster...)
	return cfg
}

// readConfig loads the settings from the file on top of the defaults
func readConfig(filePath string) (AppConfig, error) {
	cfg := Defaults()
	file, err := os.Open(filePath)
	if err != nil {
		return cfg, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return Defaults(), fmt.Errorf("decode %s: %w", filePath, err)
	}
	return cfg, nil
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string, cfg AppConfig) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	cfg := Snapshot()
	switch key {
	case "port":
		return cfg.Port
	case "dbpath":
		return cfg.DBPath
	case "spritedir":
		return cfg.SpriteDir
	case "blocksize":
		return cfg.Blocksize
	case "tickms":
		return cfg.TickMs
	case "sound":
		return cfg.Sound
	case "debug":
		return cfg.Debug
	default:
		return ""
	}
}

// Normalize clamps every field into the range the game supports.
func (c *AppConfig) Normalize() {
	d := Defaults()

	c.TickMs = clamp(c.TickMs, 25, 250)
	c.TickMs = (c.TickMs + 12) / 25 * 25

	c.XEnd = clamp(c.XEnd, 10, 78)
	c.YEnd = clamp(c.YEnd, 7, 23)
	// 左边留一列给边框，上面留状态栏和边框；起点 XEnd/2+XStart 必须在棋盘内
	c.XStart = clamp(c.XStart, minXStart, c.XEnd-c.XEnd/2)
	c.YStart = clamp(c.YStart, minYStart, c.YEnd-c.YEnd/2)

	if c.InitialLength < 1 {
		c.InitialLength = d.InitialLength
	}
	// 初始蛇身向左展开，不能穿过左边界
	c.InitialLength = min(c.InitialLength, c.Bounds().Center().X-c.XStart+1)
	if _, ok := structs.ParseColor(c.SnakeColor); !ok {
		c.SnakeColor = d.SnakeColor
	}
	if c.Roster == nil {
		c.Roster = d.Roster
	}
	c.BonusChance = clamp(c.BonusChance, 0, 100)
	if c.BonusLifetime <= 0 {
		c.BonusLifetime = d.BonusLifetime
	}
	if c.TimedInterval <= 0 {
		c.TimedInterval = d.TimedInterval
	}
	if c.Blocksize <= 0 {
		c.Blocksize = d.Blocksize
	}
}

func (c AppConfig) Bounds() structs.Bounds {
	return structs.Bounds{XStart: c.XStart, XEnd: c.XEnd, YStart: c.YStart, YEnd: c.YEnd}
}

func (c AppConfig) Color() structs.Color {
	color, _ := structs.ParseColor(c.SnakeColor)
	return color
}

// GameConfig converts the file settings into the immutable session config.
func (c AppConfig) GameConfig() game.Config {
	var roster []food.Kind
	for _, name := range c.Roster {
		kind, ok := food.ParseKind(name)
		if !ok {
			log.Printf("config: unknown roster entry %q ignored", name)
			continue
		}
		roster = append(roster, kind)
	}
	return game.Config{
		TickLength:    time.Duration(c.TickMs) * time.Millisecond,
		Bounds:        c.Bounds(),
		InitialLength: c.InitialLength,
		Roster:        roster,
		BonusChance:   c.BonusChance,
		BonusLifetime: time.Duration(c.BonusLifetime) * time.Second,
		TimedInterval: time.Duration(c.TimedInterval) * time.Second,
	}
}

// WatchConfig reloads filePath whenever it is written and calls onReload with
// the new settings. The returned function stops the watcher.
func WatchConfig(filePath string, onReload func(AppConfig)) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	target := filepath.Clean(filePath)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					cfg, err := Reload(filePath)
					if err != nil {
						log.Printf("config reload failed: %v", err)
						continue
					}
					log.Printf("config reloaded from %s", filePath)
					if onReload != nil {
						onReload(cfg)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Println("config watcher error:", err)
			}
		}
	}()

	// 监听所在目录，编辑器保存时常常是先删除再创建
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher.Close, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
