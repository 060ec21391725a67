package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-in-term/api"
	"github.com/hoshinonyaruko/snake-in-term/audio"
	"github.com/hoshinonyaruko/snake-in-term/config"
	"github.com/hoshinonyaruko/snake-in-term/game"
	"github.com/hoshinonyaruko/snake-in-term/memimg"
	"github.com/hoshinonyaruko/snake-in-term/render"
	"github.com/hoshinonyaruko/snake-in-term/sqlite"
)

const (
	configPath = "./config.json"
	staticDir  = "static"
)

func main() {
	// Initialize the configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", configPath, err)
		os.Exit(1)
	}
	logFile := setupLogging(cfg.Debug)

	err = run(cfg)
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.AppConfig) error {
	if err := EnsureFoldersExist(cfg.SpriteDir, staticDir); err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open score database: %w", err)
	}
	defer store.Close()

	// 载入图片到内存 加速绘图
	sprites := memimg.NewStore(cfg.Blocksize)
	if err := sprites.Load(cfg.SpriteDir); err != nil {
		log.Printf("load sprites: %v", err)
	}
	if stop, err := sprites.Watch(cfg.SpriteDir); err != nil {
		log.Printf("watch sprites: %v", err)
	} else {
		defer stop()
	}
	board := render.NewBoard(cfg.Bounds(), cfg.Color(), sprites)

	player := audio.NewPlayer(cfg.Sound)
	defer player.Close()

	// 配置热更新 新设置从下一局开始生效，声音立即生效
	if stop, err := config.WatchConfig(configPath, func(c config.AppConfig) {
		player.SetEnabled(c.Sound)
	}); err != nil {
		log.Printf("watch config: %v", err)
	} else {
		defer stop()
	}

	if cfg.Port != "" {
		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewServer(store, board, staticDir).Router()
		go func() {
			// 从配置单例读取端口 监听
			if err := router.Run(":" + cfg.Port); err != nil {
				log.Printf("http server stopped: %v", err)
			}
		}()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	term := render.NewTerminal(screen, cfg.Bounds(), cfg.Color())
	defer term.Close()

	for {
		current := config.Snapshot()
		term.Prepare(current.Bounds(), current.Color())
		board.Reset(current.Bounds(), current.Color())

		session := game.NewSession(current.GameConfig(), game.Renderers{term, board}, term,
			game.WithScoreSink(store), game.WithObserver(player))
		score, err := session.Run()
		if err != nil {
			log.Printf("session %s: %v", score.SessionID, err)
		}

		if !term.WaitRestart() {
			return nil
		}
	}
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) error {
	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			if err := os.MkdirAll(folder, 0755); err != nil {
				return fmt.Errorf("create %s directory: %w", folder, err)
			}
			log.Printf("Created %s directory", folder)
		}
	}
	return nil
}
