package api

import (
	"bytes"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-in-term/config"
	"github.com/hoshinonyaruko/snake-in-term/render"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

const (
	maxScoreLimit = 100
	maxBlockSize  = 64
	boardFileName = "board.png"
)

// ScoreReader is the read side of the score store.
type ScoreReader interface {
	TopScores(limit int) ([]structs.Score, error)
	HighScore() (playedMs int64, length int, err error)
}

// Server exposes scores and the live board over HTTP.
type Server struct {
	scores    ScoreReader
	board     *render.Board
	staticDir string
}

func NewServer(scores ScoreReader, board *render.Board, staticDir string) *Server {
	return &Server{scores: scores, board: board, staticDir: staticDir}
}

// Router builds the gin engine. Request logs go to the standard logger so
// they never reach the terminal the game is drawn on.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(log.Writer()), gin.Recovery())

	// 排行榜
	router.GET("/scores", s.TopScoresHandler)
	router.GET("/highscore", s.HighScoreHandler)
	// 当前棋盘
	router.GET("/status", s.StatusHandler)
	router.GET("/snapshot", s.SnapshotHandler)
	// 渲染并保存 返回静态地址
	router.GET("/render", s.RenderHandler)
	router.GET("/config", ConfigHandler)
	router.Static("/static", s.staticDir)
	return router
}

func (s *Server) TopScoresHandler(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > maxScoreLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	scores, err := s.scores.TopScores(limit)
	if err != nil {
		log.Printf("err TopScores: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load scores"})
		return
	}
	if scores == nil {
		scores = []structs.Score{}
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

func (s *Server) HighScoreHandler(c *gin.Context) {
	playedMs, length, err := s.scores.HighScore()
	if err != nil {
		log.Printf("err HighScore: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load high score"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"best_time_ms": playedMs, "best_length": length})
}

func (s *Server) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.Status())
}

func (s *Server) SnapshotHandler(c *gin.Context) {
	blockSize, ok := blockSizeParam(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.board.EncodePNG(&buf, blockSize); err != nil {
		log.Printf("err EncodePNG: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to render board"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// RenderHandler 渲染当前棋盘并保存到静态目录
func (s *Server) RenderHandler(c *gin.Context) {
	blockSize, ok := blockSizeParam(c)
	if !ok {
		return
	}

	if err := os.MkdirAll(s.staticDir, os.ModePerm); err != nil {
		log.Printf("err MkdirAll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to prepare static directory"})
		return
	}
	fileName := filepath.Join(s.staticDir, boardFileName)
	if err := imaging.Save(s.board.Image(blockSize), fileName); err != nil {
		log.Printf("err Save %s: %v", fileName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save board"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": "/static/" + boardFileName})
}

func ConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, config.Snapshot())
}

func blockSizeParam(c *gin.Context) (int, bool) {
	def := config.GetConfigValue("blocksize").(int)
	blockSize, err := strconv.Atoi(c.DefaultQuery("blocksize", strconv.Itoa(def)))
	if err != nil || blockSize <= 0 || blockSize > maxBlockSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "blocksize must be between 1 and 64"})
		return 0, false
	}
	return blockSize, true
}
