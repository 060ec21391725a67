package render

import (
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/hoshinonyaruko/snake-in-term/memimg"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

const statusHeight = 18

// 全局缓存 网格背景只和尺寸有关
var backgroundCache sync.Map

type cellKind int

const (
	cellSegment cellKind = iota
	cellFood
)

type boardCell struct {
	kind  cellKind
	role  structs.ColorRole
	color structs.Color
}

// Status is the textual part of a board, served next to the picture.
type Status struct {
	Length    int   `json:"length"`
	ElapsedMs int64 `json:"elapsed_ms"`
	GameOver  bool  `json:"game_over"`
	Cells     int   `json:"cells"`
}

// Board keeps an in-memory copy of the playfield built from render deltas and
// paints it to an image on demand. It implements game.Renderer and is safe
// for concurrent use, so HTTP handlers can read it while a session runs.
type Board struct {
	sprites *memimg.Store

	mu         sync.RWMutex
	bounds     structs.Bounds
	snakeColor structs.Color
	cells      map[structs.Position]boardCell
	length     int
	elapsed    time.Duration
	over       bool
}

// NewBoard returns an empty board. sprites may be nil.
func NewBoard(bounds structs.Bounds, snakeColor structs.Color, sprites *memimg.Store) *Board {
	return &Board{
		sprites:    sprites,
		bounds:     bounds,
		snakeColor: snakeColor,
		cells:      make(map[structs.Position]boardCell),
	}
}

// Reset forgets the previous session.
func (b *Board) Reset(bounds structs.Bounds, snakeColor structs.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bounds = bounds
	b.snakeColor = snakeColor
	clear(b.cells)
	b.length = 0
	b.elapsed = 0
	b.over = false
}

func (b *Board) DrawSegment(pos structs.Position, role structs.ColorRole) {
	b.mu.Lock()
	b.cells[pos] = boardCell{kind: cellSegment, role: role}
	b.mu.Unlock()
}

func (b *Board) EraseCell(pos structs.Position) {
	b.mu.Lock()
	delete(b.cells, pos)
	b.mu.Unlock()
}

func (b *Board) DrawFood(pos structs.Position, color structs.Color) {
	b.mu.Lock()
	b.cells[pos] = boardCell{kind: cellFood, color: color}
	b.mu.Unlock()
}

func (b *Board) UpdateLengthDisplay(n int) {
	b.mu.Lock()
	b.length = n
	b.mu.Unlock()
}

func (b *Board) UpdateElapsedTime(d time.Duration) {
	b.mu.Lock()
	b.elapsed = d
	b.mu.Unlock()
}

func (b *Board) ShowGameOver() {
	b.mu.Lock()
	b.over = true
	b.mu.Unlock()
}

func (b *Board) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Status{
		Length:    b.length,
		ElapsedMs: b.elapsed.Milliseconds(),
		GameOver:  b.over,
		Cells:     len(b.cells),
	}
}

// Image paints the board with blockSize pixels per cell plus a status strip.
func (b *Board) Image(blockSize int) image.Image {
	return b.render(blockSize).Image()
}

// EncodePNG writes the painted board to w.
func (b *Board) EncodePNG(w io.Writer, blockSize int) error {
	return b.render(blockSize).EncodePNG(w)
}

func (b *Board) render(blockSize int) *gg.Context {
	if blockSize <= 0 {
		blockSize = 1
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	gridWidth := max(b.bounds.Width(), 0) * blockSize
	gridHeight := max(b.bounds.Height(), 0) * blockSize

	dc := gg.NewContext(gridWidth, gridHeight+statusHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(background(gridWidth, gridHeight, blockSize), 0, statusHeight)

	for pos, cell := range b.cells {
		if !b.bounds.Contains(pos) {
			continue
		}
		x := (pos.X - b.bounds.XStart) * blockSize
		y := (pos.Y-b.bounds.YStart)*blockSize + statusHeight
		b.drawCell(dc, cell, x, y, blockSize)
	}

	dc.SetRGB(0, 0, 0)
	status := fmt.Sprintf("Time Played: %s   Size: %03d", formatClock(b.elapsed), b.length)
	if b.over {
		status += "   GAME OVER"
	}
	dc.DrawString(status, 4, statusHeight-5)
	return dc
}

func (b *Board) drawCell(dc *gg.Context, cell boardCell, x, y, blockSize int) {
	var name string
	var fill rgb
	switch cell.kind {
	case cellFood:
		name = foodSprites[cell.color]
		fill = boardColor(cell.color)
	default:
		name = "body"
		if cell.role == structs.RoleHead {
			name = "head"
		}
		fill = segmentRGB(cell.role, b.snakeColor)
	}

	if b.sprites != nil && name != "" && cell.role != structs.RoleTinted {
		if img, found := b.sprites.Sized(name, blockSize); found {
			dc.DrawImage(img, x, y)
			return
		}
	}
	// 没有图片时用纯色方块表示
	dc.SetRGB(fill.r, fill.g, fill.b)
	dc.DrawRectangle(float64(x), float64(y), float64(blockSize), float64(blockSize))
	dc.Fill()
}

func background(width, height, blockSize int) image.Image {
	cacheKey := fmt.Sprintf("%d_%d_%d", width, height, blockSize)
	if cached, ok := backgroundCache.Load(cacheKey); ok {
		return cached.(image.Image)
	}
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	renderGrid(dc, width, height, blockSize)
	img := dc.Image()
	backgroundCache.Store(cacheKey, img)
	return img
}

func renderGrid(dc *gg.Context, width, height, blockSize int) {
	dc.SetRGB(0.9, 0.9, 0.9)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}
