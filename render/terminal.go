package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/snake-in-term/game"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

// Screen is the part of tcell.Screen the terminal renderer uses.
type Screen interface {
	Size() (int, int)
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Show()
	Clear()
	Fini()
	PollEvent() tcell.Event
}

var _ Screen = (tcell.Screen)(nil)

const (
	cellRune      = '█'
	keyBufferSize = 16
	sizeColumn    = 24
)

// Terminal draws a session into a tcell screen and feeds its key presses back
// as game keys. It implements game.Renderer and game.InputSource.
type Terminal struct {
	screen Screen
	keys   chan *tcell.EventKey

	mu         sync.Mutex
	bounds     structs.Bounds
	snakeColor structs.Color
	closeOnce  sync.Once
}

// NewTerminal starts reading events from screen. The screen must already be
// initialized.
func NewTerminal(screen Screen, bounds structs.Bounds, snakeColor structs.Color) *Terminal {
	t := &Terminal{
		screen:     screen,
		keys:       make(chan *tcell.EventKey, keyBufferSize),
		bounds:     bounds,
		snakeColor: snakeColor,
	}
	go t.pollEvents()
	return t
}

func (t *Terminal) pollEvents() {
	defer close(t.keys)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			// 屏幕已经 Fini
			return
		}
		if key, ok := ev.(*tcell.EventKey); ok {
			select {
			case t.keys <- key:
			default:
				// 缓冲满了就丢弃，蛇每个tick只吃一个按键
			}
		}
	}
}

// Prepare clears the screen and draws the outline and status line for a new
// session.
func (t *Terminal) Prepare(bounds structs.Bounds, snakeColor structs.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bounds = bounds
	t.snakeColor = snakeColor
	t.screen.Clear()
	t.drawOutline()
	t.drawText(0, 0, "Time Played: 00:00:00   Size: 000", tcell.StyleDefault.Foreground(tcell.ColorWhite))
	t.screen.Show()
}

func (t *Terminal) drawOutline() {
	b := t.bounds
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	left, right := b.XStart-1, b.XEnd+1
	top, bottom := b.YStart-1, b.YEnd+1

	for x := left + 1; x < right; x++ {
		t.screen.SetContent(x, top, '─', nil, style)
		t.screen.SetContent(x, bottom, '─', nil, style)
	}
	for y := top + 1; y < bottom; y++ {
		t.screen.SetContent(left, y, '│', nil, style)
		t.screen.SetContent(right, y, '│', nil, style)
	}
	t.screen.SetContent(left, top, '┌', nil, style)
	t.screen.SetContent(right, top, '┐', nil, style)
	t.screen.SetContent(left, bottom, '└', nil, style)
	t.screen.SetContent(right, bottom, '┘', nil, style)
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (t *Terminal) DrawSegment(pos structs.Position, role structs.ColorRole) {
	t.mu.Lock()
	defer t.mu.Unlock()
	style := tcell.StyleDefault.Foreground(segmentColor(role, t.snakeColor))
	t.screen.SetContent(pos.X, pos.Y, cellRune, nil, style)
	t.screen.Show()
}

func (t *Terminal) EraseCell(pos structs.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(pos.X, pos.Y, ' ', nil, tcell.StyleDefault)
	t.screen.Show()
}

func (t *Terminal) DrawFood(pos structs.Position, color structs.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(pos.X, pos.Y, cellRune, nil, tcell.StyleDefault.Foreground(terminalColor(color)))
	t.screen.Show()
}

func (t *Terminal) UpdateLengthDisplay(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drawText(sizeColumn, 0, fmt.Sprintf("Size: %03d", n), tcell.StyleDefault.Foreground(tcell.ColorWhite))
	t.screen.Show()
}

func (t *Terminal) UpdateElapsedTime(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drawText(0, 0, "Time Played: "+formatClock(d), tcell.StyleDefault.Foreground(tcell.ColorWhite))
	t.screen.Show()
}

func (t *Terminal) ShowGameOver() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Clear()
	w, h := t.screen.Size()
	lines := []struct {
		text  string
		color tcell.Color
	}{
		{"GAME OVER", tcell.ColorRed},
		{"", tcell.ColorDefault},
		{"Enter: play again    Esc: quit", tcell.ColorAqua},
	}
	y := h/2 - len(lines)/2
	for i, line := range lines {
		x := (w - len(line.text)) / 2
		if x < 0 {
			x = 0
		}
		t.drawText(x, y+i, line.text, tcell.StyleDefault.Foreground(line.color))
	}
	t.screen.Show()
}

// PollKey returns the next mapped key press without blocking. Keys that do
// not map to a game key are dropped. Once the screen is gone it reports quit.
func (t *Terminal) PollKey() (game.Key, bool) {
	for {
		select {
		case ev, ok := <-t.keys:
			if !ok {
				return game.KeyQuit, true
			}
			if key, mapped := translateKey(ev); mapped {
				return key, true
			}
		default:
			return game.KeyNone, false
		}
	}
}

// WaitRestart blocks on the game over screen. It returns true for Enter and
// false for Esc, q or a closed screen.
func (t *Terminal) WaitRestart() bool {
	for ev := range t.keys {
		switch {
		case ev.Key() == tcell.KeyEnter:
			return true
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return false
		}
	}
	return false
}

// Close releases the terminal. It is safe to call more than once.
func (t *Terminal) Close() {
	t.closeOnce.Do(t.screen.Fini)
}

func translateKey(ev *tcell.EventKey) (game.Key, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return game.KeyUp, true
	case tcell.KeyDown:
		return game.KeyDown, true
	case tcell.KeyLeft:
		return game.KeyLeft, true
	case tcell.KeyRight:
		return game.KeyRight, true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.KeyQuit, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return game.KeyUp, true
		case 's', 'S':
			return game.KeyDown, true
		case 'a', 'A':
			return game.KeyLeft, true
		case 'd', 'D':
			return game.KeyRight, true
		case ' ':
			return game.KeyPause, true
		case 'q', 'Q':
			return game.KeyQuit, true
		}
	}
	return game.KeyNone, false
}

func formatClock(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}
