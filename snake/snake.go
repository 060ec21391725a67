// 蛇身的移动、增长与自碰撞
package snake

import (
	"time"

	"github.com/hoshinonyaruko/snake-in-term/structs"
)

// SelfCollisionSkip 前三节不参与自碰撞检测，转弯和多节增长时它们会短暂重叠
const SelfCollisionSkip = 3

// Body is the ordered list of segments; index 0 is the head.
type Body struct {
	segments  []structs.Position
	tint      structs.Color
	tintUntil time.Time
}

// New lays out length segments horizontally to the left of start, head rightmost.
func New(length int, start structs.Position) *Body {
	if length < 1 {
		length = 1
	}
	segments := make([]structs.Position, 0, length)
	for i := 0; i < length; i++ {
		segments = append(segments, structs.Position{X: start.X - i, Y: start.Y})
	}
	return &Body{segments: segments}
}

// Move 每一节移动到前一节原来的位置，然后蛇头按方向前进
func (b *Body) Move(dir structs.Direction) {
	for i := len(b.segments) - 1; i > 0; i-- {
		b.segments[i] = b.segments[i-1]
	}
	b.segments[0] = b.segments[0].Add(dir)
}

// Grow 在尾部追加 amount 个与尾巴重合的节，之后的移动会把它们逐个拉开
func (b *Body) Grow(amount int) {
	tail := b.Tail()
	for i := 0; i < amount; i++ {
		b.segments = append(b.segments, tail)
	}
}

// CheckSelfCollision reports whether pos hits any segment at index >= skipFirst.
func (b *Body) CheckSelfCollision(pos structs.Position, skipFirst int) bool {
	if skipFirst < 0 {
		skipFirst = 0
	}
	for i := skipFirst; i < len(b.segments); i++ {
		if b.segments[i] == pos {
			return true
		}
	}
	return false
}

func (b *Body) Head() structs.Position { return b.segments[0] }

func (b *Body) Tail() structs.Position { return b.segments[len(b.segments)-1] }

func (b *Body) Length() int { return len(b.segments) }

// Segments returns a copy of the body, head first.
func (b *Body) Segments() []structs.Position {
	out := make([]structs.Position, len(b.segments))
	copy(out, b.segments)
	return out
}

// Contains reports whether any segment covers pos.
func (b *Body) Contains(pos structs.Position) bool {
	return b.CheckSelfCollision(pos, 0)
}

// StackedTail counts trailing segments still sitting on the cell before them,
// i.e. growth that has not been unrolled by Move yet.
func (b *Body) StackedTail() int {
	n := 0
	for i := len(b.segments) - 1; i > 0; i-- {
		if b.segments[i] != b.segments[i-1] {
			break
		}
		n++
	}
	return n
}

// Tint 临时改变蛇的颜色直到 until
func (b *Body) Tint(color structs.Color, until time.Time) {
	b.tint = color
	b.tintUntil = until
}

// Tinted returns the temporary color if it is still in effect at now.
func (b *Body) Tinted(now time.Time) (structs.Color, bool) {
	if b.tintUntil.IsZero() || !now.Before(b.tintUntil) {
		return structs.ColorDefault, false
	}
	return b.tint, true
}
