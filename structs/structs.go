package structs

import "time"

// Position 描述网格上的一个格子坐标。
type Position struct {
	X int `json:"x"` // X坐标
	Y int `json:"y"` // Y坐标
}

// Add 返回平移后的坐标
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Direction 是四个单位向量之一
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}
)

// Valid reports whether d is one of the four unit directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Opposite returns the reverse vector.
func (d Direction) Opposite() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// IsReverseOf reports whether d points exactly back along other.
func (d Direction) IsReverseOf(other Direction) bool {
	return d.Valid() && d == other.Opposite()
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Bounds 是包含边界的游戏区域 [XStart,XEnd]×[YStart,YEnd]
type Bounds struct {
	XStart int `json:"xstart"`
	XEnd   int `json:"xend"`
	YStart int `json:"ystart"`
	YEnd   int `json:"yend"`
}

// Contains reports whether p lies inside the inclusive rectangle.
func (b Bounds) Contains(p Position) bool {
	return p.X >= b.XStart && p.X <= b.XEnd && p.Y >= b.YStart && p.Y <= b.YEnd
}

func (b Bounds) Width() int  { return b.XEnd - b.XStart + 1 }
func (b Bounds) Height() int { return b.YEnd - b.YStart + 1 }

// Cells returns the number of grid cells inside the bounds.
func (b Bounds) Cells() int {
	if b.Width() <= 0 || b.Height() <= 0 {
		return 0
	}
	return b.Width() * b.Height()
}

// Center 蛇的起始位置
func (b Bounds) Center() Position {
	return Position{X: b.XEnd/2 + b.XStart, Y: b.YEnd/2 + b.YStart}
}

// Color 是与渲染端无关的颜色名
type Color int

const (
	ColorDefault Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

var colorNames = map[Color]string{
	ColorDefault: "default",
	ColorBlack:   "black",
	ColorRed:     "red",
	ColorGreen:   "green",
	ColorYellow:  "yellow",
	ColorBlue:    "blue",
	ColorMagenta: "magenta",
	ColorCyan:    "cyan",
	ColorWhite:   "white",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "default"
}

// ParseColor 把配置里的颜色名转换为 Color，未知名称返回 false
func ParseColor(name string) (Color, bool) {
	for c, n := range colorNames {
		if n == name {
			return c, true
		}
	}
	return ColorDefault, false
}

// ColorRole 告诉渲染端该用哪种蛇身配色
type ColorRole int

const (
	RoleBody ColorRole = iota
	RoleHead
	RoleTinted // 吃到奖励食物后的临时配色
)

// Score 描述一局结束后的成绩
type Score struct {
	SessionID  string    `json:"session_id"`
	PlayedMs   int64     `json:"played_ms"` // 存活时间 = 步数 × 步长
	Length     int       `json:"length"`
	TickMs     int       `json:"tick_ms"`
	FinishedAt time.Time `json:"finished_at"`
}
