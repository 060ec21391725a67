package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/snake-in-term/structs"
)

var terminalColors = map[structs.Color]tcell.Color{
	structs.ColorDefault: tcell.ColorDefault,
	structs.ColorBlack:   tcell.ColorBlack,
	structs.ColorRed:     tcell.ColorRed,
	structs.ColorGreen:   tcell.ColorLime,
	structs.ColorYellow:  tcell.ColorYellow,
	structs.ColorBlue:    tcell.ColorBlue,
	structs.ColorMagenta: tcell.ColorFuchsia,
	structs.ColorCyan:    tcell.ColorAqua,
	structs.ColorWhite:   tcell.ColorWhite,
}

func terminalColor(c structs.Color) tcell.Color {
	if tc, ok := terminalColors[c]; ok {
		return tc
	}
	return tcell.ColorDefault
}

// segmentColor 头部用白色，蛇本身是白色时头部改成深灰；黑色的蛇身也用深灰显示
func segmentColor(role structs.ColorRole, snake structs.Color) tcell.Color {
	switch role {
	case structs.RoleHead:
		if snake == structs.ColorWhite {
			return tcell.ColorGray
		}
		return tcell.ColorWhite
	case structs.RoleTinted:
		return tcell.ColorYellow
	}
	if snake == structs.ColorBlack {
		return tcell.ColorGray
	}
	return terminalColor(snake)
}

type rgb struct{ r, g, b float64 }

var boardColors = map[structs.Color]rgb{
	structs.ColorBlack:   {0, 0, 0},
	structs.ColorRed:     {0.9, 0.1, 0.1},
	structs.ColorGreen:   {0.1, 0.8, 0.2},
	structs.ColorYellow:  {0.95, 0.85, 0.1},
	structs.ColorBlue:    {0.15, 0.3, 0.9},
	structs.ColorMagenta: {0.85, 0.1, 0.85},
	structs.ColorCyan:    {0.1, 0.8, 0.85},
	structs.ColorWhite:   {1, 1, 1},
}

var darkGray = rgb{0.35, 0.35, 0.35}

func boardColor(c structs.Color) rgb {
	if v, ok := boardColors[c]; ok {
		return v
	}
	return darkGray
}

func segmentRGB(role structs.ColorRole, snake structs.Color) rgb {
	switch role {
	case structs.RoleHead:
		if snake == structs.ColorWhite {
			return darkGray
		}
		return rgb{0.15, 0.15, 0.15}
	case structs.RoleTinted:
		return boardColor(structs.ColorYellow)
	}
	if snake == structs.ColorBlack || snake == structs.ColorDefault {
		return darkGray
	}
	return boardColor(snake)
}

// foodSprites maps a food color to the sprite file that replaces it on the board.
var foodSprites = map[structs.Color]string{
	structs.ColorRed:     "standard",
	structs.ColorYellow:  "bonus",
	structs.ColorMagenta: "timed",
}
