package board

import (
	"errors"
	"fmt"
)

// Size is the board edge length. All rules below assume the 8x8 variant.
const Size = 8

type Cell byte

const (
	CellEmpty Cell = '-'
	CellBlack Cell = 'B'
	CellWhite Cell = 'W'
)

type Color string

const (
	ColorBlack Color = "black"
	ColorWhite Color = "white"
)

var ErrIllegalMove = errors.New("illegal move")

// Position addresses a cell; Row and Col are zero-based, top-left origin.
type Position struct {
	Row int
	Col int
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Board is a value type; rule functions return new boards and never mutate
// their receiver.
type Board [Size][Size]Cell

// Initial returns the canonical opening layout: White on the (3,3)/(4,4)
// diagonal, Black on (3,4)/(4,3).
func Initial() Board {
	var b Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			b[row][col] = CellEmpty
		}
	}
	b[3][3] = CellWhite
	b[4][4] = CellWhite
	b[3][4] = CellBlack
	b[4][3] = CellBlack
	return b
}

// Parse rebuilds a board from its 64-char row-major text form.
func Parse(raw string) (Board, error) {
	var b Board
	if len(raw) != Size*Size {
		return b, fmt.Errorf("board text must be %d cells, got %d", Size*Size, len(raw))
	}
	for i := 0; i < Size*Size; i++ {
		cell := Cell(raw[i])
		switch cell {
		case CellEmpty, CellBlack, CellWhite:
			b[i/Size][i%Size] = cell
		default:
			return Board{}, fmt.Errorf("invalid board cell %q at index %d", raw[i], i)
		}
	}
	return b, nil
}

// String renders the row-major text form used for storage and transport.
func (b Board) String() string {
	buf := make([]byte, 0, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			buf = append(buf, byte(b[row][col]))
		}
	}
	return string(buf)
}

func (c Color) Cell() Cell {
	if c == ColorWhite {
		return CellWhite
	}
	return CellBlack
}

func (c Color) Valid() bool {
	return c == ColorBlack || c == ColorWhite
}

func Opposite(c Color) Color {
	if c == ColorBlack {
		return ColorWhite
	}
	return ColorBlack
}

// SideToMove maps a turn number to the color on play: Black opens on turn 0.
func SideToMove(turn int) Color {
	if turn%2 == 0 {
		return ColorBlack
	}
	return ColorWhite
}

// Count returns the number of discs of one color.
func (b Board) Count(c Color) int {
	target := c.Cell()
	total := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] == target {
				total++
			}
		}
	}
	return total
}

func (b Board) CountEmpty() int {
	return Size*Size - b.Count(ColorBlack) - b.Count(ColorWhite)
}

func (b Board) Full() bool {
	return b.CountEmpty() == 0
}
