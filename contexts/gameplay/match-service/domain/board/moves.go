package board

var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// flipsInDirection walks outward from pos and returns the run of opposing
// discs that would flip, or nil when the run is not terminated by an own disc.
func flipsInDirection(b Board, c Color, pos Position, dRow, dCol int) []Position {
	own := c.Cell()
	opp := Opposite(c).Cell()

	var run []Position
	row, col := pos.Row+dRow, pos.Col+dCol
	for row >= 0 && row < Size && col >= 0 && col < Size {
		switch b[row][col] {
		case opp:
			run = append(run, Position{Row: row, Col: col})
		case own:
			if len(run) == 0 {
				return nil
			}
			return run
		default:
			return nil
		}
		row += dRow
		col += dCol
	}
	return nil
}

// IsLegal reports whether placing c at pos flips at least one disc.
func IsLegal(b Board, c Color, pos Position) bool {
	if !pos.InBounds() || b[pos.Row][pos.Col] != CellEmpty {
		return false
	}
	for _, dir := range directions {
		if len(flipsInDirection(b, c, pos, dir[0], dir[1])) > 0 {
			return true
		}
	}
	return false
}

// LegalMoves enumerates every legal target for c in row-major order. The
// result may be empty; callers decide whether that means pass or game end.
func LegalMoves(b Board, c Color) []Position {
	var moves []Position
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if IsLegal(b, c, Position{Row: row, Col: col}) {
				moves = append(moves, Position{Row: row, Col: col})
			}
		}
	}
	return moves
}

// Apply places c at pos, flips every captured run, and returns the new board
// together with the flipped cells. Illegal placements return ErrIllegalMove
// and leave the input board untouched.
func Apply(b Board, c Color, pos Position) (Board, []Position, error) {
	if !pos.InBounds() || b[pos.Row][pos.Col] != CellEmpty {
		return Board{}, nil, ErrIllegalMove
	}

	var flipped []Position
	for _, dir := range directions {
		flipped = append(flipped, flipsInDirection(b, c, pos, dir[0], dir[1])...)
	}
	if len(flipped) == 0 {
		return Board{}, nil, ErrIllegalMove
	}

	next := b
	next[pos.Row][pos.Col] = c.Cell()
	for _, cell := range flipped {
		next[cell.Row][cell.Col] = c.Cell()
	}
	return next, flipped, nil
}
