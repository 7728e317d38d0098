package game

// Board is the occupancy grid. A cell holds Empty or the color index (1..7)
// of the shape family occupying it. Dimensions are fixed for a session's
// lifetime; a terminal resize only takes effect when the session resets.
type Board struct {
	Rows  int
	Cols  int
	cells [][]int
}

func NewBoard(rows int, cols int) *Board {
	cells := make([][]int, rows)
	for row := range cells {
		cells[row] = make([]int, cols)
	}
	return &Board{Rows: rows, Cols: cols, cells: cells}
}

// Cell returns the color index at (row, col), or Empty for out-of-range
// coordinates.
func (b *Board) Cell(row int, col int) int {
	if row < 0 || row >= b.Rows || col < 0 || col >= b.Cols {
		return Empty
	}
	return b.cells[row][col]
}

// CanFall reports whether the piece can move down one row. The check is per
// column: every occupied column of the piece needs a free in-bounds cell
// directly below its lowest filled cell. The grid bottom counts as blocking.
// Cells above the lowest one in a column never need checking because shapes
// are column-convex.
func (b *Board) CanFall(p *Piece) bool {
	// Lowest filled row per column of the bounding box. Shape widths are at
	// most MaxShapeWidth, so a fixed array beats a map keyed by column.
	var lowest [MaxShapeWidth]int
	for dx := range lowest {
		lowest[dx] = -1
	}
	for dy, row := range p.Shape.Cells {
		for dx, cell := range row {
			if cell != 0 {
				lowest[dx] = p.Row + dy
			}
		}
	}

	for dx := 0; dx < p.Shape.Width; dx++ {
		if lowest[dx] < 0 {
			continue
		}
		below := lowest[dx] + 1
		if below >= b.Rows {
			return false
		}
		if below >= 0 && b.cells[below][p.Col+dx] != Empty {
			return false
		}
	}
	return true
}

// Overlaps reports whether any occupied cell of the piece sits on a nonzero
// board cell. A spawn that overlaps the stack means the board has no room
// left even when the fall check alone would pass; letting such a piece fall
// would erase the stack cells under its footprint on the first Remove.
func (b *Board) Overlaps(p *Piece) bool {
	for dy, row := range p.Shape.Cells {
		for dx, cell := range row {
			if cell != 0 && b.Cell(p.Row+dy, p.Col+dx) != Empty {
				return true
			}
		}
	}
	return false
}

// Place writes the piece's color index into every cell it occupies. Callers
// only place pieces that passed a spawn or fall check, but out-of-range
// offsets are still skipped rather than trusted.
func (b *Board) Place(p *Piece) {
	b.stamp(p, p.Color)
}

// Remove clears the piece's footprint at its current position so it can be
// re-placed one row lower. Offsets outside the board are skipped since a
// piece straddles the top edge transiently right after spawn.
func (b *Board) Remove(p *Piece) {
	b.stamp(p, Empty)
}

func (b *Board) stamp(p *Piece, value int) {
	for dy, row := range p.Shape.Cells {
		for dx, cell := range row {
			if cell == 0 {
				continue
			}
			cellRow, cellCol := p.Row+dy, p.Col+dx
			if cellRow < 0 || cellRow >= b.Rows || cellCol < 0 || cellCol >= b.Cols {
				continue
			}
			b.cells[cellRow][cellCol] = value
		}
	}
}

// FilledCells counts occupied cells.
func (b *Board) FilledCells() int {
	var count int
	for _, row := range b.cells {
		for _, cell := range row {
			if cell != Empty {
				count++
			}
		}
	}
	return count
}

// Snapshot copies the grid so renderers can read it without holding the
// simulator lock.
func (b *Board) Snapshot() [][]int {
	snapshot := make([][]int, b.Rows)
	for row := range b.cells {
		snapshot[row] = make([]int, b.Cols)
		copy(snapshot[row], b.cells[row])
	}
	return snapshot
}
