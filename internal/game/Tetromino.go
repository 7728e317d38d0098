package game

// Tetromino is one of the seven fixed shape families. Cells is a binary
// matrix of occupied offsets within the shape's bounding box; it is never
// mutated after init.
//
// Precondition on every variant: each column is convex, meaning the filled
// cells of a column form one contiguous vertical run. CanFall only inspects
// the lowest filled cell per column, which is only sound under this
// assumption (any filled cell higher up the column rests on a lower cell of
// the same piece).
type Tetromino struct {
	Name   string
	Cells  [][]int
	Width  int
	Height int
}

func newTetromino(name string, cells [][]int) *Tetromino {
	return &Tetromino{
		Name:   name,
		Cells:  cells,
		Width:  len(cells[0]),
		Height: len(cells),
	}
}

// Tetrominoes holds the seven families. A piece's color index is its slot
// here plus one, so occupied board cells always hold 1..7.
var Tetrominoes = []*Tetromino{
	newTetromino("I", [][]int{{1, 1, 1, 1}}),
	newTetromino("O", [][]int{{1, 1}, {1, 1}}),
	newTetromino("T", [][]int{{0, 1, 0}, {1, 1, 1}}),
	newTetromino("L", [][]int{{0, 0, 1}, {1, 1, 1}}),
	newTetromino("J", [][]int{{1, 0, 0}, {1, 1, 1}}),
	newTetromino("S", [][]int{{0, 1, 1}, {1, 1, 0}}),
	newTetromino("Z", [][]int{{1, 1, 0}, {0, 1, 1}}),
}

// MaxShapeWidth bounds the widest family (the I piece).
const MaxShapeWidth = 4

// Piece is a transient falling tetromino: a shape reference, its color index
// and the top-left corner of its bounding box on the board. Only Row changes
// after spawn; once the piece lands its cells live on in the board and the
// Piece itself is discarded.
type Piece struct {
	Shape *Tetromino
	Color int
	Row   int
	Col   int
}
