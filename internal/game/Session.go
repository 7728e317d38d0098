package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Session owns one run of the board, from empty until the stack reaches the
// top. The random source and trace logger are injected so runs can be made
// deterministic under test instead of leaning on process-wide state.
type Session struct {
	Board        *Board
	Rng          *rand.Rand
	Trace        *TraceLog
	PiecesPlaced int
	StartedAt    time.Time
}

func NewSession(rows int, cols int, rng *rand.Rand, trace *TraceLog) (*Session, error) {
	if rows < 1 {
		return nil, fmt.Errorf("board needs at least one row, got %d", rows)
	}
	if cols < MinBoardCols {
		return nil, fmt.Errorf("board is %d columns wide, need at least %d to spawn a piece with %d-column margins", cols, MinBoardCols, SpawnMargin)
	}
	if trace == nil {
		trace = NewNopTraceLog()
	}

	session := &Session{
		Board:     NewBoard(rows, cols),
		Rng:       rng,
		Trace:     trace,
		StartedAt: time.Now(),
	}
	trace.SessionStart(rows, cols)
	return session, nil
}

// Spawn picks a shape family uniformly at random and a spawn column that
// keeps the whole shape inside the margins, so the resulting column always
// satisfies col >= SpawnMargin and col+width <= Cols-SpawnMargin.
func (s *Session) Spawn() *Piece {
	index := s.Rng.Intn(len(Tetrominoes))
	shape := Tetrominoes[index]

	span := s.Board.Cols - shape.Width - 2*SpawnMargin
	piece := &Piece{
		Shape: shape,
		Color: index + 1,
		Row:   0,
		Col:   SpawnMargin + s.Rng.Intn(span+1),
	}
	s.Trace.Spawn(piece)
	return piece
}

// Duration is the session's age.
func (s *Session) Duration() time.Duration {
	return time.Since(s.StartedAt)
}

// FilledPercent is how much of the board the stack covers, 0..100.
func (s *Session) FilledPercent() float64 {
	return float64(s.Board.FilledCells()) * 100 / float64(s.Board.Rows*s.Board.Cols)
}
