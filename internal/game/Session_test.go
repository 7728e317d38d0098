package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T, rows, cols int, seed int64) *Session {
	t.Helper()
	session, err := NewSession(rows, cols, rand.New(rand.NewSource(seed)), NewNopTraceLog())
	require.NoError(t, err)
	return session
}

func TestNewSessionRejectsNarrowBoard(t *testing.T) {
	_, err := NewSession(24, MinBoardCols-1, rand.New(rand.NewSource(1)), NewNopTraceLog())
	require.Error(t, err)

	_, err = NewSession(0, 80, rand.New(rand.NewSource(1)), NewNopTraceLog())
	require.Error(t, err)

	_, err = NewSession(24, MinBoardCols, rand.New(rand.NewSource(1)), NewNopTraceLog())
	require.NoError(t, err)
}

func TestNewSessionStartsEmpty(t *testing.T) {
	session := testSession(t, 20, 30, 1)
	require.Equal(t, 0, session.Board.FilledCells())
	require.Equal(t, 0, session.PiecesPlaced)
	require.Equal(t, float64(0), session.FilledPercent())
}

func TestSpawnColumnStaysInsideMargins(t *testing.T) {
	session := testSession(t, 20, 30, 42)

	for i := 0; i < 500; i++ {
		piece := session.Spawn()
		require.GreaterOrEqual(t, piece.Col, SpawnMargin)
		require.LessOrEqual(t, piece.Col+piece.Shape.Width, session.Board.Cols-SpawnMargin)
		require.Equal(t, 0, piece.Row)
	}
}

// On the narrowest legal board every family must still spawn, pinned to the
// single legal column.
func TestSpawnOnMinimumWidthBoard(t *testing.T) {
	session := testSession(t, 20, MinBoardCols, 7)

	for i := 0; i < 100; i++ {
		piece := session.Spawn()
		require.GreaterOrEqual(t, piece.Col, SpawnMargin)
		require.LessOrEqual(t, piece.Col+piece.Shape.Width, MinBoardCols-SpawnMargin)
	}
}

func TestSpawnCoversAllFamilies(t *testing.T) {
	session := testSession(t, 20, 30, 99)

	seen := make(map[string]int)
	for i := 0; i < 700; i++ {
		piece := session.Spawn()
		seen[piece.Shape.Name]++
		require.Equal(t, piece.Shape, Tetrominoes[piece.Color-1])
	}
	require.Len(t, seen, 7)
}

func TestSameSeedSpawnsSameSequence(t *testing.T) {
	first := testSession(t, 20, 30, 1234)
	second := testSession(t, 20, 30, 1234)

	for i := 0; i < 50; i++ {
		a, b := first.Spawn(), second.Spawn()
		require.Equal(t, a.Shape.Name, b.Shape.Name)
		require.Equal(t, a.Col, b.Col)
	}
}
