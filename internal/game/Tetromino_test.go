package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSevenFamiliesInColorOrder(t *testing.T) {
	require.Len(t, Tetrominoes, 7)

	wantNames := []string{"I", "O", "T", "L", "J", "S", "Z"}
	for i, shape := range Tetrominoes {
		require.Equal(t, wantNames[i], shape.Name)
		require.Equal(t, len(shape.Cells), shape.Height)
		require.Equal(t, len(shape.Cells[0]), shape.Width)
		require.LessOrEqual(t, shape.Width, MaxShapeWidth)

		var filled int
		for _, row := range shape.Cells {
			require.Len(t, row, shape.Width)
			for _, cell := range row {
				if cell != 0 {
					filled++
				}
			}
		}
		require.Equal(t, 4, filled, "family %s must have exactly four cells", shape.Name)
	}
}

// Every column of every family must be one contiguous vertical run of filled
// cells. CanFall's lowest-cell-per-column check is only correct under this
// precondition.
func TestShapesAreColumnConvex(t *testing.T) {
	for _, shape := range Tetrominoes {
		for col := 0; col < shape.Width; col++ {
			runs := 0
			inRun := false
			for row := 0; row < shape.Height; row++ {
				if shape.Cells[row][col] != 0 {
					if !inRun {
						runs++
						inRun = true
					}
				} else {
					inRun = false
				}
			}
			require.LessOrEqual(t, runs, 1, "family %s column %d has a vertical gap", shape.Name, col)
		}
	}
}
