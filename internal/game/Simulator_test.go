package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSimulator(t *testing.T, rows, cols int, seed int64) *Simulator {
	t.Helper()
	sim, err := NewSimulator(rows, cols, rand.New(rand.NewSource(seed)), NewNopTraceLog(), nil)
	require.NoError(t, err)
	return sim
}

// stepUntil drives the state machine until the predicate holds, failing the
// test if it never does.
func stepUntil(t *testing.T, sim *Simulator, maxSteps int, predicate func() bool) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if predicate() {
			return
		}
		sim.Step()
	}
	t.Fatalf("condition not reached within %d steps", maxSteps)
}

func TestFirstPieceLandsOnFloor(t *testing.T) {
	sim := testSimulator(t, 8, 20, 1)

	require.Equal(t, PhaseSpawning, sim.Phase())
	sim.Step()
	require.Equal(t, PhaseFalling, sim.Phase())

	stepUntil(t, sim, 50, func() bool { return sim.Phase() == PhaseLanded })

	require.Equal(t, 1, sim.PiecesPlaced())
	require.Equal(t, 4, sim.session.Board.FilledCells())
}

func TestFallAdvancesOneRowPerStep(t *testing.T) {
	sim := testSimulator(t, 8, 20, 1)
	sim.Step() // spawn

	lastRow := sim.piece.Row
	for sim.Phase() == PhaseFalling && sim.session.Board.CanFall(sim.piece) {
		sim.Step()
		require.Equal(t, lastRow+1, sim.piece.Row)
		lastRow = sim.piece.Row
	}
}

// Every landing adds exactly four cells: no piece ever overwrites another's
// cells across whole sessions.
func TestLandedPiecesNeverOverlap(t *testing.T) {
	sim := testSimulator(t, 10, 24, 7)

	for i := 0; i < 100000; i++ {
		sim.Step()
		if sim.Phase() == PhaseLanded {
			require.Equal(t, 4*sim.PiecesPlaced(), sim.session.Board.FilledCells())
		}
		if sim.SessionsCompleted() >= 2 {
			return
		}
	}
	t.Fatal("simulation never filled the board twice")
}

func TestBlockedSpawnTriggersStackFull(t *testing.T) {
	sim := testSimulator(t, 8, 20, 1)

	// Fill the top three rows so that no family, whatever its height, can
	// fall even one row from spawn.
	for row := 0; row < 3; row++ {
		for col := 0; col < 20; col++ {
			sim.session.Board.cells[row][col] = 5
		}
	}

	pieces := sim.PiecesPlaced()
	sim.Step() // spawn
	require.Equal(t, PhaseStackFull, sim.Phase())
	require.Equal(t, pieces, sim.PiecesPlaced(), "no falling steps may happen")
}

func TestStackFullResetsSession(t *testing.T) {
	sim := testSimulator(t, 8, 20, 3)
	stepUntil(t, sim, 100000, func() bool { return sim.Phase() == PhaseStackFull })

	sim.Step() // reset
	require.Equal(t, PhaseSpawning, sim.Phase())
	require.Equal(t, 1, sim.SessionsCompleted())
	require.Equal(t, 0, sim.session.Board.FilledCells())
	require.Equal(t, 0, sim.PiecesPlaced())
}

func TestResizeAppliesOnReset(t *testing.T) {
	sim := testSimulator(t, 8, 20, 3)
	sim.Resize(12, 30)

	rows, cols := sim.BoardSize()
	require.Equal(t, 8, rows)
	require.Equal(t, 20, cols)

	stepUntil(t, sim, 100000, func() bool { return sim.Phase() == PhaseStackFull })
	sim.Step() // reset

	rows, cols = sim.BoardSize()
	require.Equal(t, 12, rows)
	require.Equal(t, 30, cols)
}

func TestResizeBelowMinimumIsIgnoredOnReset(t *testing.T) {
	sim := testSimulator(t, 8, 20, 3)
	sim.Resize(5, MinBoardCols-2)

	stepUntil(t, sim, 100000, func() bool { return sim.Phase() == PhaseStackFull })
	sim.Step() // reset

	rows, cols := sim.BoardSize()
	require.Equal(t, 8, rows)
	require.Equal(t, 20, cols)
}

func TestFrameMessagesEmitted(t *testing.T) {
	sim := testSimulator(t, 8, 20, 1)
	stepUntil(t, sim, 50, func() bool { return sim.Phase() == PhaseLanded })

	select {
	case msg := <-sim.UpdateChannel:
		require.IsType(t, FrameMsg{}, msg)
	default:
		t.Fatal("expected at least one frame message")
	}
}

// Session teardown relies on Stop actually terminating the loop goroutine,
// not just flagging it; otherwise every dropped connection leaks one.
func TestStopEndsLoop(t *testing.T) {
	sim := testSimulator(t, 8, 20, 1)

	done := make(chan struct{})
	go func() {
		sim.StartLoop()
		close(done)
	}()

	require.Eventually(t, sim.IsRunning, time.Second, 5*time.Millisecond)
	sim.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop kept running after Stop")
	}
	require.False(t, sim.IsRunning())
}

func TestPhaseDelays(t *testing.T) {
	sim := testSimulator(t, 8, 20, 1)

	require.Equal(t, time.Duration(0), sim.phaseDelay())
	sim.Step() // spawn -> falling
	require.Equal(t, FallDelay, sim.phaseDelay())

	stepUntil(t, sim, 50, func() bool { return sim.Phase() == PhaseLanded })
	require.Equal(t, PieceDelay, sim.phaseDelay())

	sim.phase = PhaseStackFull
	require.Equal(t, ResetCooldown, sim.phaseDelay())
}
