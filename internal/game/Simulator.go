package game

import (
	"math/rand"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// Phase is the drive loop's state. A session walks
// Spawning -> Falling -> Landed -> Spawning until a spawned piece cannot fall
// at all, which flips it to StackFull and a fresh session.
type Phase int

const (
	PhaseSpawning Phase = iota
	PhaseFalling
	PhaseLanded
	PhaseStackFull
)

// FrameMsg tells the UI the board changed.
type FrameMsg struct{}

// SessionResetMsg tells the UI a stack-full reset happened.
type SessionResetMsg struct{}

// Simulator drives the spawn/fall/land/reset cycle as an explicit state
// machine instead of restarting through recursion, so the call stack stays
// flat over arbitrarily long runs. The board is mutated only from Step; the
// UI reads it through Snapshot under the same lock.
type Simulator struct {
	UpdateChannel chan tea.Msg

	mutex   sync.RWMutex
	session *Session
	piece   *Piece
	phase   Phase
	running bool

	rng   *rand.Rand
	trace *TraceLog
	stats *SessionStatsService

	pendingRows       int
	pendingCols       int
	sessionsCompleted int
}

// NewSimulator builds the simulator and its first session. The stats service
// may be nil, in which case nothing is persisted on reset.
func NewSimulator(rows int, cols int, rng *rand.Rand, trace *TraceLog, stats *SessionStatsService) (*Simulator, error) {
	session, err := NewSession(rows, cols, rng, trace)
	if err != nil {
		return nil, err
	}

	return &Simulator{
		UpdateChannel: make(chan tea.Msg, 256),
		session:       session,
		phase:         PhaseSpawning,
		rng:           rng,
		trace:         session.Trace,
		stats:         stats,
		pendingRows:   rows,
		pendingCols:   cols,
	}, nil
}

// StartLoop blocks, stepping the state machine with per-phase pacing delays
// until Stop is called. Meant to run on its own goroutine next to the UI.
func (sim *Simulator) StartLoop() {
	sim.mutex.Lock()
	if sim.running {
		sim.mutex.Unlock()
		return
	}
	sim.running = true
	sim.mutex.Unlock()

	log.Debug("simulation loop started")
	for sim.IsRunning() {
		sim.Step()
		if delay := sim.phaseDelay(); delay > 0 {
			time.Sleep(delay)
		}
	}
	log.Debug("simulation loop stopped")
}

func (sim *Simulator) Stop() {
	sim.mutex.Lock()
	sim.running = false
	sim.mutex.Unlock()
}

func (sim *Simulator) IsRunning() bool {
	sim.mutex.RLock()
	defer sim.mutex.RUnlock()
	return sim.running
}

// Step advances the state machine by one transition. Exported so tests can
// drive the simulation deterministically without the pacing loop.
func (sim *Simulator) Step() {
	sim.mutex.Lock()
	defer sim.mutex.Unlock()

	switch sim.phase {
	case PhaseSpawning:
		sim.piece = sim.session.Spawn()
		if sim.session.Board.Overlaps(sim.piece) || !sim.session.Board.CanFall(sim.piece) {
			sim.trace.StackFull(sim.piece)
			sim.phase = PhaseStackFull
			return
		}
		sim.phase = PhaseFalling

	case PhaseFalling:
		board := sim.session.Board
		if board.CanFall(sim.piece) {
			board.Remove(sim.piece)
			sim.piece.Row++
			board.Place(sim.piece)
			sim.trace.FallStep(sim.piece)
			sim.trace.DumpBoard(board)
			sim.notify(FrameMsg{})
			return
		}
		// Lock the piece in. Its cells were already written by the last fall
		// step; this restates the resting position as authoritative.
		board.Place(sim.piece)
		sim.session.PiecesPlaced++
		sim.trace.Landed(sim.piece)
		sim.trace.DumpBoard(board)
		sim.phase = PhaseLanded
		sim.notify(FrameMsg{})

	case PhaseLanded:
		sim.piece = nil
		sim.phase = PhaseSpawning

	case PhaseStackFull:
		sim.resetSessionLocked()
		sim.phase = PhaseSpawning
		sim.notify(SessionResetMsg{})
	}
}

// phaseDelay maps the current phase to the pause that follows it: one row
// per FallDelay, PieceDelay between pieces, ResetCooldown before a restart.
func (sim *Simulator) phaseDelay() time.Duration {
	sim.mutex.RLock()
	defer sim.mutex.RUnlock()

	switch sim.phase {
	case PhaseFalling:
		return FallDelay
	case PhaseLanded:
		return PieceDelay
	case PhaseStackFull:
		return ResetCooldown
	default:
		return 0
	}
}

func (sim *Simulator) resetSessionLocked() {
	finished := sim.session
	if sim.stats != nil {
		err := sim.stats.SaveSession(
			finished.PiecesPlaced,
			finished.Duration(),
			finished.FilledPercent(),
			finished.Board.Rows,
			finished.Board.Cols,
		)
		if err != nil {
			log.Error("failed to persist session stats", "error", err)
		}
	}
	sim.sessionsCompleted++

	session, err := NewSession(sim.pendingRows, sim.pendingCols, sim.rng, sim.trace)
	if err != nil {
		// The pending size came from a resize that left no room to spawn.
		// Keep the old dimensions, which were valid.
		log.Warn("ignoring resize on session reset", "error", err)
		sim.pendingRows = finished.Board.Rows
		sim.pendingCols = finished.Board.Cols
		session, _ = NewSession(sim.pendingRows, sim.pendingCols, sim.rng, sim.trace)
	}
	sim.session = session
	sim.piece = nil
}

// Resize records new terminal dimensions. They take effect at the next
// session reset only, since board dimensions are fixed while a session runs.
func (sim *Simulator) Resize(rows int, cols int) {
	sim.mutex.Lock()
	defer sim.mutex.Unlock()
	sim.pendingRows = rows
	sim.pendingCols = cols
}

func (sim *Simulator) notify(msg tea.Msg) {
	// Never stall the drive loop on a slow or absent UI.
	select {
	case sim.UpdateChannel <- msg:
	default:
	}
}

// Snapshot copies the grid for rendering.
func (sim *Simulator) Snapshot() [][]int {
	sim.mutex.RLock()
	defer sim.mutex.RUnlock()
	return sim.session.Board.Snapshot()
}

func (sim *Simulator) Phase() Phase {
	sim.mutex.RLock()
	defer sim.mutex.RUnlock()
	return sim.phase
}

func (sim *Simulator) PiecesPlaced() int {
	sim.mutex.RLock()
	defer sim.mutex.RUnlock()
	return sim.session.PiecesPlaced
}

func (sim *Simulator) SessionsCompleted() int {
	sim.mutex.RLock()
	defer sim.mutex.RUnlock()
	return sim.sessionsCompleted
}

func (sim *Simulator) BoardSize() (rows int, cols int) {
	sim.mutex.RLock()
	defer sim.mutex.RUnlock()
	return sim.session.Board.Rows, sim.session.Board.Cols
}
