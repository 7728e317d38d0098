package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/synju/terminal-tetris-screensaver/internal/game"
)

// --- Styling Definitions ---

var (
	// Base style for the board border
	mapViewStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 0)

	// Base style for the status panel border
	statusPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("8")).
				Padding(1, 2)

	titleStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)

	// One style per color index 1..7, same family order as game.Tetrominoes:
	// I, O, T, L, J, S, Z.
	pieceStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("14")), // I - cyan
		lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // O - yellow
		lipgloss.NewStyle().Foreground(lipgloss.Color("13")), // T - magenta
		lipgloss.NewStyle().Foreground(lipgloss.Color("12")), // L - blue
		lipgloss.NewStyle().Foreground(lipgloss.Color("15")), // J - white
		lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // S - green
		lipgloss.NewStyle().Foreground(lipgloss.Color("9")),  // Z - red
	}

	blockGlyph = "█"
	emptyGlyph = " "
)

const (
	statusPanelWidth = 26
	borderCells      = 2
)

// BoardSizeFor converts a terminal size into board dimensions, leaving room
// for the board border and the status panel. A terminal too small to host a
// playable board surfaces as an error from the session constructor, not here.
func BoardSizeFor(screenWidth int, screenHeight int) (rows int, cols int) {
	rows = max(1, screenHeight-borderCells)
	cols = max(1, screenWidth-statusPanelWidth-borderCells)
	return rows, cols
}

// --- ScreensaverModel Definition ---

// ScreensaverModel is the single screen of the program: the live board on the
// left, a small status panel on the right. It never feeds input back into
// the simulation; the only keys it reacts to quit the program.
type ScreensaverModel struct {
	Simulator    *game.Simulator
	Stats        *game.SessionStatsService
	ScreenWidth  int
	ScreenHeight int

	stopwatch         stopwatch.Model
	sessionsCompleted int
	allTimeSessions   int
	lastSession       *game.SessionRecord
}

func NewScreensaverModel(sim *game.Simulator, stats *game.SessionStatsService, screenWidth int, screenHeight int) ScreensaverModel {
	m := ScreensaverModel{
		Simulator:    sim,
		Stats:        stats,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
		stopwatch:    stopwatch.NewWithInterval(time.Second),
	}
	m.refreshHistory()
	return m
}

// refreshHistory pulls the persisted totals shown in the status panel. The
// store may be nil or failing; the panel then keeps its last values.
func (m *ScreensaverModel) refreshHistory() {
	if m.Stats == nil {
		return
	}
	if total, err := m.Stats.GetTotalSessionCount(); err == nil {
		m.allTimeSessions = total
	}
	if recent, err := m.Stats.GetRecentSessions(1, 0); err == nil && len(recent) > 0 {
		m.lastSession = &recent[0]
	}
}

func (m ScreensaverModel) Init() tea.Cmd {
	return tea.Batch(m.stopwatch.Init(), m.listenForFrames())
}

func (m ScreensaverModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.Simulator.Stop()
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.ScreenWidth = msg.Width
		m.ScreenHeight = msg.Height
		rows, cols := BoardSizeFor(msg.Width, msg.Height)
		m.Simulator.Resize(rows, cols)
		return m, nil

	case game.FrameMsg:
		return m, m.listenForFrames()

	case game.SessionResetMsg:
		m.sessionsCompleted++
		// The finished session's row is persisted before this message is
		// sent, so the panel totals can include it right away.
		m.refreshHistory()
		return m, tea.Batch(m.stopwatch.Reset(), m.listenForFrames())
	}

	var cmd tea.Cmd
	m.stopwatch, cmd = m.stopwatch.Update(msg)
	return m, cmd
}

func (m ScreensaverModel) View() string {
	snapshot := m.Simulator.Snapshot()

	var sb strings.Builder
	for row := range snapshot {
		if row > 0 {
			sb.WriteString("\n")
		}
		for _, cell := range snapshot[row] {
			if cell == game.Empty {
				sb.WriteString(emptyGlyph)
			} else {
				sb.WriteString(pieceStyles[cell-1].Render(blockGlyph))
			}
		}
	}

	boardRows, boardCols := m.Simulator.BoardSize()
	panelHeight := boardRows - borderCells

	return lipgloss.JoinHorizontal(lipgloss.Top,
		mapViewStyle.Width(boardCols).Height(boardRows).Render(sb.String()),
		statusPanelStyle.Width(statusPanelWidth-borderCells).Height(max(1, panelHeight)).Render(m.renderStatusPanel()),
	)
}

// renderStatusPanel draws session uptime and counters next to the board.
func (m ScreensaverModel) renderStatusPanel() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("--- Screensaver ---"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Uptime: %s\n", m.stopwatch.View()))
	sb.WriteString(fmt.Sprintf("Pieces placed: %d\n", m.Simulator.PiecesPlaced()))
	sb.WriteString(fmt.Sprintf("Restarts: %d\n", m.sessionsCompleted))
	if m.Stats != nil {
		sb.WriteString(fmt.Sprintf("All-time: %d\n", m.allTimeSessions))
	}
	if m.lastSession != nil {
		sb.WriteString(fmt.Sprintf("Last: %d pieces, %.0f%%\n",
			m.lastSession.PiecesPlaced, m.lastSession.FilledPercent))
	}
	sb.WriteString("\n")
	sb.WriteString(hintStyle.Render("Q / Ctrl+C: Quit"))

	return sb.String()
}

// listenForFrames polls the simulator's update channel. When nothing arrived
// we still emit a frame so the view stays live across resizes.
func (m ScreensaverModel) listenForFrames() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		select {
		case msg := <-m.Simulator.UpdateChannel:
			return msg
		default:
			return game.FrameMsg{}
		}
	})
}
