package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/synju/terminal-tetris-screensaver/internal/game"
	"github.com/synju/terminal-tetris-screensaver/internal/ui"
)

func main() {
	trace, traceErr := game.NewTraceLog(game.TraceFilePath)
	if traceErr != nil {
		log.Fatal("Failed to open trace log", "error", traceErr)
	}
	defer trace.Close()

	stats, statsErr := game.NewSessionStatsService(game.StatsDBPath)
	if statsErr != nil {
		log.Fatal("Failed to open stats database", "error", statsErr)
	}
	defer stats.Close()

	screenWidth, screenHeight, sizeErr := term.GetSize(int(os.Stdout.Fd()))
	if sizeErr != nil {
		screenWidth, screenHeight = game.DefaultBoardCols, game.DefaultBoardRows
	}

	rows, cols := ui.BoardSizeFor(screenWidth, screenHeight)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sim, simErr := game.NewSimulator(rows, cols, rng, trace, stats)
	if simErr != nil {
		log.Fatal("Terminal is too small for the screensaver", "error", simErr)
	}
	go sim.StartLoop()

	p := tea.NewProgram(ui.NewScreensaverModel(sim, stats, screenWidth, screenHeight), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error %v", err)
		os.Exit(1)
	}
	sim.Stop()
}
