package game

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// TraceLog is the optional debug trace of the simulation: spawns, per-step
// fall decisions, landings, resets and full board dumps, appended to a file
// that is truncated whenever a session starts. Purely observational, the
// simulation never reads it back.
type TraceLog struct {
	logger *log.Logger
	file   *os.File
	path   string
}

func NewTraceLog(path string) (*TraceLog, error) {
	trace := &TraceLog{path: path}
	if err := trace.reopen(); err != nil {
		return nil, err
	}
	return trace, nil
}

// NewNopTraceLog returns a trace that discards everything.
func NewNopTraceLog() *TraceLog {
	return &TraceLog{logger: log.New(io.Discard)}
}

func (t *TraceLog) reopen() error {
	if t.file != nil {
		t.file.Close()
	}
	file, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("failed to open trace log %s: %w", t.path, err)
	}
	t.file = file
	t.logger = log.NewWithOptions(file, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})
	return nil
}

// SessionStart truncates the file so every session's trace stands alone.
func (t *TraceLog) SessionStart(rows int, cols int) {
	if t.file != nil {
		if err := t.reopen(); err != nil {
			return
		}
	}
	t.logger.Info("session started", "rows", rows, "cols", cols)
}

func (t *TraceLog) Spawn(p *Piece) {
	t.logger.Info("spawned piece", "shape", p.Shape.Name, "row", p.Row, "col", p.Col)
}

func (t *TraceLog) FallStep(p *Piece) {
	t.logger.Debug("piece fell", "shape", p.Shape.Name, "row", p.Row, "col", p.Col)
}

func (t *TraceLog) Landed(p *Piece) {
	t.logger.Info("piece landed", "shape", p.Shape.Name, "row", p.Row, "col", p.Col)
}

func (t *TraceLog) StackFull(p *Piece) {
	t.logger.Info("stack full, piece cannot fall from spawn", "shape", p.Shape.Name, "col", p.Col)
}

// DumpBoard writes the whole grid as '#'/'.' rows, one line per board row.
func (t *TraceLog) DumpBoard(b *Board) {
	var sb strings.Builder
	sb.WriteString("board state\n")
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			if b.Cell(row, col) != Empty {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	t.logger.Debug(sb.String())
}

func (t *TraceLog) Close() error {
	if t.file != nil {
		return t.file.Close()
	}
	return nil
}
