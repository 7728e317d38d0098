package game

import "time"

const (
	// Pacing for the drive loop. One fall step per FallDelay, a breather
	// between pieces, and a longer cooldown before a full restart.
	FallDelay     = 750 * time.Millisecond
	PieceDelay    = time.Second
	ResetCooldown = 2 * time.Second

	// SpawnMargin keeps spawned pieces this many columns away from either
	// edge of the board.
	SpawnMargin = 2

	// MinBoardCols is the narrowest board that can still spawn the widest
	// shape with full margins. Anything smaller is a configuration error.
	MinBoardCols = MaxShapeWidth + 2*SpawnMargin

	DefaultBoardRows = 24
	DefaultBoardCols = 80

	TraceFilePath = "tetris_trace.log"
	StatsDBPath   = "screensaver_stats.db"
)

// Empty marks an unoccupied board cell.
const Empty = 0
