package game

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SessionStatsService persists one row of telemetry per finished session:
// how many pieces stacked up, how long it took and how full the board got.
type SessionStatsService struct {
	db *sql.DB
}

const statsTableName = "session_stats"

type SessionRecord struct {
	ID            int
	PiecesPlaced  int
	Duration      time.Duration
	FilledPercent float64
	BoardRows     int
	BoardCols     int
	CreatedAt     time.Time
}

func NewSessionStatsService(dbPath string) (*SessionStatsService, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	service := &SessionStatsService{db: db}
	if err := service.createTable(); err != nil {
		return nil, err
	}
	return service, nil
}

// createTable creates the session_stats table if it does not exist.
func (serviceImpl *SessionStatsService) createTable() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS ` + statsTableName + ` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pieces_placed INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		filled_percent REAL NOT NULL,
		board_rows INTEGER NOT NULL,
		board_cols INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := serviceImpl.db.Exec(createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to execute CREATE TABLE: %w", err)
	}
	return nil
}

func (serviceImpl *SessionStatsService) SaveSession(piecesPlaced int,
	duration time.Duration,
	filledPercent float64,
	boardRows int,
	boardCols int) error {
	const insertSQL = `
	INSERT INTO ` + statsTableName + ` (pieces_placed, duration_ms, filled_percent, board_rows, board_cols)
	VALUES (?, ?, ?, ?, ?);`

	_, err := serviceImpl.db.Exec(insertSQL, piecesPlaced, duration.Milliseconds(), filledPercent, boardRows, boardCols)
	if err != nil {
		return fmt.Errorf("failed to insert session stats: %w", err)
	}

	return nil
}

// GetRecentSessions retrieves a paginated list of sessions, newest first.
func (serviceImpl *SessionStatsService) GetRecentSessions(limit, offset int) ([]SessionRecord, error) {
	const selectSQL = `
	SELECT id, pieces_placed, duration_ms, filled_percent, board_rows, board_cols, created_at
	FROM ` + statsTableName + `
	ORDER BY id DESC
	LIMIT ? OFFSET ?;`

	rows, err := serviceImpl.db.Query(selectSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query session stats: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord

	for rows.Next() {
		var record SessionRecord
		var durationMS int64
		// created_at has a DATETIME declared type, so the driver hands it
		// back as a time.Time already.
		err := rows.Scan(&record.ID, &record.PiecesPlaced, &durationMS, &record.FilledPercent,
			&record.BoardRows, &record.BoardCols, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}

	return records, nil
}

func (serviceImpl *SessionStatsService) GetTotalSessionCount() (int, error) {
	const countSQL = `SELECT COUNT(*) FROM ` + statsTableName + `;`
	var count int
	err := serviceImpl.db.QueryRow(countSQL).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get total session count: %w", err)
	}
	return count, nil
}

func (serviceImpl *SessionStatsService) Close() error {
	return serviceImpl.db.Close()
}
