package storage

import "time"

// SessionRecord represents a row in the sessions table
type SessionRecord struct {
	SessionID    string    `db:"session_id"`
	Label        string    `db:"label"`
	InitialBoard string    `db:"initial_board"` // FEN placement
	InitialTurn  string    `db:"initial_turn"`  // "w" or "b"
	KingSafety   string    `db:"king_safety"`
	StartTimeUTC time.Time `db:"start_time_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID      int64     `db:"move_id"`
	SessionID   string    `db:"session_id"`
	MoveNumber  int       `db:"move_number"`
	MoveUCI     string    `db:"move_uci"`
	Piece       string    `db:"piece"` // FEN letter of the moved piece
	PlayerColor string    `db:"player_color"`
	BoardAfter  string    `db:"board_after"`
	MoveTimeUTC time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	initial_board TEXT NOT NULL,
	initial_turn TEXT NOT NULL CHECK(initial_turn IN ('w', 'b')),
	king_safety TEXT NOT NULL DEFAULT 'premove',
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	move_uci TEXT NOT NULL,
	piece TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	board_after TEXT NOT NULL,
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
	UNIQUE(session_id, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_session_id ON moves(session_id);
CREATE INDEX IF NOT EXISTS idx_sessions_label ON sessions(label);
`
