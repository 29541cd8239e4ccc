package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var ErrStoreDegraded = errors.New("storage degraded")

// Store handles SQLite database operations with async writes
type Store struct {
	db           *sql.DB
	path         string
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

// NewStore creates a new storage instance with async writer
func NewStore(dataSourceName string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL in development for concurrent reads from the db query tool
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Moves cascade with their session
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Pragmas are per connection, keep a single one
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      dataSourceName,
		writeChan: make(chan func(*sql.Tx) error, 1000),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.healthStatus.Store(true)

	// Start async writer
	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// writerLoop processes async write operations
func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain remaining writes with timeout
			deadline := time.After(2 * time.Second)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			// Discard once degraded
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

// executeWrite runs a transactional write operation
func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("Storage degraded: failed to begin transaction: %v", err)
		s.healthStatus.Store(false)
		return
	}

	// Any failure degrades the store for the rest of the process
	if err := fn(tx); err != nil {
		tx.Rollback()
		log.Printf("Storage degraded: write operation failed: %v", err)
		s.healthStatus.Store(false)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Storage degraded: failed to commit: %v", err)
		s.healthStatus.Store(false)
	}
}

// enqueue hands a write to the writer, dropping it when degraded or full
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) error {
	if !s.healthStatus.Load() {
		return nil
	}

	select {
	case s.writeChan <- fn:
		return nil
	default:
		// Channel full, drop write
		log.Printf("Storage write queue full, dropping %s", what)
		return nil
	}
}

// RecordNewSession asynchronously records a new session
func (s *Store) RecordNewSession(record SessionRecord) error {
	return s.enqueue("session record", func(tx *sql.Tx) error {
		query := `INSERT INTO sessions (
			session_id, label, initial_board, initial_turn, king_safety, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.SessionID, record.Label, record.InitialBoard,
			record.InitialTurn, record.KingSafety, record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove asynchronously records a move
func (s *Store) RecordMove(record MoveRecord) error {
	return s.enqueue("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			session_id, move_number, move_uci, piece, player_color, board_after, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.SessionID, record.MoveNumber, record.MoveUCI, record.Piece,
			record.PlayerColor, record.BoardAfter, record.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves asynchronously deletes moves after undo
func (s *Store) DeleteUndoneMoves(sessionID string, afterMoveNumber int) error {
	return s.enqueue("undo operation", func(tx *sql.Tx) error {
		query := `DELETE FROM moves WHERE session_id = ? AND move_number > ?`
		_, err := tx.Exec(query, sessionID, afterMoveNumber)
		return err
	})
}

// Flush blocks until every write queued before the call has been applied
func (s *Store) Flush(ctx context.Context) error {
	if !s.healthStatus.Load() {
		return ErrStoreDegraded
	}

	// The writer is FIFO, so a no-op write marks everything queued before it
	done := make(chan struct{})
	barrier := func(*sql.Tx) error {
		close(done)
		return nil
	}

	select {
	case s.writeChan <- barrier:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsHealthy returns the current health status
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Close drains pending writes and closes the database connection
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		// Signal writer to stop
		s.cancel()

		// Wait for writer with timeout
		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			log.Printf("Warning: storage writer shutdown timeout, some writes may be lost")
		}

		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	// Close connection first
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// Destructive: the whole move log goes with the file
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}

// QuerySessions retrieves sessions, "" or "*" matches any value
func (s *Store) QuerySessions(sessionID, label string) ([]SessionRecord, error) {
	query := `SELECT
		session_id, label, initial_board, initial_turn, king_safety, start_time_utc
	FROM sessions WHERE 1=1`

	var args []any

	if sessionID != "" && sessionID != "*" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}

	if label != "" && label != "*" {
		query += " AND label = ?"
		args = append(args, label)
	}

	// Newest first
	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(
			&r.SessionID, &r.Label, &r.InitialBoard,
			&r.InitialTurn, &r.KingSafety, &r.StartTimeUTC,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		sessions = append(sessions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return sessions, nil
}

// QueryMoves retrieves the recorded moves of a session in play order
func (s *Store) QueryMoves(sessionID string) ([]MoveRecord, error) {
	query := `SELECT
		move_id, session_id, move_number, move_uci, piece, player_color, board_after, move_time_utc
	FROM moves WHERE session_id = ? ORDER BY move_number ASC`

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(
			&m.MoveID, &m.SessionID, &m.MoveNumber, &m.MoveUCI, &m.Piece,
			&m.PlayerColor, &m.BoardAfter, &m.MoveTimeUTC,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return moves, nil
}
