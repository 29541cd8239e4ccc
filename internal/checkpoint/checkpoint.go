// Package checkpoint keeps the latest session state in a badger store so a
// restarted process can resume where it stopped.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chessrules/internal/game"

	"github.com/dgraph-io/badger/v4"
)

const keyCurrent = "session/current"

var ErrNotFound = errors.New("no checkpoint")

// Record is the persisted form of a session
type Record struct {
	SessionID string     `json:"session_id"`
	Label     string     `json:"label"`
	State     game.State `json:"state"`
	SavedAt   time.Time  `json:"saved_at"`
}

// Store wraps BadgerDB for session checkpoints
type Store struct {
	db *badger.DB
}

// Open opens or creates a checkpoint store in dir, "" keeps it in memory
func Open(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces the current checkpoint
func (s *Store) Save(rec Record) error {
	rec.State.Selected = nil
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyCurrent), data)
	})
}

// Load returns the current checkpoint or ErrNotFound
func (s *Store) Load() (Record, error) {
	var rec Record

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyCurrent))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})

	return rec, err
}

// Clear removes the current checkpoint
func (s *Store) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyCurrent))
	})
}
