package game

import (
	"slices"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/rules"
)

// Snapshot is the (board, side to move, last move) triple saved before each move
type Snapshot struct {
	Board    board.Board `json:"board"`
	Turn     core.Color  `json:"turn"`
	LastMove *core.Move  `json:"lastMove,omitempty"`
}

// State is the full game state. It is treated as a value: Click and Undo
// return a new State and never modify the receiver or its history.
type State struct {
	Board    board.Board  `json:"board"`
	Turn     core.Color   `json:"turn"`
	LastMove *core.Move   `json:"lastMove,omitempty"`
	History  []Snapshot   `json:"history"`
	Selected *core.Square `json:"-"` // UI selection, not persisted
}

// Options tunes the behaviors the rules leave open
type Options struct {
	KingSafety       rules.KingSafetyPolicy
	ReselectOwnPiece bool // clicking another own piece switches selection instead of deselecting
}

// Outcome describes what a click did
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSelected
	OutcomeDeselected
	OutcomeMoved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSelected:
		return "selected"
	case OutcomeDeselected:
		return "deselected"
	case OutcomeMoved:
		return "moved"
	default:
		return "ignored"
	}
}

// InitialBoard returns the standard starting position
func InitialBoard() board.Board {
	return board.Initial()
}

// NewState starts a game from the initial position with White to move
func NewState() State {
	return NewStateFrom(board.Initial(), core.ColorWhite)
}

// NewStateFrom starts a game from an arbitrary position
func NewStateFrom(b board.Board, turn core.Color) State {
	return State{Board: b, Turn: turn}
}

func (s State) generator(opts Options) rules.Generator {
	return rules.Generator{Policy: opts.KingSafety}
}

// MoveCount returns the number of moves that can be undone
func (s State) MoveCount() int {
	return len(s.History)
}

func (s State) Snapshot() Snapshot {
	return Snapshot{Board: s.Board, Turn: s.Turn, LastMove: s.LastMove}
}

// PossibleMoves returns the legal destinations of the piece on sq, empty
// unless that piece belongs to the side to move.
func (s State) PossibleMoves(sq core.Square, opts Options) []core.Square {
	p := s.Board.At(sq)
	if p.IsEmpty() || p.Color != s.Turn {
		return nil
	}
	return s.generator(opts).LegalMoves(s.Board, sq)
}

// Highlighted returns the destinations of the selected piece
func (s State) Highlighted(opts Options) []core.Square {
	if s.Selected == nil {
		return nil
	}
	return s.generator(opts).LegalMoves(s.Board, *s.Selected)
}

// Click feeds one square selection into the state machine
func (s State) Click(sq core.Square, opts Options) (State, Outcome) {
	if s.Selected == nil {
		if p := s.Board.At(sq); !p.IsEmpty() && p.Color == s.Turn {
			s.Selected = &sq
			return s, OutcomeSelected
		}
		return s, OutcomeIgnored
	}

	sel := *s.Selected
	switch {
	case sq == sel:
		s.Selected = nil
		return s, OutcomeDeselected

	case slices.Contains(s.Highlighted(opts), sq):
		return s.apply(core.Move{From: sel, To: sq}), OutcomeMoved

	case opts.ReselectOwnPiece && s.Board.At(sq).Color == s.Turn && !s.Board.IsEmpty(sq):
		s.Selected = &sq
		return s, OutcomeSelected

	default:
		s.Selected = nil
		return s, OutcomeDeselected
	}
}

// apply pushes a snapshot, moves the piece and flips the turn
func (s State) apply(m core.Move) State {
	// Clip forces a fresh backing array so earlier States keep their history
	s.History = append(slices.Clip(s.History), s.Snapshot())
	s.Board = s.Board.WithMove(m.From, m.To)
	s.LastMove = &m
	s.Turn = core.OppositeColor(s.Turn)
	s.Selected = nil
	return s
}

// Undo restores the most recent snapshot. Selection is always cleared.
// Returns false if there was nothing to undo.
func (s State) Undo() (State, bool) {
	s.Selected = nil
	n := len(s.History)
	if n == 0 {
		return s, false
	}

	prev := s.History[n-1]
	s.Board = prev.Board
	s.Turn = prev.Turn
	s.LastMove = prev.LastMove
	s.History = s.History[:n-1]
	if len(s.History) == 0 {
		// Match a fresh state exactly
		s.History = nil
	}
	return s, true
}

// Moves lists the moves that led to the current position, oldest first
func (s State) Moves() []core.Move {
	moves := make([]core.Move, 0, len(s.History))
	for i := 1; i < len(s.History); i++ {
		if m := s.History[i].LastMove; m != nil {
			moves = append(moves, *m)
		}
	}
	if s.LastMove != nil && len(s.History) > 0 {
		moves = append(moves, *s.LastMove)
	}
	return moves
}

// Package-level helpers with default options

func PossibleMoves(s State, sq core.Square) []core.Square {
	return s.PossibleMoves(sq, Options{})
}

func Click(s State, sq core.Square) State {
	next, _ := s.Click(sq, Options{})
	return next
}

func Undo(s State) State {
	next, _ := s.Undo()
	return next
}
