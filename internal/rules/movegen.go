// Package rules generates moves and answers attack and king-safety queries
// over a board.Board. Every function is pure: boards are passed by value and
// never retained.
package rules

import (
	"chessrules/internal/board"
	"chessrules/internal/core"
)

type offset [2]int

var (
	knightOffsets = []offset{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = []offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalDirs  = []offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	straightDirs  = []offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	allDirs       = append(append([]offset{}, diagonalDirs...), straightDirs...)
)

// Generator produces moves under a fixed king-safety policy
type Generator struct {
	Policy KingSafetyPolicy
}

// Default uses PolicyPreMove
var Default = Generator{Policy: PolicyPreMove}

// PseudoLegalMoves returns destinations for the piece on sq using the
// default generator. With ignoreKingSafety false the result is the legal
// move set.
func PseudoLegalMoves(b board.Board, sq core.Square, ignoreKingSafety bool) []core.Square {
	return Default.Moves(b, sq, ignoreKingSafety)
}

// Moves returns destinations for the piece on sq. Empty squares yield nil.
func (g Generator) Moves(b board.Board, sq core.Square, ignoreKingSafety bool) []core.Square {
	p := b.At(sq)
	if p.IsEmpty() {
		return nil
	}

	var moves []core.Square
	switch p.Kind {
	case core.Pawn:
		moves = pawnMoves(b, sq, p.Color)
	case core.Knight:
		moves = stepMoves(sq, knightOffsets)
	case core.Bishop:
		moves = rayMoves(b, sq, diagonalDirs)
	case core.Rook:
		moves = rayMoves(b, sq, straightDirs)
	case core.Queen:
		moves = rayMoves(b, sq, allDirs)
	case core.King:
		for _, to := range stepMoves(sq, kingOffsets) {
			if ignoreKingSafety || g.Policy == PolicySimulate || !IsAttacked(b, to, p.Color) {
				moves = append(moves, to)
			}
		}
	}

	// Same-color captures are never allowed
	valid := moves[:0]
	for _, to := range moves {
		if target := b.At(to); target.IsEmpty() || target.Color != p.Color {
			valid = append(valid, to)
		}
	}

	if ignoreKingSafety {
		return valid
	}

	if _, ok := b.FindKing(p.Color); !ok {
		return nil
	}

	legal := valid[:0]
	for _, to := range valid {
		if !KingInCheckAfter(Simulate(b, sq, to), p.Color) {
			legal = append(legal, to)
		}
	}
	return legal
}

func pawnMoves(b board.Board, sq core.Square, c core.Color) []core.Square {
	var moves []core.Square
	dir := board.Forward(c)

	if one, ok := sq.Offset(dir, 0); ok && b.IsEmpty(one) {
		moves = append(moves, one)
		if sq.Row() == board.PawnRow(c) {
			if two, ok := sq.Offset(2*dir, 0); ok && b.IsEmpty(two) {
				moves = append(moves, two)
			}
		}
	}

	for _, dc := range []int{-1, 1} {
		to, ok := sq.Offset(dir, dc)
		if !ok {
			continue
		}
		if target := b.At(to); !target.IsEmpty() && target.Color != c {
			moves = append(moves, to)
		}
	}
	return moves
}

func stepMoves(sq core.Square, offsets []offset) []core.Square {
	moves := make([]core.Square, 0, len(offsets))
	for _, o := range offsets {
		if to, ok := sq.Offset(o[0], o[1]); ok {
			moves = append(moves, to)
		}
	}
	return moves
}

// rayMoves walks each direction up to and including the first occupied square
func rayMoves(b board.Board, sq core.Square, dirs []offset) []core.Square {
	var moves []core.Square
	for _, d := range dirs {
		for to, ok := sq.Offset(d[0], d[1]); ok; to, ok = to.Offset(d[0], d[1]) {
			moves = append(moves, to)
			if !b.IsEmpty(to) {
				break
			}
		}
	}
	return moves
}
