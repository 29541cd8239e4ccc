package rules

import (
	"chessrules/internal/board"
	"chessrules/internal/core"
)

// Simulate returns a new board with the piece on from moved to to
func Simulate(b board.Board, from, to core.Square) board.Board {
	return b.WithMove(from, to)
}

// KingInCheckAfter reports whether color's king is attacked on b. A board
// without that king counts as safe.
func KingInCheckAfter(b board.Board, color core.Color) bool {
	king, ok := b.FindKing(color)
	if !ok {
		return false
	}
	return IsAttacked(b, king, color)
}

// LegalMoves is Moves with king safety enforced
func (g Generator) LegalMoves(b board.Board, sq core.Square) []core.Square {
	return g.Moves(b, sq, false)
}

// IsLegal reports whether moving from→to is among the legal moves of the piece on from
func (g Generator) IsLegal(b board.Board, m core.Move) bool {
	for _, to := range g.LegalMoves(b, m.From) {
		if to == m.To {
			return true
		}
	}
	return false
}
