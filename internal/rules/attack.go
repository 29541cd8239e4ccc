package rules

import (
	"slices"

	"chessrules/internal/board"
	"chessrules/internal/core"
)

// IsAttacked reports whether any piece whose color differs from
// byColorOtherThan can reach sq, king safety ignored.
func IsAttacked(b board.Board, sq core.Square, byColorOtherThan core.Color) bool {
	for from, p := range b.Occupied() {
		if p.Color == byColorOtherThan {
			continue
		}
		if slices.Contains(Default.Moves(b, from, true), sq) {
			return true
		}
	}
	return false
}
