package board

import (
	"iter"

	"chessrules/internal/core"
)

// Board is an 8x8 grid of pieces. It is a plain value: assignment copies
// every cell, so snapshots need no clone logic.
type Board struct {
	squares [core.BoardSize][core.BoardSize]core.Piece
}

var backRank = [core.BoardSize]core.PieceKind{
	core.Rook, core.Knight, core.Bishop, core.Queen,
	core.King, core.Bishop, core.Knight, core.Rook,
}

// Initial returns the standard starting layout. Row 0 is Black's back rank.
func Initial() Board {
	var b Board
	for c := 0; c < core.BoardSize; c++ {
		b.squares[0][c] = core.NewPiece(backRank[c], core.ColorBlack)
		b.squares[1][c] = core.NewPiece(core.Pawn, core.ColorBlack)
		b.squares[6][c] = core.NewPiece(core.Pawn, core.ColorWhite)
		b.squares[7][c] = core.NewPiece(backRank[c], core.ColorWhite)
	}
	return b
}

// PawnRow returns the row a color's pawns start on
func PawnRow(c core.Color) int {
	if c == core.ColorWhite {
		return 6
	}
	return 1
}

// Forward returns the row delta a color's pawns advance by
func Forward(c core.Color) int {
	if c == core.ColorWhite {
		return -1
	}
	return 1
}

func (b Board) At(sq core.Square) core.Piece {
	return b.squares[sq.Row()][sq.Col()]
}

func (b Board) IsEmpty(sq core.Square) bool {
	return b.At(sq).IsEmpty()
}

// With returns a copy of b with p placed on sq (the zero Piece clears it)
func (b Board) With(sq core.Square, p core.Piece) Board {
	b.squares[sq.Row()][sq.Col()] = p
	return b
}

// WithMove returns a copy of b with the piece on from moved to to and from cleared
func (b Board) WithMove(from, to core.Square) Board {
	p := b.At(from)
	b.squares[from.Row()][from.Col()] = core.Piece{}
	b.squares[to.Row()][to.Col()] = p
	return b
}

// Occupied yields every non-empty square in row-major order
func (b Board) Occupied() iter.Seq2[core.Square, core.Piece] {
	return func(yield func(core.Square, core.Piece) bool) {
		for r := 0; r < core.BoardSize; r++ {
			for c := 0; c < core.BoardSize; c++ {
				p := b.squares[r][c]
				if p.IsEmpty() {
					continue
				}
				if !yield(core.MustSquare(r, c), p) {
					return
				}
			}
		}
	}
}

// FindKing returns the first king of color c in row-major order
func (b Board) FindKing(c core.Color) (core.Square, bool) {
	king := core.NewPiece(core.King, c)
	for sq, p := range b.Occupied() {
		if p == king {
			return sq, true
		}
	}
	return core.Square{}, false
}
