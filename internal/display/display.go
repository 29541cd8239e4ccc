// Package display maps game state to renderable cells shared by the HTTP
// view and the terminal client.
package display

import (
	"slices"

	"chessrules/internal/board"
	"chessrules/internal/core"
	"chessrules/internal/game"
)

// Cell classes
const (
	ClassLight       = "light"
	ClassDark        = "dark"
	ClassHighlighted = "highlighted"
	ClassSelected    = "selected"
	ClassLastMove    = "last-move"
)

// Glyphs are the same figurine for both colors, color is carried separately
var glyphs = map[core.PieceKind]string{
	core.Pawn:   "♟",
	core.Rook:   "♜",
	core.Knight: "♞",
	core.Bishop: "♝",
	core.Queen:  "♛",
	core.King:   "♚",
}

// Glyph returns the figurine for a piece, or "" for an empty square
func Glyph(p core.Piece) string {
	return glyphs[p.Kind]
}

// Letter returns the FEN letter for a piece, or "" for an empty square
func Letter(p core.Piece) string {
	if p.IsEmpty() {
		return ""
	}
	return string(board.Letter(p))
}

type Cell struct {
	Square  core.Square
	Piece   core.Piece
	Glyph   string
	Color   string
	Classes []string
}

// Has reports whether the cell carries the given class
func (c Cell) Has(class string) bool {
	return slices.Contains(c.Classes, class)
}

// IsLight reports the square shade, a1 is dark
func IsLight(sq core.Square) bool {
	return (sq.Row()+sq.Col())%2 == 0
}

// IsLastMove reports whether sq is the source or destination of the last move
func IsLastMove(s game.State, sq core.Square) bool {
	return s.LastMove != nil && (s.LastMove.From == sq || s.LastMove.To == sq)
}

// Render produces an 8x8 grid, row 0 first
func Render(s game.State, opts game.Options) [][]Cell {
	highlighted := s.Highlighted(opts)
	grid := make([][]Cell, core.BoardSize)
	for r := range core.BoardSize {
		grid[r] = make([]Cell, core.BoardSize)
		for c := range core.BoardSize {
			sq := core.MustSquare(r, c)
			p := s.Board.At(sq)
			cell := Cell{Square: sq, Piece: p, Glyph: Glyph(p)}
			if !p.IsEmpty() {
				cell.Color = p.Color.Name()
			}

			if IsLight(sq) {
				cell.Classes = append(cell.Classes, ClassLight)
			} else {
				cell.Classes = append(cell.Classes, ClassDark)
			}
			if slices.Contains(highlighted, sq) {
				cell.Classes = append(cell.Classes, ClassHighlighted)
			}
			if s.Selected != nil && *s.Selected == sq {
				cell.Classes = append(cell.Classes, ClassSelected)
			}
			if IsLastMove(s, sq) {
				cell.Classes = append(cell.Classes, ClassLastMove)
			}
			grid[r][c] = cell
		}
	}
	return grid
}
