package board

import (
	"fmt"
	"strings"

	"chessrules/internal/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
)

var kindLetters = map[core.PieceKind]byte{
	core.Pawn:   'p',
	core.Knight: 'n',
	core.Bishop: 'b',
	core.Rook:   'r',
	core.Queen:  'q',
	core.King:   'k',
}

// Letter returns the FEN letter for p: uppercase White, lowercase Black, 0 if empty
func Letter(p core.Piece) byte {
	l, ok := kindLetters[p.Kind]
	if !ok {
		return 0
	}
	if p.Color == core.ColorWhite {
		return l - 'a' + 'A'
	}
	return l
}

func pieceFromLetter(ch rune) (core.Piece, bool) {
	color := core.ColorBlack
	lower := ch
	if ch >= 'A' && ch <= 'Z' {
		color = core.ColorWhite
		lower = ch - 'A' + 'a'
	}
	for kind, l := range kindLetters {
		if rune(l) == lower {
			return core.NewPiece(kind, color), true
		}
	}
	return core.Piece{}, false
}

// ParseFEN reads the piece-placement field of a FEN string. Ranks are listed
// from row 0 (Black's back rank) to row 7. Extra FEN fields are ignored.
func ParseFEN(fen string) (Board, error) {
	var b Board

	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return b, fmt.Errorf("%w: empty FEN", core.ErrInvalidBoard)
	}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != core.BoardSize {
		return b, fmt.Errorf("%w: expected 8 ranks, got %d", core.ErrInvalidBoard, len(ranks))
	}

	for r := 0; r < core.BoardSize; r++ {
		file := 0
		for _, ch := range ranks[r] {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= core.BoardSize {
				return b, fmt.Errorf("%w: too many pieces in rank %d", core.ErrInvalidBoard, r+1)
			}
			p, ok := pieceFromLetter(ch)
			if !ok {
				return b, fmt.Errorf("%w: unknown piece %q", core.ErrInvalidBoard, ch)
			}
			b.squares[r][file] = p
			file++
		}
		if file != core.BoardSize {
			return b, fmt.Errorf("%w: rank %d has %d files", core.ErrInvalidBoard, r+1, file)
		}
	}

	return b, nil
}

// FEN returns the piece-placement field for b
func (b Board) FEN() string {
	var sb strings.Builder
	for r := 0; r < core.BoardSize; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < core.BoardSize; c++ {
			p := b.squares[r][c]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(Letter(p))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

func (b Board) MarshalText() ([]byte, error) {
	return []byte(b.FEN()), nil
}

func (b *Board) UnmarshalText(text []byte) error {
	parsed, err := ParseFEN(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ToASCII creates an ASCII representation of the board
func (b Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < core.BoardSize; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < core.BoardSize; f++ {
			piece := b.squares[r][f]
			if piece.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", Letter(piece)))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
