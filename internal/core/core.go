package core

import "fmt"

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the long form used by renderers ("white"/"black")
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorBlack:
		return "black"
	default:
		return ""
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w"/"b" and "white"/"black"
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w", "white":
		return ColorWhite, true
	case "b", "black":
		return ColorBlack, true
	}
	return 0, false
}

func (c Color) MarshalText() ([]byte, error) {
	if c != ColorWhite && c != ColorBlack {
		return nil, fmt.Errorf("invalid color %d", c)
	}
	return []byte{byte(c)}, nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", text)
	}
	*c = parsed
	return nil
}

type PieceKind byte

const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// Piece is an immutable value. The zero Piece marks an empty cell.
type Piece struct {
	Kind  PieceKind `json:"kind"`
	Color Color     `json:"color"`
}

func NewPiece(kind PieceKind, color Color) Piece {
	return Piece{Kind: kind, Color: color}
}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoPiece
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}
