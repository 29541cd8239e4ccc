package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const BoardSize = 8

// Square is a board coordinate. Values outside 0..7 cannot be built from
// outside this package; use NewSquare or ParseSquare.
type Square struct {
	row uint8
	col uint8
}

// NewSquare returns the square at row/col or ErrSquareOutOfRange
func NewSquare(row, col int) (Square, error) {
	if !OnBoard(row, col) {
		return Square{}, fmt.Errorf("%w: (%d,%d)", ErrSquareOutOfRange, row, col)
	}
	return Square{row: uint8(row), col: uint8(col)}, nil
}

// MustSquare panics on out-of-range input. Intended for literals and tests.
func MustSquare(row, col int) Square {
	sq, err := NewSquare(row, col)
	if err != nil {
		panic(err)
	}
	return sq
}

func OnBoard(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func (s Square) Row() int { return int(s.row) }
func (s Square) Col() int { return int(s.col) }

// Offset returns the square dr rows and dc columns away, false if off-board
func (s Square) Offset(dr, dc int) (Square, bool) {
	r, c := int(s.row)+dr, int(s.col)+dc
	if !OnBoard(r, c) {
		return Square{}, false
	}
	return Square{row: uint8(r), col: uint8(c)}, true
}

// Algebraic returns file+rank notation. Row 0 is rank 8.
func (s Square) Algebraic() string {
	return fmt.Sprintf("%c%c", 'a'+s.col, '8'-s.row)
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.row, s.col)
}

// ParseSquare accepts algebraic ("e2") or "row,col" ("6,4")
func ParseSquare(text string) (Square, error) {
	text = strings.TrimSpace(strings.ToLower(text))

	if row, col, ok := strings.Cut(text, ","); ok {
		r, err := strconv.Atoi(strings.TrimSpace(row))
		if err != nil {
			return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, text)
		}
		c, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil {
			return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, text)
		}
		return NewSquare(r, c)
	}

	if len(text) != 2 || text[0] < 'a' || text[0] > 'h' || text[1] < '1' || text[1] > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, text)
	}
	return Square{row: uint8('8' - text[1]), col: uint8(text[0] - 'a')}, nil
}

type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m Move) String() string {
	return m.From.Algebraic() + m.To.Algebraic()
}

// squareJSON is the wire form {"row":r,"col":c}
type squareJSON struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"row":%d,"col":%d}`, s.row, s.col)), nil
}

func (s *Square) UnmarshalJSON(data []byte) error {
	var raw squareJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sq, err := NewSquare(raw.Row, raw.Col)
	if err != nil {
		return err
	}
	*s = sq
	return nil
}
