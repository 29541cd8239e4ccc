package core

// Request types

type NewSessionRequest struct {
	Board string `json:"board,omitempty" validate:"omitempty,max=100"` // FEN piece placement
	Turn  string `json:"turn,omitempty" validate:"omitempty,oneof=w b"`
}

type ClickRequest struct {
	Row *int `json:"row" validate:"required,min=0,max=7"`
	Col *int `json:"col" validate:"required,min=0,max=7"`
}

// Response types

type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Label     string `json:"label"`
	Token     string `json:"token,omitempty"`
}

type GameView struct {
	SessionID string      `json:"sessionId"`
	Label     string      `json:"label"`
	Turn      string      `json:"turn"` // "w" or "b"
	MoveCount int         `json:"moveCount"`
	LastMove  *MoveInfo   `json:"lastMove,omitempty"`
	Selected  *Square     `json:"selected,omitempty"`
	Outcome   string      `json:"outcome,omitempty"`
	Cells     [][]CellDTO `json:"cells"`
}

type MoveInfo struct {
	From Square `json:"from"`
	To   Square `json:"to"`
	UCI  string `json:"uci"`
}

type CellDTO struct {
	Glyph   string   `json:"glyph,omitempty"`
	Color   string   `json:"color,omitempty"`
	Classes []string `json:"classes"`
}

type MovesResponse struct {
	From  Square   `json:"from"`
	Moves []Square `json:"moves"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
