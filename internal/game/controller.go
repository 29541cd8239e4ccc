package game

import (
	"chessrules/internal/board"
	"chessrules/internal/core"
)

// Game owns a single State and the options it is played under
type Game struct {
	state State
	opts  Options
}

func New(opts Options) *Game {
	return &Game{state: NewState(), opts: opts}
}

// NewFrom starts a game from an arbitrary position
func NewFrom(b board.Board, turn core.Color, opts Options) *Game {
	return &Game{state: NewStateFrom(b, turn), opts: opts}
}

// Resume continues from a previously saved state
func Resume(s State, opts Options) *Game {
	s.Selected = nil
	return &Game{state: s, opts: opts}
}

func (g *Game) State() State {
	return g.state
}

func (g *Game) Options() Options {
	return g.opts
}

func (g *Game) Board() board.Board {
	return g.state.Board
}

func (g *Game) Turn() core.Color {
	return g.state.Turn
}

func (g *Game) LastMove() *core.Move {
	return g.state.LastMove
}

func (g *Game) Selected() *core.Square {
	return g.state.Selected
}

func (g *Game) MoveCount() int {
	return g.state.MoveCount()
}

func (g *Game) Click(sq core.Square) Outcome {
	var out Outcome
	g.state, out = g.state.Click(sq, g.opts)
	return out
}

func (g *Game) Undo() bool {
	var ok bool
	g.state, ok = g.state.Undo()
	return ok
}

func (g *Game) PossibleMoves(sq core.Square) []core.Square {
	return g.state.PossibleMoves(sq, g.opts)
}

func (g *Game) Highlighted() []core.Square {
	return g.state.Highlighted(g.opts)
}

func (g *Game) Moves() []core.Move {
	return g.state.Moves()
}
