package game

import (
	"reflect"
	"slices"
	"testing"

	"chessrules/internal/board"
	"chessrules/internal/core"
)

func sq(row, col int) core.Square {
	return core.MustSquare(row, col)
}

func TestSelectOnlyOwnPieces(t *testing.T) {
	s := NewState()

	next, out := s.Click(sq(1, 0), Options{})
	if out != OutcomeIgnored || next.Selected != nil {
		t.Fatalf("clicking a black pawn on White's turn: %v %v", out, next.Selected)
	}

	next, out = s.Click(sq(4, 4), Options{})
	if out != OutcomeIgnored || next.Selected != nil {
		t.Fatalf("clicking an empty square: %v %v", out, next.Selected)
	}

	next, out = s.Click(sq(6, 4), Options{})
	if out != OutcomeSelected || next.Selected == nil || *next.Selected != sq(6, 4) {
		t.Fatalf("clicking a white pawn: %v %v", out, next.Selected)
	}
}

func TestClickSelectedSquareDeselects(t *testing.T) {
	s := Click(NewState(), sq(6, 4))
	next, out := s.Click(sq(6, 4), Options{})
	if out != OutcomeDeselected || next.Selected != nil {
		t.Fatalf("got %v %v", out, next.Selected)
	}
	if next.Turn != core.ColorWhite {
		t.Fatal("deselect must not change turn")
	}
}

func TestNonHighlightedClickDeselects(t *testing.T) {
	s := Click(NewState(), sq(6, 4))

	tests := []struct {
		name string
		sq   core.Square
	}{
		{"unreachable empty square", sq(3, 4)},
		{"enemy piece out of reach", sq(1, 4)},
		{"another own piece", sq(6, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, out := s.Click(tt.sq, Options{})
			if out != OutcomeDeselected || next.Selected != nil {
				t.Fatalf("got %v %v", out, next.Selected)
			}
			if next.Turn != s.Turn || next.MoveCount() != 0 {
				t.Fatal("rejected click changed the game")
			}
			if next.Board != s.Board {
				t.Fatal("rejected click changed the board")
			}
		})
	}
}

func TestReselectOwnPieceOption(t *testing.T) {
	opts := Options{ReselectOwnPiece: true}
	s, _ := NewState().Click(sq(6, 4), opts)

	next, out := s.Click(sq(6, 3), opts)
	if out != OutcomeSelected || next.Selected == nil || *next.Selected != sq(6, 3) {
		t.Fatalf("expected selection to switch to d2: %v %v", out, next.Selected)
	}

	next, out = s.Click(sq(1, 3), opts)
	if out != OutcomeDeselected {
		t.Fatalf("enemy piece should still deselect: %v", out)
	}
}

func TestMoveFlipsTurnAndRecordsSnapshot(t *testing.T) {
	start := NewState()
	s := Click(start, sq(6, 4))
	s, out := s.Click(sq(4, 4), Options{})

	if out != OutcomeMoved {
		t.Fatalf("expected move, got %v", out)
	}
	if s.Turn != core.ColorBlack {
		t.Fatalf("turn = %v", s.Turn)
	}
	if s.Selected != nil {
		t.Fatal("selection should be cleared after a move")
	}
	if s.LastMove == nil || *s.LastMove != (core.Move{From: sq(6, 4), To: sq(4, 4)}) {
		t.Fatalf("last move = %v", s.LastMove)
	}
	if len(s.History) != 1 {
		t.Fatalf("history length = %d", len(s.History))
	}
	snap := s.History[0]
	if snap.Board != start.Board || snap.Turn != core.ColorWhite || snap.LastMove != nil {
		t.Fatal("snapshot must hold the pre-move position")
	}
}

func TestEndToEndOpening(t *testing.T) {
	s := NewState()
	for _, click := range []core.Square{sq(6, 4), sq(4, 4), sq(1, 3), sq(3, 3)} {
		s = Click(s, click)
	}

	want := core.Move{From: sq(1, 3), To: sq(3, 3)}
	if s.LastMove == nil || *s.LastMove != want {
		t.Fatalf("last move = %v, want %v", s.LastMove, want)
	}
	if s.Turn != core.ColorWhite {
		t.Fatalf("turn = %v", s.Turn)
	}
	if !s.Board.IsEmpty(sq(6, 4)) || !s.Board.IsEmpty(sq(1, 3)) {
		t.Fatal("source squares should be empty")
	}
	if s.Board.At(sq(4, 4)) != core.NewPiece(core.Pawn, core.ColorWhite) {
		t.Fatalf("e4 holds %v", s.Board.At(sq(4, 4)))
	}
	if s.Board.At(sq(3, 3)) != core.NewPiece(core.Pawn, core.ColorBlack) {
		t.Fatalf("d5 holds %v", s.Board.At(sq(3, 3)))
	}

	moves := s.Moves()
	if len(moves) != 2 || moves[0].String() != "e2e4" || moves[1].String() != "d7d5" {
		t.Fatalf("moves = %v", moves)
	}
}

func TestUndoRestoresInitialState(t *testing.T) {
	initial := NewState()
	clicks := []core.Square{
		sq(6, 4), sq(4, 4), // e2e4
		sq(1, 3), sq(3, 3), // d7d5
		sq(4, 4), sq(3, 3), // exd5
		sq(0, 3), sq(3, 3), // Qxd5
		sq(7, 6), sq(5, 5), // Nf3
	}

	s := initial
	moves := 0
	for _, c := range clicks {
		var out Outcome
		s, out = s.Click(c, Options{})
		if out == OutcomeMoved {
			moves++
		}
	}
	if moves != 5 || s.MoveCount() != 5 {
		t.Fatalf("expected 5 accepted moves, got %d (history %d)", moves, s.MoveCount())
	}

	for i := 0; i < moves; i++ {
		var ok bool
		s, ok = s.Undo()
		if !ok {
			t.Fatalf("undo %d failed", i+1)
		}
	}

	if !reflect.DeepEqual(s, initial) {
		t.Fatalf("state not restored: %+v", s)
	}
}

func TestUndoOnEmptyHistory(t *testing.T) {
	s := Click(NewState(), sq(6, 0))
	next, ok := s.Undo()
	if ok {
		t.Fatal("undo on empty history should report false")
	}
	if next.Board != s.Board || next.Turn != s.Turn || next.Selected != nil {
		t.Fatal("undo on empty history changed state or kept selection")
	}
}

func TestUndoClearsSelection(t *testing.T) {
	s := Click(Click(NewState(), sq(6, 4)), sq(4, 4))
	s = Click(s, sq(1, 4))
	if s.Selected == nil {
		t.Fatal("precondition: black pawn selected")
	}
	s = Undo(s)
	if s.Selected != nil || s.Turn != core.ColorWhite || s.MoveCount() != 0 {
		t.Fatal("undo should restore White to move with no selection")
	}
}

func TestEarlierStatesAreUnaffected(t *testing.T) {
	base := Click(Click(NewState(), sq(6, 4)), sq(4, 4))

	a := Click(Click(base, sq(1, 0)), sq(2, 0))
	b := Click(Click(base, sq(1, 7)), sq(3, 7))

	if base.MoveCount() != 1 || a.MoveCount() != 2 || b.MoveCount() != 2 {
		t.Fatal("history lengths diverged unexpectedly")
	}
	if a.History[1].Board != b.History[1].Board {
		t.Fatal("branches should share the same pre-move snapshot")
	}
	if a.Board == b.Board {
		t.Fatal("branches should differ")
	}
	undone := Undo(a)
	if undone.Board != base.Board {
		t.Fatal("undo of branch a should return to base")
	}
}

func TestPossibleMovesRespectsTurn(t *testing.T) {
	s := NewState()
	if moves := PossibleMoves(s, sq(1, 4)); len(moves) != 0 {
		t.Fatalf("black pawn on White's turn: %v", moves)
	}
	if moves := PossibleMoves(s, sq(5, 5)); len(moves) != 0 {
		t.Fatalf("empty square: %v", moves)
	}
	knight := PossibleMoves(s, sq(7, 6))
	if len(knight) != 2 || !slices.Contains(knight, sq(5, 5)) || !slices.Contains(knight, sq(5, 7)) {
		t.Fatalf("g1 knight moves = %v", knight)
	}
}

func TestPinnedPieceNotHighlighted(t *testing.T) {
	b, err := board.ParseFEN("7k/8/8/8/K2B3r/8/8/8")
	if err != nil {
		t.Fatal(err)
	}
	g := NewFrom(b, core.ColorWhite, Options{})
	if g.Click(sq(4, 3)) != OutcomeSelected {
		t.Fatal("bishop should be selectable")
	}
	if len(g.Highlighted()) != 0 {
		t.Fatalf("pinned bishop highlighted %v", g.Highlighted())
	}
	if g.Click(sq(3, 2)) != OutcomeDeselected {
		t.Fatal("exposing move must be rejected")
	}
	if g.Turn() != core.ColorWhite {
		t.Fatal("turn changed after rejected move")
	}
}

func TestGameController(t *testing.T) {
	g := New(Options{})
	g.Click(sq(6, 4))
	if out := g.Click(sq(4, 4)); out != OutcomeMoved {
		t.Fatalf("outcome = %v", out)
	}
	if g.MoveCount() != 1 || g.Turn() != core.ColorBlack {
		t.Fatal("controller did not record the move")
	}
	if !g.Undo() || g.MoveCount() != 0 {
		t.Fatal("controller undo failed")
	}
	if g.Undo() {
		t.Fatal("second undo should be a no-op")
	}

	resumed := Resume(g.State(), Options{})
	if resumed.Board() != board.Initial() {
		t.Fatal("resume lost the board")
	}
}
