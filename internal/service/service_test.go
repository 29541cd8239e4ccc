package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chessrules/internal/checkpoint"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/storage"
)

var testSecret = []byte("test-secret-minimum-32-characters-long")

func sq(row, col int) core.Square {
	return core.MustSquare(row, col)
}

func newService(t *testing.T, cfg Config, store *storage.Store, cp *checkpoint.Store) *Service {
	t.Helper()
	svc, err := New(cfg, store, cp)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return svc
}

func clickAll(t *testing.T, svc *Service, squares ...core.Square) {
	t.Helper()
	for _, s := range squares {
		if _, err := svc.Click(s); err != nil {
			t.Fatalf("Click(%v): %v", s, err)
		}
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{}, true},
		{"simulate", Config{KingSafety: "simulate"}, true},
		{"unknown policy", Config{KingSafety: "strict"}, false},
		{"short secret", Config{TokenSecret: []byte("short")}, false},
		{"negative ttl", Config{TokenTTL: -time.Second}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil, nil)
			if (err == nil) != tt.ok {
				t.Fatalf("New err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestNoSessionBeforeStart(t *testing.T) {
	svc := newService(t, Config{}, nil, nil)
	if _, err := svc.Click(sq(6, 4)); !errors.Is(err, core.ErrNoSession) {
		t.Fatalf("Click err = %v", err)
	}
	if _, err := svc.Snapshot(); !errors.Is(err, core.ErrNoSession) {
		t.Fatalf("Snapshot err = %v", err)
	}
}

func TestPlayAndUndo(t *testing.T) {
	svc := newService(t, Config{}, nil, nil)
	info, restored, err := svc.Start()
	if err != nil || restored {
		t.Fatalf("Start = %v %v", restored, err)
	}
	if info.ID == "" || info.Label == "" {
		t.Fatalf("info = %+v", info)
	}

	out, err := svc.Click(sq(6, 4))
	if err != nil || out != game.OutcomeSelected {
		t.Fatalf("select = %v %v", out, err)
	}
	out, _ = svc.Click(sq(4, 4))
	if out != game.OutcomeMoved {
		t.Fatalf("move = %v", out)
	}

	snap, _ := svc.Snapshot()
	if snap.State.Turn != core.ColorBlack || snap.State.MoveCount() != 1 {
		t.Fatal("move not applied")
	}

	ok, err := svc.Undo()
	if err != nil || !ok {
		t.Fatalf("Undo = %v %v", ok, err)
	}
	ok, _ = svc.Undo()
	if ok {
		t.Fatal("second undo should report false")
	}
}

func TestPossibleMovesNeverNil(t *testing.T) {
	svc := newService(t, Config{}, nil, nil)
	svc.Start()

	moves, err := svc.PossibleMoves(sq(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if moves == nil || len(moves) != 0 {
		t.Fatalf("empty square moves = %#v", moves)
	}

	moves, _ = svc.PossibleMoves(sq(6, 4))
	if len(moves) != 2 {
		t.Fatalf("e2 moves = %v", moves)
	}
}

func TestNewSessionFromPlacement(t *testing.T) {
	svc := newService(t, Config{}, nil, nil)

	if _, err := svc.NewSession(core.NewSessionRequest{Board: "bad"}); !errors.Is(err, core.ErrInvalidBoard) {
		t.Fatalf("bad board err = %v", err)
	}

	info, err := svc.NewSession(core.NewSessionRequest{Board: "4k3/8/8/8/8/8/8/4K3", Turn: "b"})
	if err != nil {
		t.Fatal(err)
	}
	snap, _ := svc.Snapshot()
	if snap.ID != info.ID || snap.State.Turn != core.ColorBlack {
		t.Fatalf("snapshot = %+v", snap.SessionInfo)
	}
	if snap.State.Board.At(sq(0, 4)).Kind != core.King {
		t.Fatal("placement not applied")
	}
}

func TestCheckpointRestore(t *testing.T) {
	dir := t.TempDir()
	cp, err := checkpoint.Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	svc, err := New(Config{}, nil, cp)
	if err != nil {
		t.Fatal(err)
	}
	first, _, _ := svc.Start()
	clickAll(t, svc, sq(6, 4), sq(4, 4), sq(1, 4))
	if err := svc.Shutdown(time.Second); err != nil {
		t.Fatal(err)
	}

	cp, err = checkpoint.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	resumed := newService(t, Config{}, nil, cp)
	info, restored, err := resumed.Start()
	if err != nil || !restored {
		t.Fatalf("Start = %v %v", restored, err)
	}
	if info != first {
		t.Fatalf("restored %+v, want %+v", info, first)
	}

	snap, _ := resumed.Snapshot()
	if snap.State.MoveCount() != 1 || snap.State.Turn != core.ColorBlack {
		t.Fatal("position not restored")
	}
	if snap.State.Selected != nil {
		t.Fatal("selection must not survive a restart")
	}
}

func TestMoveLogRecorded(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "log.db"), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatal(err)
	}

	svc := newService(t, Config{}, store, nil)
	info, _, _ := svc.Start()
	clickAll(t, svc, sq(6, 4), sq(4, 4), sq(1, 3), sq(3, 3))
	svc.Undo()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.QuerySessions(info.ID, "")
	if err != nil || len(sessions) != 1 {
		t.Fatalf("sessions = %v %v", sessions, err)
	}
	moves, err := store.QueryMoves(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 1 || moves[0].MoveUCI != "e2e4" || moves[0].Piece != "P" || moves[0].PlayerColor != "w" {
		t.Fatalf("moves = %+v", moves)
	}
	if svc.GetStorageHealth() != "ok" {
		t.Fatalf("health = %s", svc.GetStorageHealth())
	}
}

func TestRegisterWait(t *testing.T) {
	svc := newService(t, Config{WaitTimeout: time.Minute}, nil, nil)
	svc.Start()

	ready, err := svc.RegisterWait(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-ready:
	default:
		t.Fatal("stale move count should return immediately")
	}

	ch, _ := svc.RegisterWait(context.Background(), 0)
	clickAll(t, svc, sq(6, 4), sq(4, 4))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by move")
	}
}

func TestTokens(t *testing.T) {
	plain := newService(t, Config{}, nil, nil)
	if plain.AuthEnabled() {
		t.Fatal("auth should be disabled without a secret")
	}
	if _, err := plain.IssueToken(SessionInfo{ID: "x"}); !errors.Is(err, ErrAuthDisabled) {
		t.Fatalf("IssueToken err = %v", err)
	}

	svc := newService(t, Config{TokenSecret: testSecret}, nil, nil)
	info, _, _ := svc.Start()
	token, err := svc.IssueToken(info)
	if err != nil {
		t.Fatal(err)
	}
	id, _, err := svc.ValidateToken(token)
	if err != nil || id != info.ID {
		t.Fatalf("ValidateToken = %q %v", id, err)
	}
	if err := svc.Authorize(id); err != nil {
		t.Fatal(err)
	}

	svc.NewSession(core.NewSessionRequest{})
	if err := svc.Authorize(id); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stale token Authorize = %v", err)
	}
}

func TestScopedMutationsRejectReplacedSession(t *testing.T) {
	svc := newService(t, Config{}, nil, nil)
	old, _, _ := svc.Start()
	if _, err := svc.ClickAs(old.ID, sq(6, 4)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ClickAs(old.ID, sq(4, 4)); err != nil {
		t.Fatal(err)
	}

	current, err := svc.NewSession(core.NewSessionRequest{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ClickAs(old.ID, sq(6, 3)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ClickAs with replaced session = %v", err)
	}
	if _, err := svc.UndoAs(old.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("UndoAs with replaced session = %v", err)
	}
	snap, _ := svc.Snapshot()
	if snap.State.Selected != nil || snap.State.MoveCount() != 0 {
		t.Fatalf("replaced session changed the new game: %+v", snap.State)
	}

	if out, err := svc.ClickAs(current.ID, sq(6, 3)); err != nil || out != game.OutcomeSelected {
		t.Fatalf("ClickAs with active session = %v, %v", out, err)
	}
	if ok, err := svc.UndoAs(current.ID); err != nil || ok {
		t.Fatalf("UndoAs on empty history = %v, %v", ok, err)
	}
}

func TestView(t *testing.T) {
	svc := newService(t, Config{}, nil, nil)
	svc.Start()
	clickAll(t, svc, sq(6, 4), sq(4, 4), sq(1, 4))

	snap, _ := svc.Snapshot()
	v := View(snap, "selected")
	if v.Turn != "b" || v.MoveCount != 1 || v.Outcome != "selected" {
		t.Fatalf("view = %+v", v)
	}
	if v.LastMove == nil || v.LastMove.UCI != "e2e4" {
		t.Fatalf("last move = %+v", v.LastMove)
	}
	if v.Selected == nil || *v.Selected != sq(1, 4) {
		t.Fatal("selection missing from view")
	}
	if len(v.Cells) != 8 || v.Cells[1][4].Glyph != "♟" || v.Cells[1][4].Color != "black" {
		t.Fatalf("cells = %+v", v.Cells[1][4])
	}
}
