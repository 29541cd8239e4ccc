package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chessrules/internal/storage"
)

func TestDBCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	var out bytes.Buffer

	if err := run(&out, []string{"init", "-path", path}); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := run(&out, []string{"query", "-path", path}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No sessions found") {
		t.Fatalf("empty query output = %q", out.String())
	}

	store, err := storage.NewStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	store.RecordNewSession(storage.SessionRecord{
		SessionID: "0123456789abcdef", Label: "quiet-heron", InitialBoard: "8/8/8/8/8/8/8/8",
		InitialTurn: "w", KingSafety: "premove", StartTimeUTC: time.Now().UTC(),
	})
	store.RecordMove(storage.MoveRecord{
		SessionID: "0123456789abcdef", MoveNumber: 1, MoveUCI: "e2e4", Piece: "P",
		PlayerColor: "w", BoardAfter: "8/8/8/8/4P3/8/8/8", MoveTimeUTC: time.Now().UTC(),
	})
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := run(&out, []string{"query", "-path", path, "-label", "quiet-heron"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "01234567...") || !strings.Contains(out.String(), "Found 1 session(s)") {
		t.Fatalf("query output = %q", out.String())
	}

	out.Reset()
	if err := run(&out, []string{"moves", "-path", path, "-session", "0123456789abcdef"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "e2e4") {
		t.Fatalf("moves output = %q", out.String())
	}

	if err := run(&out, []string{"moves", "-path", path}); err == nil {
		t.Fatal("moves without -session should fail")
	}

	out.Reset()
	if err := run(&out, []string{"delete", "-path", path}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Database deleted") {
		t.Fatalf("delete output = %q", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, nil); err == nil {
		t.Fatal("missing subcommand accepted")
	}
	if err := run(&out, []string{"vacuum"}); err == nil {
		t.Fatal("unknown subcommand accepted")
	}
	if err := run(&out, []string{"init"}); err == nil {
		t.Fatal("missing -path accepted")
	}
}
