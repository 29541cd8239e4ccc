package cli

import (
	"bytes"
	"strings"
	"testing"

	"chessrules/internal/core"
	"chessrules/internal/game"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  CommandType
		args  []string
	}{
		{"e2", CmdSquare, []string{"e2"}},
		{"6,4", CmdSquare, []string{"6,4"}},
		{"6, 4", CmdSquare, []string{"6,4"}},
		{"e2e4", CmdMove, []string{"e2", "e4"}},
		{"E2 E4", CmdMove, []string{"e2", "e4"}},
		{"moves g1", CmdMoves, []string{"g1"}},
		{"undo", CmdUndo, nil},
		{"new", CmdNew, nil},
		{"resume 4k3/8/8/8/8/8/8/4K3 b", CmdResume, []string{"4k3/8/8/8/8/8/8/4K3", "b"}},
		{"color brown", CmdColor, []string{"brown"}},
		{"history", CmdHistory, nil},
		{"?", CmdHelp, nil},
		{"exit", CmdQuit, nil},
		{"   ", CmdNone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			if cmd.Type != tt.want {
				t.Fatalf("type = %d, want %d", cmd.Type, tt.want)
			}
			if len(tt.args) > 0 && strings.Join(cmd.Args, " ") != strings.Join(tt.args, " ") {
				t.Fatalf("args = %v, want %v", cmd.Args, tt.args)
			}
		})
	}
}

func TestGetCommandEOF(t *testing.T) {
	c := New(NewScannerReader(strings.NewReader("e2\n")), &bytes.Buffer{})

	cmd, err := c.GetCommand()
	if err != nil || cmd.Type != CmdSquare {
		t.Fatalf("first = %+v %v", cmd, err)
	}
	cmd, err = c.GetCommand()
	if err != nil || cmd.Type != CmdQuit {
		t.Fatalf("EOF = %+v %v", cmd, err)
	}
}

func TestRenderBoardPlainMarkers(t *testing.T) {
	c := New(NewScannerReader(strings.NewReader("")), &bytes.Buffer{})

	s := game.NewState()
	s = game.Click(s, core.MustSquare(6, 4))
	s = game.Click(s, core.MustSquare(4, 4))
	s = game.Click(s, core.MustSquare(0, 6))

	out := c.RenderBoard(s, game.Options{})
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "   a  b  c  d  e  f  g  h" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "8  r  n  b  q  k  b [n] r  8" {
		t.Fatalf("rank 8 = %q", lines[1])
	}
	if lines[3] != "6  .  .  .  .  .  *  .  *  6" {
		t.Fatalf("rank 6 = %q", lines[3])
	}
	if lines[5] != "4  .  .  .  . <P> .  .  .  4" {
		t.Fatalf("rank 4 = %q", lines[5])
	}
	if lines[7] != "2  P  P  P  P <.> P  P  P  2" {
		t.Fatalf("rank 2 = %q", lines[7])
	}
}

func TestRenderBoardThemed(t *testing.T) {
	c := New(NewScannerReader(strings.NewReader("")), &bytes.Buffer{})
	if err := c.SetTheme(ThemeGreen); err != nil {
		t.Fatal(err)
	}
	if err := c.SetTheme("purple"); err == nil {
		t.Fatal("unknown theme accepted")
	}

	out := c.RenderBoard(game.NewState(), game.Options{})
	if !strings.Contains(out, "♚") || !strings.Contains(out, themes[ThemeGreen].lightBg) {
		t.Fatal("themed board should use glyphs and background colors")
	}
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		name    string
		want    ColorTheme
		wantErr bool
	}{
		{"off", ThemeOff, false},
		{"Brown", ThemeBrown, false},
		{"gray", ThemeGray, false},
		{"purple", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTheme(tt.name)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Fatalf("ParseTheme(%q) = %q, %v", tt.name, got, err)
			}
		})
	}
}

func TestShowHistory(t *testing.T) {
	var buf bytes.Buffer
	c := New(NewScannerReader(strings.NewReader("")), &buf)

	e2e4 := core.Move{From: core.MustSquare(6, 4), To: core.MustSquare(4, 4)}
	d7d5 := core.Move{From: core.MustSquare(1, 3), To: core.MustSquare(3, 3)}
	c.ShowHistory(core.ColorWhite, []core.Move{e2e4, d7d5, e2e4})

	want := "1. e2e4 | d7d5\n2. e2e4 | ...\n"
	if buf.String() != want {
		t.Fatalf("history = %q", buf.String())
	}

	buf.Reset()
	c.ShowHistory(core.ColorBlack, []core.Move{d7d5})
	if buf.String() != "1. ... | d7d5\n" {
		t.Fatalf("black-first history = %q", buf.String())
	}
}

type promptReader struct {
	prompt string
}

func (p *promptReader) Readline() (string, error) { return "", nil }
func (p *promptReader) SetPrompt(s string)        { p.prompt = s }

func TestShowPromptUsesReader(t *testing.T) {
	var buf bytes.Buffer
	r := &promptReader{}
	c := New(r, &buf)
	c.ShowPrompt("[w]> ")
	if r.prompt != "[w]> " || buf.Len() != 0 {
		t.Fatalf("prompt = %q, output = %q", r.prompt, buf.String())
	}
}
