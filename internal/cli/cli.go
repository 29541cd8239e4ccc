package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"chessrules/internal/core"
	"chessrules/internal/display"
	"chessrules/internal/game"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdSquare
	CmdMove
	CmdMoves
	CmdBoard
	CmdNew
	CmdResume
	CmdUndo
	CmdColor
	CmdVerbose
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// LineReader is satisfied by *readline.Instance
type LineReader interface {
	Readline() (string, error)
}

// Prompter is implemented by line readers that render their own prompt
type Prompter interface {
	SetPrompt(prompt string)
}

type scannerReader struct {
	s *bufio.Scanner
}

// NewScannerReader adapts a plain reader, used when stdin is not a terminal
func NewScannerReader(r io.Reader) LineReader {
	return &scannerReader{s: bufio.NewScanner(r)}
}

func (r *scannerReader) Readline() (string, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.s.Text(), nil
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg     string
	darkBg      string
	highlightBg string
	selectedBg  string
	lastMoveBg  string
	white       string
	black       string
	reset       string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg:     "\033[48;5;230m", // Beige
		darkBg:      "\033[48;5;94m",  // Brown
		highlightBg: "\033[48;5;114m",
		selectedBg:  "\033[48;5;220m",
		lastMoveBg:  "\033[48;5;180m",
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
	ThemeGreen: {
		lightBg:     "\033[48;5;157m", // Light green
		darkBg:      "\033[48;5;22m",  // Dark green
		highlightBg: "\033[48;5;75m",
		selectedBg:  "\033[48;5;220m",
		lastMoveBg:  "\033[48;5;143m",
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
	ThemeGray: {
		lightBg:     "\033[48;5;251m", // Light gray
		darkBg:      "\033[48;5;240m", // Dark gray
		highlightBg: "\033[48;5;108m",
		selectedBg:  "\033[48;5;178m",
		lastMoveBg:  "\033[48;5;110m",
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
}

var (
	errorColor = color.New(color.FgRed)
	infoColor  = color.New(color.FgGreen)
	turnWhite  = color.New(color.FgHiWhite, color.Bold)
	turnBlack  = color.New(color.FgHiBlack, color.Bold)
)

type CLI struct {
	input   LineReader
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func New(input LineReader, output io.Writer) *CLI {
	return &CLI{
		input:  input,
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand reads and parses one line, EOF and interrupts yield CmdQuit
func (c *CLI) GetCommand() (*Command, error) {
	line, err := c.input.Readline()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return &Command{Type: CmdQuit}, nil
		}
		return nil, err
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return &Command{Type: CmdNone}, nil
	}
	return ParseCommand(input), nil
}

// ParseCommand maps an input line to a command
func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "resume":
		return &Command{Type: CmdResume, Args: args, Raw: input}
	case "moves":
		return &Command{Type: CmdMoves, Args: args}
	case "board", "show":
		return &Command{Type: CmdBoard}
	case "undo", "u":
		return &Command{Type: CmdUndo, Args: args}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "verbose":
		return &Command{Type: CmdVerbose}
	case "history":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit", "q":
		return &Command{Type: CmdQuit}
	}

	// Four algebraic characters without a separator is a from-to move
	if len(cmd) == 4 && !strings.Contains(cmd, ",") {
		return &Command{Type: CmdMove, Args: []string{cmd[:2], cmd[2:]}, Raw: input}
	}
	if len(parts) == 2 && len(parts[0]) == 2 && len(parts[1]) == 2 && !strings.Contains(input, ",") {
		return &Command{Type: CmdMove, Args: []string{strings.ToLower(parts[0]), strings.ToLower(parts[1])}, Raw: input}
	}
	return &Command{Type: CmdSquare, Args: []string{strings.Join(parts, "")}, Raw: input}
}

// ParseTheme resolves a theme name
func ParseTheme(name string) (ColorTheme, error) {
	theme := ColorTheme(strings.ToLower(name))
	if _, ok := themes[theme]; !ok {
		return "", fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", name)
	}
	return theme, nil
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	theme, err := ParseTheme(string(theme))
	if err != nil {
		return err
	}
	c.theme = theme
	return nil
}

func (c *CLI) Theme() ColorTheme {
	return c.theme
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) IsVerbose() bool {
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowInfo(msg string) {
	infoColor.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	errorColor.Fprintf(c.output, "Error: %v\n", err)
}

// ShowPrompt hands the prompt to the line reader when it draws its own
func (c *CLI) ShowPrompt(prompt string) {
	if p, ok := c.input.(Prompter); ok {
		p.SetPrompt(prompt)
		return
	}
	fmt.Fprint(c.output, prompt)
}

// TurnLabel returns the side to move, colored when a theme is active
func (c *CLI) TurnLabel(turn core.Color) string {
	name := "White"
	label := turnWhite
	if turn == core.ColorBlack {
		name = "Black"
		label = turnBlack
	}
	if c.theme == ThemeOff {
		return name
	}
	return label.Sprint(name)
}

// DisplayBoard draws the position with selection, highlight and last-move markers
func (c *CLI) DisplayBoard(s game.State, opts game.Options) {
	c.ShowMessage(c.RenderBoard(s, opts))
}

// RenderBoard returns the board drawing without printing it
func (c *CLI) RenderBoard(s game.State, opts game.Options) string {
	theme := themes[c.theme]
	grid := display.Render(s, opts)

	var sb strings.Builder
	sb.WriteString("\n   a  b  c  d  e  f  g  h\n")

	for r, row := range grid {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for _, cell := range row {
			if c.theme == ThemeOff {
				sb.WriteString(plainCell(cell))
				continue
			}

			bg := theme.darkBg
			switch {
			case cell.Has(display.ClassSelected):
				bg = theme.selectedBg
			case cell.Has(display.ClassHighlighted):
				bg = theme.highlightBg
			case cell.Has(display.ClassLastMove):
				bg = theme.lastMoveBg
			case cell.Has(display.ClassLight):
				bg = theme.lightBg
			}

			if cell.Piece.IsEmpty() {
				sb.WriteString(fmt.Sprintf("%s   %s", bg, theme.reset))
				continue
			}
			fg := theme.black
			if cell.Piece.Color == core.ColorWhite {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s %s %s", bg, fg, cell.Glyph, theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("   a  b  c  d  e  f  g  h\n")

	return sb.String()
}

// plainCell renders a three character cell without escape codes.
// [x] selected, (x) capturable, " * " reachable, <x> last move.
func plainCell(cell display.Cell) string {
	ch := "."
	if !cell.Piece.IsEmpty() {
		ch = display.Letter(cell.Piece)
	}

	switch {
	case cell.Has(display.ClassSelected):
		return "[" + ch + "]"
	case cell.Has(display.ClassHighlighted) && cell.Piece.IsEmpty():
		return " * "
	case cell.Has(display.ClassHighlighted):
		return "(" + ch + ")"
	case cell.Has(display.ClassLastMove):
		return "<" + ch + ">"
	default:
		return " " + ch + " "
	}
}

// ShowMoves lists the destinations of the piece on from
func (c *CLI) ShowMoves(from core.Square, moves []core.Square) {
	if len(moves) == 0 {
		c.ShowMessage(fmt.Sprintf("No moves from %s", from.Algebraic()))
		return
	}
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.Algebraic()
	}
	c.ShowMessage(fmt.Sprintf("Moves from %s: %s", from.Algebraic(), strings.Join(names, " ")))
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  <square>         - Click a square (e2 or row,col such as 6,4)
  <from><to>       - Play a move with two clicks (e.g., e2e4)
  moves <square>   - List the legal destinations of a piece
  board            - Redraw the board
  undo             - Undo the last move
  new              - Start a new game from the initial position
  resume <FEN> [w|b] - Start from a piece placement, White to move by default
  color <theme>    - Set board color theme (off|brown|green|gray)
  verbose          - Toggle click outcome messages
  history          - Show the move list
  quit/exit        - Exit the program
  help/?           - Show this help message

Board markers (theme off):
  [x] selected   (x) capture   *  reachable   <x> last move`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome(label string) {
	c.ShowMessage("Welcome to Chess!")
	if label != "" {
		c.ShowMessage(fmt.Sprintf("Session: %s", label))
	}
	c.ShowMessage("Click squares by name (e2), or type e2e4. 'help' lists commands.")
	c.ShowMessage("")
}

// ShowHistory prints moves paired by turn, starting with whoever moved first
func (c *CLI) ShowHistory(start core.Color, moves []core.Move) {
	if len(moves) == 0 {
		c.ShowMessage("No moves yet.")
		return
	}

	i, n := 0, 1
	if start == core.ColorBlack {
		c.ShowMessage(fmt.Sprintf("%d. ... | %s", n, moves[0]))
		i, n = 1, 2
	}
	for ; i < len(moves); i, n = i+2, n+1 {
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", n, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", n, moves[i]))
		}
	}
}
