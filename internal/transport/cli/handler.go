package cli

import (
	"errors"
	"fmt"
	"strings"

	"chessrules/internal/cli"
	"chessrules/internal/core"
	"chessrules/internal/game"
	"chessrules/internal/service"
	"chessrules/internal/transport"
)

type CLIHandler struct {
	svc  *service.Service
	view transport.View
}

func New(svc *service.Service, view transport.View) *CLIHandler {
	return &CLIHandler{
		svc:  svc,
		view: view,
	}
}

// Run reads and executes commands until quit or input ends
func (h *CLIHandler) Run() error {
	h.showBoard()
	for {
		h.view.ShowPrompt(h.getPrompt())

		cmd, err := h.view.GetCommand()
		if err != nil {
			return err
		}

		if !h.ProcessCommand(cmd) {
			return nil
		}
	}
}

// getPrompt shows the side to move and the selected square
func (h *CLIHandler) getPrompt() string {
	snap, err := h.svc.Snapshot()
	if err != nil {
		return "> "
	}
	if sel := snap.State.Selected; sel != nil {
		return fmt.Sprintf("[%s %s]> ", snap.State.Turn, sel.Algebraic())
	}
	return fmt.Sprintf("[%s]> ", snap.State.Turn)
}

// ProcessCommand handles one command, returning false to exit
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:

	case cli.CmdSquare:
		sq, err := core.ParseSquare(cmd.Args[0])
		if err != nil {
			h.view.ShowError(fmt.Errorf("unknown command or square %q, type 'help'", cmd.Raw))
			return true
		}
		h.click(sq)

	case cli.CmdMove:
		from, err := core.ParseSquare(cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		to, err := core.ParseSquare(cmd.Args[1])
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		h.playMove(core.Move{From: from, To: to})

	case cli.CmdMoves:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: moves <square>")
			return true
		}
		sq, err := core.ParseSquare(strings.Join(cmd.Args, ""))
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		moves, err := h.svc.PossibleMoves(sq)
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMoves(sq, moves)

	case cli.CmdBoard:
		h.showBoard()

	case cli.CmdNew:
		h.startSession(core.NewSessionRequest{})

	case cli.CmdResume:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: resume <FEN placement> [w|b]")
			return true
		}
		req := core.NewSessionRequest{Board: cmd.Args[0]}
		if len(cmd.Args) > 1 {
			req.Turn = cmd.Args[1]
		}
		h.startSession(req)

	case cli.CmdUndo:
		ok, err := h.svc.Undo()
		switch {
		case err != nil:
			h.view.ShowError(err)
		case !ok:
			h.view.ShowMessage("Nothing to undo")
		default:
			h.view.ShowInfo("Move undone")
			h.showBoard()
		}

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		theme := cli.ColorTheme(cmd.Args[0])
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
		h.showBoard()

	case cli.CmdVerbose:
		verbose := h.view.ToggleVerbose()
		h.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", verbose))

	case cli.CmdHistory:
		snap, err := h.svc.Snapshot()
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		start := snap.State.Turn
		if len(snap.State.History) > 0 {
			start = snap.State.History[0].Turn
		}
		h.view.ShowHistory(start, snap.State.Moves())

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

// click forwards one square click and reports what happened
func (h *CLIHandler) click(sq core.Square) {
	out, err := h.svc.Click(sq)
	if err != nil {
		h.view.ShowError(err)
		return
	}

	switch out {
	case game.OutcomeMoved:
		h.reportMove()
	case game.OutcomeSelected:
		if h.view.IsVerbose() {
			moves, _ := h.svc.PossibleMoves(sq)
			h.view.ShowMoves(sq, moves)
		}
		h.showBoard()
	case game.OutcomeDeselected:
		if h.view.IsVerbose() {
			h.view.ShowMessage("Selection cleared")
		}
		h.showBoard()
	case game.OutcomeIgnored:
		if h.view.IsVerbose() {
			h.view.ShowMessage(fmt.Sprintf("Nothing to select on %s", sq.Algebraic()))
		}
	}
}

// playMove drives the click machine through from and to, leaving nothing
// selected when the move is rejected
func (h *CLIHandler) playMove(m core.Move) {
	if err := h.clearSelection(); err != nil {
		h.view.ShowError(err)
		return
	}

	out, err := h.svc.Click(m.From)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	if out != game.OutcomeSelected {
		h.view.ShowError(fmt.Errorf("no %s piece on %s", h.turnName(), m.From.Algebraic()))
		return
	}

	out, err = h.svc.Click(m.To)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	if out == game.OutcomeMoved {
		h.reportMove()
		return
	}

	if err := h.clearSelection(); err != nil {
		h.view.ShowError(err)
		return
	}
	h.view.ShowError(fmt.Errorf("illegal move: %s", m))
}

// clearSelection clicks the selected square again to release it
func (h *CLIHandler) clearSelection() error {
	snap, err := h.svc.Snapshot()
	if err != nil {
		return err
	}
	if snap.State.Selected == nil {
		return nil
	}
	out, err := h.svc.Click(*snap.State.Selected)
	if err != nil {
		return err
	}
	if out != game.OutcomeDeselected {
		return errors.New("could not clear selection")
	}
	return nil
}

func (h *CLIHandler) reportMove() {
	snap, err := h.svc.Snapshot()
	if err != nil {
		h.view.ShowError(err)
		return
	}
	if m := snap.State.LastMove; m != nil {
		mover := core.OppositeColor(snap.State.Turn)
		h.view.ShowInfo(fmt.Sprintf("%s plays %s", h.view.TurnLabel(mover), m))
	}
	h.showBoard()
}

func (h *CLIHandler) startSession(req core.NewSessionRequest) {
	info, err := h.svc.NewSession(req)
	if err != nil {
		h.view.ShowError(fmt.Errorf("could not start the game: %w", err))
		return
	}
	h.view.ShowInfo(fmt.Sprintf("Game started: %s", info.Label))
	h.showBoard()
}

func (h *CLIHandler) showBoard() {
	snap, err := h.svc.Snapshot()
	if err != nil {
		h.view.ShowError(err)
		return
	}
	h.view.DisplayBoard(snap.State, snap.Options)
	h.view.ShowMessage(fmt.Sprintf("%s to move", h.view.TurnLabel(snap.State.Turn)))
}

func (h *CLIHandler) turnName() string {
	snap, err := h.svc.Snapshot()
	if err != nil {
		return ""
	}
	return snap.State.Turn.Name()
}
