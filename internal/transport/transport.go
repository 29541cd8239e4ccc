// Package transport holds the contracts shared by the user-facing front ends.
package transport

import (
	"chessrules/internal/cli"
	"chessrules/internal/core"
	"chessrules/internal/game"
)

// View abstracts terminal display and input
type View interface {
	GetCommand() (*cli.Command, error)
	SetTheme(theme cli.ColorTheme) error
	ToggleVerbose() bool
	IsVerbose() bool
	TurnLabel(turn core.Color) string
	DisplayBoard(s game.State, opts game.Options)
	ShowMoves(from core.Square, moves []core.Square)
	ShowHistory(start core.Color, moves []core.Move)
	ShowMessage(msg string)
	ShowInfo(msg string)
	ShowError(err error)
	ShowPrompt(prompt string)
	ShowHelp()
}

var _ View = (*cli.CLI)(nil)
