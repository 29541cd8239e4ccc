package service

import (
	"chessrules/internal/core"
	"chessrules/internal/display"
)

// View renders a snapshot into the API view model
func View(snap Snapshot, outcome string) core.GameView {
	v := core.GameView{
		SessionID: snap.ID,
		Label:     snap.Label,
		Turn:      snap.State.Turn.String(),
		MoveCount: snap.State.MoveCount(),
		Selected:  snap.State.Selected,
		Outcome:   outcome,
	}

	if m := snap.State.LastMove; m != nil {
		v.LastMove = &core.MoveInfo{From: m.From, To: m.To, UCI: m.String()}
	}

	grid := display.Render(snap.State, snap.Options)
	v.Cells = make([][]core.CellDTO, len(grid))
	for r, row := range grid {
		v.Cells[r] = make([]core.CellDTO, len(row))
		for c, cell := range row {
			v.Cells[r][c] = core.CellDTO{
				Glyph:   cell.Glyph,
				Color:   cell.Color,
				Classes: cell.Classes,
			}
		}
	}
	return v
}
