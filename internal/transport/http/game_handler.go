package http

import (
	"errors"
	"strconv"

	"chessrules/internal/core"
	"chessrules/internal/service"

	"github.com/gofiber/fiber/v2"
)

// NewSession replaces the active session, optionally from a placement
func (h *HTTPHandler) NewSession(c *fiber.Ctx) error {
	req, _ := c.Locals("validatedBody").(*core.NewSessionRequest)
	if req == nil {
		req = &core.NewSessionRequest{}
	}

	info, err := h.svc.NewSession(*req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidBoard) {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid board",
				Code:    core.ErrCodeInvalidBoard,
				Details: err.Error(),
			})
		}
		return err
	}

	resp := core.SessionResponse{SessionID: info.ID, Label: info.Label}
	if h.svc.AuthEnabled() {
		token, err := h.svc.IssueToken(info)
		if err != nil {
			return err
		}
		resp.Token = token
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetGame returns the current view. With ?wait=N it long-polls while the
// history length is still N.
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	waitStr := c.Query("wait")
	if waitStr == "" {
		return h.respondView(c, "")
	}

	moveCount, err := strconv.Atoi(waitStr)
	if err != nil || moveCount < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid wait parameter",
			Code:    core.ErrCodeInvalidRequest,
			Details: "wait must be a non-negative move count",
		})
	}

	ctx := c.Context()
	notify, err := h.svc.RegisterWait(ctx, moveCount)
	if err != nil {
		return h.serviceError(c, err)
	}

	select {
	case <-notify:
		return h.respondView(c, "")
	case <-ctx.Done():
		return nil
	}
}

// GetMoves lists legal destinations for the piece on ?row=&col=
func (h *HTTPHandler) GetMoves(c *fiber.Ctx) error {
	sq, err := squareFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid square",
			Code:    core.ErrCodeInvalidSquare,
			Details: err.Error(),
		})
	}

	moves, err := h.svc.PossibleMoves(sq)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(core.MovesResponse{From: sq, Moves: moves})
}

// Click forwards a board click and returns the resulting view
func (h *HTTPHandler) Click(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedBody").(*core.ClickRequest)
	if !ok || req == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.ErrCodeInternalError,
		})
	}

	sq, err := core.NewSquare(*req.Row, *req.Col)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid square",
			Code:    core.ErrCodeInvalidSquare,
			Details: err.Error(),
		})
	}

	// Ownership is checked again under the service lock
	subject, _ := c.Locals("sessionID").(string)
	out, err := h.svc.ClickAs(subject, sq)
	if err != nil {
		return h.serviceError(c, err)
	}

	return h.respondView(c, out.String())
}

// Undo reverts the last move, a no-op on an empty history
func (h *HTTPHandler) Undo(c *fiber.Ctx) error {
	subject, _ := c.Locals("sessionID").(string)
	ok, err := h.svc.UndoAs(subject)
	if err != nil {
		return h.serviceError(c, err)
	}

	outcome := "undone"
	if !ok {
		outcome = "nothing to undo"
	}
	return h.respondView(c, outcome)
}

// GetBoard returns the placement FEN and an ASCII diagram
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	snap, err := h.svc.Snapshot()
	if err != nil {
		return h.serviceError(c, err)
	}

	b := snap.State.Board
	return c.JSON(core.BoardResponse{
		FEN:   b.FEN(),
		Board: b.ToASCII(),
	})
}

func (h *HTTPHandler) respondView(c *fiber.Ctx, outcome string) error {
	snap, err := h.svc.Snapshot()
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(service.View(snap, outcome))
}

// serviceError maps service errors onto HTTP responses
func (h *HTTPHandler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, core.ErrNoSession):
		return sessionNotFound(c)
	case errors.Is(err, service.ErrUnauthorized):
		return staleToken(c)
	case errors.Is(err, core.ErrInvalidBoard):
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid board",
			Code:    core.ErrCodeInvalidBoard,
			Details: err.Error(),
		})
	default:
		return err
	}
}

func squareFromQuery(c *fiber.Ctx) (core.Square, error) {
	row, err := strconv.Atoi(c.Query("row"))
	if err != nil {
		return core.Square{}, core.ErrInvalidSquare
	}
	col, err := strconv.Atoi(c.Query("col"))
	if err != nil {
		return core.Square{}, core.ErrInvalidSquare
	}
	return core.NewSquare(row, col)
}

