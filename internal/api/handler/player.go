package handler

import (
	"net/http"

	"github.com/mcoot/eventledger/internal/api/request"
	"github.com/mcoot/eventledger/internal/api/response"
	"github.com/mcoot/eventledger/internal/services/ledger"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	ledgerService *ledger.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(ledgerService *ledger.Service) *PlayerHandler {
	return &PlayerHandler{
		ledgerService: ledgerService,
	}
}

// Register handles POST /api/v1/events/{date}/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.RegisterPlayerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.ledgerService.Register(r.Context(), date, req.Draft())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Created(w, response.PlayerFromModel(player))
}

// Rename handles PATCH /api/v1/events/{date}/players/{player_id}
func (h *PlayerHandler) Rename(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.RenamePlayerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.ledgerService.Rename(r.Context(), date, playerID(r), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Remove handles DELETE /api/v1/events/{date}/players/{player_id}
func (h *PlayerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.ledgerService.Remove(r.Context(), date, playerID(r)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// SetNote handles PUT /api/v1/events/{date}/players/{player_id}/note
func (h *PlayerHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.ledgerService.AnnotatePlayer(r.Context(), date, playerID(r), req.Note)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Transfer handles POST /api/v1/events/{date}/players/{player_id}/transfer
func (h *PlayerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Delta == nil {
		WriteError(w, NewInvalidRequestError("delta is required"))
		return
	}

	result, err := h.ledgerService.Transfer(r.Context(), date, playerID(r), *req.Delta)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TransferFromModel(result))
}

// Deduct handles POST /api/v1/events/{date}/players/{player_id}/deduct
func (h *PlayerHandler) Deduct(w http.ResponseWriter, r *http.Request) {
	h.amountTransfer(w, r, h.ledgerService.Deduct)
}

// Credit handles POST /api/v1/events/{date}/players/{player_id}/credit
func (h *PlayerHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.amountTransfer(w, r, h.ledgerService.Credit)
}

func (h *PlayerHandler) amountTransfer(w http.ResponseWriter, r *http.Request, op amountOp) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.AmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := op(r.Context(), date, playerID(r), req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TransferFromModel(result))
}
