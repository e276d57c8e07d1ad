package handler

import (
	"net/http"
	"time"

	"github.com/mcoot/eventledger/internal/api/request"
	"github.com/mcoot/eventledger/internal/api/response"
	imiddleware "github.com/mcoot/eventledger/internal/middleware"
	"github.com/mcoot/eventledger/internal/services/ledger"
	"github.com/mcoot/eventledger/internal/sse"
)

// EventHandler handles event-level endpoints
type EventHandler struct {
	ledgerService *ledger.Service
	hubManager    *sse.HubManager
}

// NewEventHandler creates a new event handler
func NewEventHandler(ledgerService *ledger.Service, hubManager *sse.HubManager) *EventHandler {
	return &EventHandler{
		ledgerService: ledgerService,
		hubManager:    hubManager,
	}
}

// List handles GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	dates, err := h.ledgerService.ListEventDates(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventListFromModel(dates))
}

// Create handles PUT /api/v1/events/{date}
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	record, created, err := h.ledgerService.CreateEvent(r.Context(), date)
	if err != nil {
		WriteError(w, err)
		return
	}

	if created {
		response.Created(w, response.EventFromModel(record))
		return
	}
	response.JSON(w, http.StatusOK, response.EventFromModel(record))
}

// Get handles GET /api/v1/events/{date}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.ledgerService.GetEvent(r.Context(), date)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventFromModel(record))
}

// SetNotes handles PUT /api/v1/events/{date}/notes
func (h *EventHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.EventNotesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	record, err := h.ledgerService.AnnotateEvent(r.Context(), date, req.Notes)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventFromModel(record))
}

// FundPot handles POST /api/v1/events/{date}/pot
func (h *EventHandler) FundPot(w http.ResponseWriter, r *http.Request) {
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

	record, err := h.ledgerService.FundPot(r.Context(), date, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventFromModel(record))
}

// Stream handles GET /api/v1/events/{date}/stream
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	date, err := eventDate(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	// Streams outlive the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	sse.ServeSSE(w, r, h.hubManager, date, imiddleware.GetRequestID(r.Context()))
}
