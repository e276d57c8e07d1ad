package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mcoot/eventledger/internal/api/response"
	"github.com/mcoot/eventledger/internal/services/ledger"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports process and storage health
type HealthHandler struct {
	ledgerService *ledger.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(ledgerService *ledger.Service) *HealthHandler {
	return &HealthHandler{
		ledgerService: ledgerService,
	}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if _, err := h.ledgerService.ListEventDates(ctx); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "degraded", Storage: "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Storage: "ok"})
}
