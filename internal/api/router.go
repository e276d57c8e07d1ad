package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/eventledger/internal/api/apierr"
	"github.com/mcoot/eventledger/internal/api/handler"
	"github.com/mcoot/eventledger/internal/api/middleware"
	"github.com/mcoot/eventledger/internal/services/auth"
	"github.com/mcoot/eventledger/internal/services/ledger"
	"github.com/mcoot/eventledger/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	AuthService   *auth.Service
	LedgerService *ledger.Service
	HubManager    *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.LedgerService)
	adminHandler := handler.NewAdminHandler(cfg.AuthService)
	eventHandler := handler.NewEventHandler(cfg.LedgerService, cfg.HubManager)
	playerHandler := handler.NewPlayerHandler(cfg.LedgerService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID)
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Public routes
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)
	api.HandleFunc("/admin/login", adminHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/events/{date}/players", playerHandler.Register).Methods(http.MethodPost)

	// Admin routes
	admin := api.NewRoute().Subrouter()
	admin.Use(authMiddleware)
	admin.HandleFunc("/admin/logout", adminHandler.Logout).Methods(http.MethodPost)

	admin.HandleFunc("/events", eventHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/events/{date}", eventHandler.Create).Methods(http.MethodPut)
	admin.HandleFunc("/events/{date}", eventHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/events/{date}/notes", eventHandler.SetNotes).Methods(http.MethodPut)
	admin.HandleFunc("/events/{date}/pot", eventHandler.FundPot).Methods(http.MethodPost)
	admin.HandleFunc("/events/{date}/stream", eventHandler.Stream).Methods(http.MethodGet)

	players := admin.PathPrefix("/events/{date}/players/{player_id}").Subrouter()
	players.HandleFunc("", playerHandler.Rename).Methods(http.MethodPatch)
	players.HandleFunc("", playerHandler.Remove).Methods(http.MethodDelete)
	players.HandleFunc("/note", playerHandler.SetNote).Methods(http.MethodPut)
	players.HandleFunc("/transfer", playerHandler.Transfer).Methods(http.MethodPost)
	players.HandleFunc("/deduct", playerHandler.Deduct).Methods(http.MethodPost)
	players.HandleFunc("/credit", playerHandler.Credit).Methods(http.MethodPost)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}
