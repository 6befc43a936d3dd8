package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"sunward.gg/internal/api/handler"
	"sunward.gg/internal/api/middleware"
	"sunward.gg/internal/engine"
	"sunward.gg/internal/model"
	"sunward.gg/internal/notify"
	"sunward.gg/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	Sessions     *session.Service
	Engine       *engine.Engine
	Hub          *notify.Hub
	Materials    model.Materials
	AdminKeyHash string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Engine, cfg.Logger)
	structuresHandler := handler.NewStructuresHandler(cfg.Engine, cfg.Materials)
	adminHandler := handler.NewAdminHandler(cfg.Engine, cfg.Materials)
	eventsHandler := handler.NewEventsHandler(cfg.Hub)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Sessions)
	adminKeyMiddleware := middleware.AdminKey(cfg.AdminKeyHash)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Liveness probe outside the API prefix, no middleware
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Session routes (connect is the entry point, no auth required)
	api.HandleFunc("/session/connect", sessionHandler.Connect).Methods(http.MethodPost)

	sessions := api.PathPrefix("/session").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("/disconnect", sessionHandler.Disconnect).Methods(http.MethodPost)

	// Structure routes (all require auth)
	structures := api.PathPrefix("/structures").Subrouter()
	structures.Use(authMiddleware)
	structures.HandleFunc("", structuresHandler.List).Methods(http.MethodGet)
	structures.HandleFunc("/build", structuresHandler.Build).Methods(http.MethodPost)
	structures.HandleFunc("/repair", structuresHandler.Repair).Methods(http.MethodPost)

	// Event stream (requires auth)
	events := api.PathPrefix("/events").Subrouter()
	events.Use(authMiddleware)
	events.HandleFunc("", eventsHandler.Stream).Methods(http.MethodGet)

	// Operator routes, gated on the admin key rather than a session
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminKeyMiddleware)
	admin.HandleFunc("/structures", adminHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/structures/{id}", adminHandler.Destroy).Methods(http.MethodDelete)
	admin.HandleFunc("/damage", adminHandler.Damage).Methods(http.MethodPost)
	admin.HandleFunc("/decay", adminHandler.GetDecay).Methods(http.MethodGet)
	admin.HandleFunc("/decay", adminHandler.SetDecay).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
