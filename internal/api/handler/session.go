package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"sunward.gg/internal/api/middleware"
	"sunward.gg/internal/api/request"
	"sunward.gg/internal/api/response"
	"sunward.gg/internal/engine"
	"sunward.gg/internal/services/session"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessions *session.Service
	engine   *engine.Engine
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Service, eng *engine.Engine, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		engine:   eng,
		logger:   logger,
	}
}

// Connect handles POST /api/v1/session/connect
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req request.ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("displayName is required"))
		return
	}

	sess, err := h.sessions.Connect(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	restored, err := h.engine.RestoreOwner(r.Context(), sess.PlayerID)
	if err != nil {
		// A session without its structures is worse than no session.
		if _, derr := h.sessions.Disconnect(sess.Token); derr != nil {
			h.logger.Warn("failed to roll back session after restore failure",
				slog.String("player_id", string(sess.PlayerID)),
				slog.Any("error", derr))
		}
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ConnectResponseFromSession(sess, restored))
}

// Disconnect handles POST /api/v1/session/disconnect
func (h *SessionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)

	sess, err := h.sessions.Disconnect(token)
	if err != nil {
		WriteError(w, err)
		return
	}

	// Flush to storage only when the player's last session closes; other
	// sessions keep the structures live and decaying.
	saved := false
	if !h.sessions.IsConnected(sess.PlayerID) {
		if err := h.engine.SaveOwner(r.Context(), sess.PlayerID); err != nil {
			WriteError(w, err)
			return
		}
		h.engine.ReleaseOwner(sess.PlayerID)
		saved = true
	}

	response.JSON(w, http.StatusOK, response.DisconnectResponse{
		PlayerID: string(sess.PlayerID),
		Saved:    saved,
	})
}
