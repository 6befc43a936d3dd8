// Package session tracks which players are connected and authenticates
// their requests. Sessions are in-memory only; players persist.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sunward.gg/internal/dependencies/clock"
	"sunward.gg/internal/dependencies/random"
	"sunward.gg/internal/model"
	"sunward.gg/internal/storage"
)

const tokenBytes = 32

// Session represents one connected client
type Session struct {
	Token       string
	PlayerID    model.PlayerID
	Player      model.Player
	ConnectedAt time.Time
}

// Service manages sessions and player records. Unlike the simulation state
// it is locked internally: HTTP middleware authenticates tokens concurrently
// with the tick loop.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	byPlayer map[model.PlayerID]int
}

// New creates a session service
func New(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage:  store,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "session")),
		sessions: make(map[string]*Session),
		byPlayer: make(map[model.PlayerID]int),
	}
}

// Connect validates the name, loads or creates the player record, and opens
// a new session. A player may hold several sessions at once.
func (s *Service) Connect(ctx context.Context, displayName string) (*Session, error) {
	id, err := model.NormalizePlayerName(displayName)
	if err != nil {
		return nil, err
	}

	player, err := s.storage.GetPlayer(ctx, id)
	if err == model.ErrPlayerNotFound {
		player = &model.Player{
			ID:          id,
			DisplayName: displayName,
			CreatedAt:   s.clock.Now(),
		}
		if saveErr := s.storage.SavePlayer(ctx, player); saveErr != nil {
			s.logger.Error("player save failed", "player_id", id, "error", saveErr)
			return nil, fmt.Errorf("%w: saving player", model.ErrPersistenceFailure)
		}
		s.logger.Info("player created", "player_id", id)
	} else if err != nil {
		s.logger.Error("player load failed", "player_id", id, "error", err)
		return nil, fmt.Errorf("%w: loading player", model.ErrPersistenceFailure)
	}

	token, err := s.random.Token(tokenBytes)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Token:       token,
		PlayerID:    id,
		Player:      *player,
		ConnectedAt: s.clock.Now(),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.byPlayer[id]++
	connected := len(s.byPlayer)
	s.mu.Unlock()

	s.logger.Info("player connected",
		"player_id", id,
		"connected_players", connected)
	return session, nil
}

// Authenticate resolves a bearer token to its session
func (s *Service) Authenticate(token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrUnauthorized
	}
	return session, nil
}

// Disconnect closes the session for the given token
func (s *Service) Disconnect(token string) (*Session, error) {
	s.mu.Lock()
	session, ok := s.sessions[token]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrSessionNotFound
	}
	delete(s.sessions, token)
	s.byPlayer[session.PlayerID]--
	if s.byPlayer[session.PlayerID] <= 0 {
		delete(s.byPlayer, session.PlayerID)
	}
	connected := len(s.byPlayer)
	s.mu.Unlock()

	s.logger.Info("player disconnected",
		"player_id", session.PlayerID,
		"connected_players", connected)
	return session, nil
}

// IsConnected reports whether the player has at least one open session
func (s *Service) IsConnected(id model.PlayerID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byPlayer[id] > 0
}

// AnyConnected reports whether any player is connected
func (s *Service) AnyConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPlayer) > 0
}

// ConnectedCount returns the number of distinct connected players
func (s *Service) ConnectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPlayer)
}
