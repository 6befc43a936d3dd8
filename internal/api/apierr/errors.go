package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"sunward.gg/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidStructureType = "INVALID_STRUCTURE_TYPE"
	CodeInvalidTransform     = "INVALID_TRANSFORM"
	CodeRateLimited          = "RATE_LIMITED"
	CodeStructureLimit       = "STRUCTURE_LIMIT_EXCEEDED"
	CodeNotOwner             = "NOT_OWNER"
	CodeStructureNotFound    = "STRUCTURE_NOT_FOUND"
	CodeInvalidPlayerName    = "INVALID_PLAYER_NAME"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodePersistenceFailure   = "PERSISTENCE_FAILURE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrInvalidStructureType):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidStructureType, "Unknown structure type"}}
	case errors.Is(err, model.ErrInvalidTransform):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTransform, "Transform is malformed or out of bounds"}}
	case errors.Is(err, model.ErrRateLimited):
		return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many placements, slow down"}}
	case errors.Is(err, model.ErrStructureLimitExceeded):
		return &httpError{http.StatusConflict, APIError{CodeStructureLimit, "Structure limit reached for this player"}}
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotOwner, "Only the owner can perform this action"}}
	case errors.Is(err, model.ErrStructureNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeStructureNotFound, "Structure not found"}}
	case errors.Is(err, model.ErrInvalidPlayerName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPlayerName, "Player name must be 3-24 characters of a-z, 0-9, underscore or dash"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusUnauthorized, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, model.ErrPersistenceFailure):
		return &httpError{http.StatusInternalServerError, APIError{CodePersistenceFailure, "Storage backend failed"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
