package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/peoplebingo/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeGameNotFound     = "GAME_NOT_FOUND"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
	CodeInvalidPhase     = "INVALID_PHASE"
	CodeInvalidIndex     = "INVALID_INDEX"
	CodeImmutableCell    = "IMMUTABLE_CELL"
	CodeAlreadyStarted   = "ALREADY_STARTED"
	CodeNoPlayers        = "NO_PLAYERS"
	CodeNotStarted       = "NOT_STARTED"
	CodeAlreadyCompleted = "ALREADY_COMPLETED"
	CodeIncompleteGrid   = "INCOMPLETE_GRID"
	CodeInternalError    = "INTERNAL_ERROR"
)

// IncompleteGridDetails lists the cells a player still has to fill
type IncompleteGridDetails struct {
	MissingCells []int `json:"missing_cells"`
}

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

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var gridErr *model.IncompleteGridError
	if errors.As(err, &gridErr) {
		return &httpError{http.StatusBadRequest, APIError{
			Code:    CodeIncompleteGrid,
			Message: "Not all cells are filled",
			Details: IncompleteGridDetails{MissingCells: gridErr.Missing},
		}}
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeGameNotFound, Message: "Game not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePlayerNotFound, Message: "Player not found"}}
	case errors.Is(err, model.ErrInvalidPhase):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidPhase, Message: "Cannot edit cells after game started"}}
	case errors.Is(err, model.ErrInvalidIndex):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidIndex, Message: "Invalid cell index"}}
	case errors.Is(err, model.ErrImmutableCell):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeImmutableCell, Message: "Cannot edit FREE SPACE"}}
	case errors.Is(err, model.ErrAlreadyStarted):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeAlreadyStarted, Message: "Game already started"}}
	case errors.Is(err, model.ErrNoPlayers):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeNoPlayers, Message: "No players in game"}}
	case errors.Is(err, model.ErrNotStarted):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeNotStarted, Message: "Game not started yet"}}
	case errors.Is(err, model.ErrAlreadyCompleted):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeAlreadyCompleted, Message: "Player already finished"}}
	case errors.Is(err, model.ErrIncompleteGrid):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeIncompleteGrid, Message: "Not all cells are filled"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
