package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/peoplebingo/internal/api/apierr"
	"github.com/mcoot/peoplebingo/internal/api/request"
	"github.com/mcoot/peoplebingo/internal/api/response"
	"github.com/mcoot/peoplebingo/internal/model"
	"github.com/mcoot/peoplebingo/internal/services/insights"
	"github.com/mcoot/peoplebingo/internal/services/prompts"
	"github.com/mcoot/peoplebingo/internal/services/session"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessions session.ControllerInterface
	prompts  *prompts.Service
	insights *insights.Service
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	sessions session.ControllerInterface,
	prompts *prompts.Service,
	insights *insights.Service,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		prompts:  prompts,
		insights: insights,
		logger:   logger,
	}
}

// decode reads a JSON body into v and validates it
func decode[T interface{ Validate() error }](r *http.Request, v *T) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.NewInvalidRequestError("Invalid request body")
	}
	return (*v).Validate()
}

// Create handles POST /api/games/create
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	// An empty body means default settings
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		apierr.WriteError(w, err)
		return
	}

	s, err := h.sessions.CreateSession(r.Context(), h.prompts.Prompts(), req.DurationOrDefault())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateGameResponse{
		GameCode: string(s.Code),
		Game:     response.GameFromModel(s),
	})
}

// Get handles GET /api/games/{code}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.NormalizeCode(mux.Vars(r)["code"])

	s, err := h.sessions.GetSession(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(s))
}

// Join handles POST /api/games/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinSessionRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	s, joined, err := h.sessions.JoinSession(r.Context(), model.NormalizeCode(req.GameCode), req.PlayerName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	message := "Joined successfully"
	if !joined {
		message = "Player already in game"
	}
	response.JSON(w, http.StatusOK, response.GameMessageResponse{
		Message: message,
		Game:    response.GameFromModel(s),
	})
}

// UpdateCell handles POST /api/games/update-cell
func (h *SessionHandler) UpdateCell(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateCellRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	s, err := h.sessions.EditPromptCell(r.Context(), model.NormalizeCode(req.GameCode), *req.Index, *req.Value)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameMessageResponse{
		Message: "Cell updated",
		Game:    response.GameFromModel(s),
	})
}

// Start handles POST /api/games/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req request.StartSessionRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	s, err := h.sessions.StartSession(r.Context(), model.NormalizeCode(req.GameCode))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameMessageResponse{
		Message: "Game started",
		Game:    response.GameFromModel(s),
	})
}

// UpdatePlayerCell handles POST /api/games/update-player-cell
func (h *SessionHandler) UpdatePlayerCell(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePlayerCellRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	player, err := h.sessions.UpdatePlayerCell(r.Context(),
		model.NormalizeCode(req.GameCode), req.PlayerName, *req.CellIndex, *req.NameValue)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerMessageResponse{
		Message: "Cell updated",
		Player:  response.PlayerFromModel(player),
	})
}

// Finish handles POST /api/games/finish
func (h *SessionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	var req request.FinishSessionRequest
	if err := decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	position, player, err := h.sessions.FinishSession(r.Context(), model.NormalizeCode(req.GameCode), req.PlayerName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FinishResponse{
		Message:  "Game finished",
		Position: position,
		Player:   response.PlayerFromModel(player),
	})
}

// Insights handles GET /api/games/{code}/insights
func (h *SessionHandler) Insights(w http.ResponseWriter, r *http.Request) {
	code := model.NormalizeCode(mux.Vars(r)["code"])

	result, err := h.insights.GetInsights(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.InsightsFromModel(result))
}

// Root handles GET /
func (h *SessionHandler) Root(w http.ResponseWriter, r *http.Request) {
	count, err := h.sessions.CountSessions(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RootResponse{
		Message:     "People Bingo API",
		ActiveGames: count,
	})
}
