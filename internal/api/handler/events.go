package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/peoplebingo/internal/model"
	"github.com/mcoot/peoplebingo/internal/stream"
)

// EventsHandler serves live session event streams
type EventsHandler struct {
	hubManager *stream.HubManager
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hubManager *stream.HubManager, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		hubManager: hubManager,
		logger:     logger,
	}
}

// SSE handles GET /api/games/{code}/events
func (h *EventsHandler) SSE(w http.ResponseWriter, r *http.Request) {
	code := model.NormalizeCode(mux.Vars(r)["code"])
	stream.ServeSSE(w, r, h.hubManager, code)
}

// WebSocket handles GET /ws/{code}
func (h *EventsHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	code := model.NormalizeCode(mux.Vars(r)["code"])
	stream.ServeWS(w, r, h.hubManager, code, h.logger)
}
