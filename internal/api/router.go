package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/peoplebingo/internal/api/handler"
	apimiddleware "github.com/mcoot/peoplebingo/internal/api/middleware"
	"github.com/mcoot/peoplebingo/internal/api/response"
	"github.com/mcoot/peoplebingo/internal/middleware"
	"github.com/mcoot/peoplebingo/internal/services/insights"
	"github.com/mcoot/peoplebingo/internal/services/prompts"
	"github.com/mcoot/peoplebingo/internal/services/session"
	"github.com/mcoot/peoplebingo/internal/stream"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController session.ControllerInterface
	PromptService     *prompts.Service
	InsightsService   *insights.Service
	HubManager        *stream.HubManager
	// PublicURL is the base URL encoded into join QR codes (optional)
	PublicURL string
	// AllowedOrigins lists CORS origins. Empty allows every origin.
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.PromptService, cfg.InsightsService, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.HubManager, cfg.Logger)
	qrHandler := handler.NewQRHandler(cfg.SessionController, cfg.PublicURL)

	r.Use(apimiddleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/", sessionHandler.Root).Methods(http.MethodGet)
	r.HandleFunc("/ws/{code}", eventsHandler.WebSocket).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	games := api.PathPrefix("/games").Subrouter()
	games.HandleFunc("/create", sessionHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/join", sessionHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/update-cell", sessionHandler.UpdateCell).Methods(http.MethodPost)
	games.HandleFunc("/start", sessionHandler.Start).Methods(http.MethodPost)
	games.HandleFunc("/update-player-cell", sessionHandler.UpdatePlayerCell).Methods(http.MethodPost)
	games.HandleFunc("/finish", sessionHandler.Finish).Methods(http.MethodPost)
	games.HandleFunc("/{code}", sessionHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{code}/insights", sessionHandler.Insights).Methods(http.MethodGet)
	games.HandleFunc("/{code}/events", eventsHandler.SSE).Methods(http.MethodGet)
	games.HandleFunc("/{code}/qr", qrHandler.Get).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests never reach route matching
	return apimiddleware.CORS(cfg.AllowedOrigins, cfg.Logger)(r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
