package factory

import (
	"io"
	"log/slog"

	"github.com/mcoot/peoplebingo/internal/dependencies/clock"
	"github.com/mcoot/peoplebingo/internal/dependencies/random"
	"github.com/mcoot/peoplebingo/internal/services/insights"
	"github.com/mcoot/peoplebingo/internal/services/prompts"
	"github.com/mcoot/peoplebingo/internal/services/session"
	"github.com/mcoot/peoplebingo/internal/storage"
	"github.com/mcoot/peoplebingo/internal/storage/memory"
	"github.com/mcoot/peoplebingo/internal/stream"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	PromptService     *prompts.Service
	SessionController *session.Controller
	InsightsService   *insights.Service
	HubManager        *stream.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// PromptsFile is a file of prompts, one per line (optional)
	// If empty, the built-in prompts are used
	PromptsFile string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	app := newWithDependencies(memory.New(), clock.New(), random.New(), logger)

	if cfg.PromptsFile != "" {
		if err := app.PromptService.LoadFromFile(cfg.PromptsFile); err != nil {
			return nil, err
		}
		logger.Info("prompts loaded", slog.String("source", app.PromptService.Source()))
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	hubManager := stream.NewHubManager(logger)
	sessionController := session.NewController(store, hubManager, clk, rnd, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		PromptService:     prompts.New(),
		SessionController: sessionController,
		InsightsService:   insights.New(sessionController),
		HubManager:        hubManager,
	}
}
