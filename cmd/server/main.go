package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/peoplebingo/internal/api"
	"github.com/mcoot/peoplebingo/internal/factory"
)

func main() {
	cfg := &Config{}
	if err := newCmd(cfg, serve).Execute(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, cfg *Config) error {
	// Set up logging with JSON output
	level, _ := cfg.level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	app, err := factory.New(factory.Config{
		PromptsFile: cfg.promptsFile,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		PromptService:     app.PromptService,
		InsightsService:   app.InsightsService,
		HubManager:        app.HubManager,
		PublicURL:         cfg.publicURL,
		AllowedOrigins:    cfg.allowedOrigins,
	})

	server := api.NewServer(router, cfg.serverConfig(), logger)
	// Close event streams as soon as shutdown starts so they do not hold it open
	server.OnShutdown(app.HubManager.Close)
	if err := server.Listen(); err != nil {
		logger.Error("failed to listen", slog.String("error", err.Error()))
		return err
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.HubManager.RunCleanup(ctx, cfg.cleanupInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("prompts", app.PromptService.Source()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
