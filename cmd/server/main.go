package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-viewer/internal/config"
	"pdf-viewer/internal/handler"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	// Wiring
	container := config.NewContainer()
	cfg := container.Config
	logger := container.Logger

	startDefaultViewer(container)

	viewerHandler := handler.NewViewerHandler(container.ViewerService, logger)
	router := handler.NewRouter(viewerHandler, logger, cfg.GetAllowedOrigins())

	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Server shutdown incomplete", "error", err)
		}
		return container.ViewerService.CloseAll()
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", err)
		os.Exit(1)
	}
	logger.Info("Server exited")
}

// startDefaultViewer opens the viewer configured through START_DOCUMENT,
// zoomed and panned as configured. The load runs in the background.
func startDefaultViewer(container *config.Container) {
	cfg := container.Config
	logger := container.Logger
	if cfg.GetStartDocument() == "" {
		return
	}

	session, err := container.ViewerService.Create(0, 0)
	if err != nil {
		logger.Error("Failed to create default viewer", err)
		return
	}
	if err := session.View.SetZoom(cfg.GetStartZoom()); err != nil {
		logger.Warn("Ignoring start zoom", "zoom", cfg.GetStartZoom(), "error", err)
	}
	session.View.SetPosition(cfg.GetStartPosition())

	if _, err := container.ViewerService.Load(context.Background(), session.ID, cfg.GetStartDocument(), false); err != nil {
		logger.Error("Failed to start default document load", err, "source", cfg.GetStartDocument())
		return
	}
	logger.Info("Default viewer started", "viewer_id", session.ID, "source", cfg.GetStartDocument())
}
