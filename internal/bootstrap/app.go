package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
	"github.com/yanqian/agentic-commerce/internal/infra/browser"
	"github.com/yanqian/agentic-commerce/internal/infra/config"
)

// App encapsulates the HTTP server lifecycle and background maintenance.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	links    linkcheck.Service
	renderer *browser.Renderer
}

// NewApp is used by Wire to build the runnable app. renderer may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, links linkcheck.Service, renderer *browser.Renderer) *App {
	return &App{
		cfg:      cfg,
		logger:   logger.With("component", "bootstrap"),
		server:   server,
		links:    links,
		renderer: renderer,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	purgeCtx, stopPurge := context.WithCancel(ctx)
	purgeDone := make(chan struct{})
	go func() {
		defer close(purgeDone)
		a.purgeLoop(purgeCtx)
	}()
	defer func() {
		stopPurge()
		<-purgeDone
		a.closeRenderer()
	}()

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// purgeLoop drops expired liveness entries so the in-memory cache stays bounded.
func (a *App) purgeLoop(ctx context.Context) {
	interval := a.cfg.LinkCheck.PurgeInterval
	if interval <= 0 || a.links == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := a.links.PurgeExpired(ctx)
			if err != nil {
				a.logger.Warn("link cache purge failed", "error", err)
				continue
			}
			if removed > 0 {
				a.logger.Debug("link cache purged", "removed", removed)
			}
		}
	}
}

func (a *App) closeRenderer() {
	if a.renderer == nil {
		return
	}
	if err := a.renderer.Close(); err != nil {
		a.logger.Warn("browser close failed", "error", err)
	}
}
