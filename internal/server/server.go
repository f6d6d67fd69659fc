// Package server assembles the sync API and the realtime hub into one HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/homesync/internal/config"
	"github.com/iudanet/homesync/internal/realtime"
	"github.com/iudanet/homesync/internal/server/auth"
	"github.com/iudanet/homesync/internal/server/handlers"
	"github.com/iudanet/homesync/internal/server/middleware"
	"github.com/iudanet/homesync/internal/server/storage/sqlite"
)

const healthPath = "/api/v1/health"

// Server HTTP сервер homesync
type Server struct {
	cfg       *config.Server
	logger    *slog.Logger
	store     *sqlite.Storage
	validator *auth.Validator
	hub       *realtime.Hub
	limiter   *middleware.RateLimiter
	version   string
}

// New создает сервер поверх открытого хранилища
func New(cfg *config.Server, store *sqlite.Storage, version string, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		version: version,
		validator: auth.NewValidator(auth.JWTConfig{
			Secret:         []byte(cfg.JWTSecret),
			AccessTokenTTL: cfg.AccessTokenTTL,
		}, store),
		hub:     realtime.NewHub(logger),
		limiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, 10*time.Minute, logger),
	}
}

// Validator возвращает валидатор сессий (используется для выпуска токенов)
func (s *Server) Validator() *auth.Validator {
	return s.validator
}

// Handler возвращает корневой HTTP handler со всеми маршрутами
func (s *Server) Handler() http.Handler {
	syncHandler := handlers.NewSyncHandler(s.logger, s.store, s.store, s.hub)
	householdHandler := handlers.NewHouseholdHandler(s.logger, s.store, s.hub)
	healthHandler := handlers.NewHealthHandler(s.logger, s.store, s.version)

	wsCfg := realtime.DefaultConfig()
	wsCfg.AllowedOrigins = s.cfg.AllowedOrigins
	wsHandler := realtime.NewHandler(s.hub, s.validator, s.store, wsCfg, s.logger)

	requireAuth := middleware.AuthMiddleware(s.logger, s.validator)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+healthPath, healthHandler.Health)
	mux.Handle("GET /api/v1/households", requireAuth(http.HandlerFunc(householdHandler.ListHouseholds)))
	mux.Handle("GET /api/v1/households/{householdID}/entities", requireAuth(http.HandlerFunc(syncHandler.ListEntities)))
	mux.Handle("POST /api/v1/households/{householdID}/operations", requireAuth(http.HandlerFunc(syncHandler.ApplyOperation)))
	mux.Handle("POST /api/v1/households/{householdID}/shopping-list/bulk", requireAuth(http.HandlerFunc(syncHandler.BulkShopping)))
	mux.Handle("GET /api/v1/realtime/stats", requireAuth(http.HandlerFunc(householdHandler.RealtimeStats)))
	// websocket handler проверяет сессию сам: до и после upgrade
	mux.Handle("GET "+realtime.Path, wsHandler)

	var h http.Handler = mux
	h = middleware.RateLimitMiddleware(s.limiter, s.logger)(h)
	h = middleware.LoggingWithSkip(s.logger, []string{healthPath})(h)
	h = middleware.RecoveryMiddleware(s.logger)(h)
	return h
}

// Run запускает hub и HTTP сервер и блокируется до отмены ctx.
// При остановке новые запросы не принимаются, websocket соединения закрываются hub
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		s.hub.Run(hubCtx)
	}()
	defer func() {
		stopHub()
		<-hubDone
		s.limiter.Stop()
	}()

	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr, "version", s.version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server", "timeout", s.cfg.ShutdownTimeout)
	// hub останавливается первым: hijacked соединения Shutdown не ждет
	stopHub()
	<-hubDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}
