// Package api serves the matching engine over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/engine"
	"github.com/spigell/hackmate/internal/metrics"
)

const (
	shutdownTimeout = 15 * time.Second
	// auto-match may wait for the completion service
	writeTimeout    = 90 * time.Second
)

type Server struct {
	engine         *engine.Engine
	logger         *zap.Logger
	metrics        *metrics.Manager
	allowedOrigins []string
}

// New builds the HTTP server. A nil metrics manager disables /metrics.
func New(e *engine.Engine, logger *zap.Logger, m *metrics.Manager, allowedOrigins []string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Server{
		engine:         e,
		logger:         logger,
		metrics:        m,
		allowedOrigins: allowedOrigins,
	}
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/healthz", s.health)
	if s.metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	router.Route("/matchmaking", func(r chi.Router) {
		r.Post("/search", s.search)
		r.Post("/auto", s.autoMatch)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/recommend/clusters", s.recommendClusters)
		r.Post("/roles", s.assignRoles)
	})

	return router
}

// requestLogger logs every request and feeds the HTTP metrics.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(started)

		s.metrics.ObserveHTTP(r.Method, route, status, elapsed)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ListenAndServe serves on addr until ctx is cancelled and then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     zap.NewStdLog(s.logger),
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("address", addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server", zap.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				s.logger.Error("failed to force close server", zap.Error(closeErr))
			}
			return err
		}
		s.logger.Info("server shutdown complete")
		return nil
	}
}
