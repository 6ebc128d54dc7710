// Package server wires the HTTP gateway: router, middleware stack, and
// listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stowgate/stowgate/internal/config"
	apperrors "github.com/stowgate/stowgate/internal/errors"
	"github.com/stowgate/stowgate/internal/observability"
	"github.com/stowgate/stowgate/internal/server/handlers"
	"github.com/stowgate/stowgate/internal/server/middleware"
	"github.com/stowgate/stowgate/pkg/store"
)

// Server is the upload-console HTTP gateway.
type Server struct {
	cfg     *config.Config
	handler *handlers.Handler
	router  chi.Router
}

// New builds the gateway. static may be nil when no static store section
// is configured; every request must then carry credential headers.
func New(cfg *config.Config, static store.ObjectStore, factory handlers.StoreFactory) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handlers.New(cfg, static, factory),
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the root http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recovery)
	r.Use(cors.Handler(s.corsOptions()))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.Respond(w, r, http.StatusNotFound, apperrors.CodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.Respond(w, r, http.StatusMethodNotAllowed, apperrors.CodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Get("/healthz", s.handler.Health)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health/store", s.handler.StoreHealth)

		api.Group(func(g chi.Router) {
			if s.cfg.RateLimit.Enabled {
				limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit.RPS), s.cfg.RateLimit.Burst)
				g.Use(middleware.RateLimit(limiter))
			}
			g.Post("/sign-upload", s.handler.SignUpload)
		})

		api.Get("/objects", s.handler.ListObjects)
		api.Post("/objects/rename", s.handler.RenameObject)
		api.Post("/objects/batch", s.handler.BatchObjects)
		api.Get("/objects/meta/*", s.handler.HeadObject)
		api.Delete("/objects/*", s.handler.DeleteObject)
	})

	return r
}

func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Content-Type", middleware.HeaderRequestID,
			handlers.HeaderEndpoint, handlers.HeaderAccessKey, handlers.HeaderSecretKey,
			handlers.HeaderBucket, handlers.HeaderPublicBase,
		},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	}
	if s.cfg.AllowAnyOrigin() {
		opts.AllowedOrigins = []string{"*"}
	} else {
		opts.AllowedOrigins = s.cfg.CORS.AllowedOrigins
	}
	return opts
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Server.Host, strconv.Itoa(s.cfg.Server.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.Logger.Info("gateway listening",
			zap.String("addr", addr),
			zap.Bool("static_store", s.cfg.StoreConfigured()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	observability.Logger.Info("shutting down", zap.Duration("timeout", s.cfg.Server.ShutdownTimeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
