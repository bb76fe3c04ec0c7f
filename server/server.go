// Package server wires the relay handler, middleware stack, and HTTP
// server lifecycle together.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brewgen/brewgen/config"
	"github.com/brewgen/brewgen/server/handlers"
	"github.com/brewgen/brewgen/server/metrics"
	"github.com/brewgen/brewgen/server/middleware"
	"github.com/brewgen/brewgen/server/upstream"
)

// Router handles HTTP routing for the relay.
type Router struct {
	router chi.Router
	recipe http.Handler
}

// NewRouter creates the route tree with the full middleware stack.
//
// The recipe endpoint is mounted for every method, not just POST: the
// handler owns method dispatch so that the Method Not Allowed body is
// the relay's, not the router's default.
func NewRouter(recipe http.Handler, m *metrics.Metrics, logger *zap.Logger) *Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTimer)
	r.Use(middleware.PanicRecovery(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.PrometheusMetrics(m))

	router := &Router{
		router: r,
		recipe: recipe,
	}

	r.Handle("/v1/recipes", recipe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			logger.Error("Failed to encode health response", zap.Error(err))
		}
	})
	r.Handle("/metrics", m.Handler())

	return router
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Server is the HTTP server hosting the relay. It owns the recipe
// handler so config reloads can swap the upstream client underneath
// running traffic.
type Server struct {
	httpServer      *http.Server
	logger          *zap.Logger
	recipeHandler   *handlers.RecipeHandler
	configWatcher   config.Watcher
	shutdownTimeout time.Duration
}

// NewServer creates a server from an already-loaded configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	recipeHandler := handlers.NewRecipeHandler(
		upstream.NewClient(cfg.Upstream, cfg.CircuitBreaker, nil, logger),
		logger,
	)
	m := metrics.NewMetrics()
	router := NewRouter(recipeHandler, m, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
		logger:          logger,
		recipeHandler:   recipeHandler,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// NewServerFromFile creates a server whose configuration is watched for
// changes. Edits to the file rebuild the upstream client in place.
func NewServerFromFile(path string, logger *zap.Logger) (*Server, error) {
	watcher, err := config.NewConfigWatcher(path, logger)
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}

	srv := NewServer(watcher.GetCurrentConfig(), logger)
	srv.configWatcher = watcher
	return srv, nil
}

// Start runs the server until ctx is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Server started", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if s.configWatcher != nil {
		updates := s.configWatcher.Subscribe()
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg, ok := <-updates:
					if !ok {
						return nil
					}
					s.logger.Info("Applying updated configuration",
						zap.String("endpoint", cfg.Upstream.Endpoint),
						zap.String("model", cfg.Upstream.Model),
					)
					s.recipeHandler.SetCompleter(
						upstream.NewClient(cfg.Upstream, cfg.CircuitBreaker, nil, s.logger),
					)
				}
			}
		})
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Info("Shutting down server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		if s.configWatcher != nil {
			if err := s.configWatcher.Close(); err != nil {
				s.logger.Warn("Failed to close config watcher", zap.Error(err))
			}
		}
		return nil
	})

	return g.Wait()
}
