// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer, the composition root:
//
//	config → store (Sanity client + GROQ, or local SQLite) → optional feed cache
//	       → FeedService / ProfileService → handlers → chi routes
//
// Every dependency is built in New and passed down explicitly; nothing below
// this package reads configuration or global state.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/tweetfeed/internal/cache"
	"github.com/sakif/tweetfeed/internal/config"
	"github.com/sakif/tweetfeed/internal/handler"
	"github.com/sakif/tweetfeed/internal/middleware"
	"github.com/sakif/tweetfeed/internal/repository"
	"github.com/sakif/tweetfeed/internal/repository/groq"
	sqliteRepo "github.com/sakif/tweetfeed/internal/repository/sqlite"
	"github.com/sakif/tweetfeed/internal/sanity"
	"github.com/sakif/tweetfeed/internal/service"
)

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	closers []io.Closer // store and cache connections, closed on shutdown
}

// stores bundles the repository implementations chosen by config.
type stores struct {
	tweets repository.TweetRepository
	users  repository.UserRepository
}

// New creates a Server from cfg.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	st, err := s.openStores(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	if cfg.Cache.RedisAddr != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("opening feed cache: %w", err)
		}
		s.closers = append(s.closers, rs)
		st.tweets = cache.NewFeedRepository(st.tweets, rs, cfg.Cache.TTL, logger)
		logger.Info("feed cache enabled",
			slog.String("redis", cfg.Cache.RedisAddr),
			slog.Duration("ttl", cfg.Cache.TTL),
		)
	}

	images := sanity.NewImageBuilder(cfg.Sanity.ProjectID, cfg.Sanity.Dataset)
	s.setupRoutes(st, images)
	return s, nil
}

// openStores builds the repository backend named by cfg.Store.Backend.
func (s *Server) openStores(ctx context.Context) (stores, error) {
	cfg := s.config
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		db, err := sqliteRepo.New(cfg.Store.SQLitePath)
		if err != nil {
			return stores{}, fmt.Errorf("opening database: %w", err)
		}
		s.closers = append(s.closers, db)
		db.SetQueryTimeout(cfg.Store.QueryTimeout)
		if cfg.Store.Fixtures != "" {
			if err := db.LoadFixtureFile(ctx, cfg.Store.Fixtures); err != nil {
				return stores{}, fmt.Errorf("loading fixtures: %w", err)
			}
			s.logger.Info("fixtures loaded", slog.String("file", cfg.Store.Fixtures))
		}
		return stores{tweets: db, users: db}, nil

	default:
		client, err := sanity.NewClient(sanity.Config{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			APIVersion: cfg.Sanity.APIVersion,
			UseCDN:     cfg.Sanity.UseCDN,
			Token:      cfg.Sanity.Token,
			Timeout:    cfg.Sanity.Timeout,
			BaseURL:    cfg.Sanity.BaseURL,
		})
		if err != nil {
			return stores{}, fmt.Errorf("creating content store client: %w", err)
		}
		store := groq.New(client)
		return stores{tweets: store, users: store}, nil
	}
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET /healthz                 → liveness check
// GET /api/tweets              → feed page (JSON)
// GET /api/tweets/{nickname}   → single tweet card (JSON)
// GET /api/users/{nickname}    → profile with a page of posts (JSON)
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Logger: logs each request with timing info (and the request ID)
// 4. Recoverer: catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes(st stores, images service.ImageURLBuilder) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	feedService := service.NewFeedService(st.tweets, images, s.logger)
	profileService := service.NewProfileService(st.users, st.tweets, images, s.logger)

	feedHandler := handler.NewFeedHandler(feedService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)

	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/tweets", feedHandler.HandleList)
		r.Get("/tweets/{nickname}", feedHandler.HandleCard)
		r.Get("/users/{nickname}", profileHandler.HandleGet)
	})
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases store and cache connections.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully: stop accepting connections, drain in-flight requests
// (bounded by server.shutdown_timeout), close store connections.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         s.config.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("backend", s.config.Store.Backend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
