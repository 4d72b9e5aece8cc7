package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/rasterize/internal/cache"
	"github.com/zsiec/rasterize/internal/config"
	"github.com/zsiec/rasterize/internal/convert"
	"github.com/zsiec/rasterize/internal/errors"
	"github.com/zsiec/rasterize/internal/health"
	"github.com/zsiec/rasterize/internal/logger"
)

// Server is the HTTP conversion service.
type Server struct {
	config       *config.Config
	router       *mux.Router
	httpServer   *http.Server
	logger       *logrus.Logger
	converter    *convert.Converter
	cache        *cache.ResultCache
	healthMgr    *health.Manager
	errorHandler *errors.ErrorHandler
	limiter      *clientLimiter
}

// New creates a server around a decoder factory. resultCache may be nil
// when caching is disabled.
func New(cfg *config.Config, log *logrus.Logger, factory convert.DecoderFactory, resultCache *cache.ResultCache) *Server {
	converter := convert.New(factory, convert.WithMaxPixels(cfg.Convert.MaxPixels))

	s := &Server{
		config:       cfg,
		router:       mux.NewRouter(),
		logger:       log,
		converter:    converter,
		cache:        resultCache,
		healthMgr:    health.NewManager(log),
		errorHandler: errors.NewErrorHandler(log),
	}

	if cfg.Server.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
	}

	s.registerHealthCheckers()
	s.setupRoutes()

	return s
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.ListenAddr, s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	go s.healthMgr.StartPeriodicChecks(ctx, 30*time.Second)

	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

// setupRoutes configures middleware and all routes.
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(logger.RequestLoggerMiddleware(s.logger))
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.errorHandler.Middleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)

	healthHandler := health.NewHandler(s.healthMgr)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods("GET")
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")

	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	if s.config.Metrics.Enabled {
		s.router.Handle(s.config.Metrics.Path, promhttp.Handler()).Methods("GET")
	}

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.rateLimitMiddleware)
	api.Use(s.bodyLimitMiddleware)
	api.HandleFunc("/convert", s.handleConvert).Methods("POST")
	api.HandleFunc("/probe", s.handleProbe).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.errorHandler.HandleMethodNotAllowed)
}

// registerHealthCheckers wires the standing health checks.
func (s *Server) registerHealthCheckers() {
	s.healthMgr.Register(health.NewEncoderChecker())
	s.healthMgr.Register(health.NewMemoryChecker(0.9))

	if s.cache != nil {
		s.healthMgr.Register(health.NewRedisChecker(s.cache.Client()))
	}
}

// GetRouter returns the router for testing.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
