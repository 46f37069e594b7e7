// Package server exposes the advisor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"stack-advisor/internal/config"
	"stack-advisor/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Advisor computes recommendations and validations for a request.
type Advisor interface {
	Recommend(req *model.Request) (*model.Recommendation, error)
	Validate(req *model.Request) (*model.ValidationResult, error)
}

// RequestSource assembles a request for a named cluster.
type RequestSource interface {
	FetchRequest(ctx context.Context, cluster string) (*model.Request, error)
}

// Server is the HTTP API of the advisor.
type Server struct {
	cfg      *config.ServerConfig
	advisor  Advisor
	source   RequestSource
	registry *prometheus.Registry
	metrics  *metrics
	engine   *gin.Engine
	logger   zerolog.Logger
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithRequestSource enables the cluster routes backed by the inventory API.
func WithRequestSource(src RequestSource) Option {
	return func(s *Server) {
		s.source = src
	}
}

// New creates a server and registers all routes.
func New(cfg *config.ServerConfig, advisor Advisor, logger zerolog.Logger, opts ...Option) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:      cfg,
		advisor:  advisor,
		registry: registry,
		metrics:  newMetrics(registry),
		logger:   logger.With().Str("component", "server").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.newEngine()
	return s
}

func (s *Server) newEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.metrics.middleware(), s.accessLog())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := engine.Group("/api/v1")
	api.POST("/recommendations", s.handleRecommend)
	api.POST("/validations", s.handleValidate)
	if s.source != nil {
		clusters := api.Group("/clusters/:cluster")
		clusters.GET("/recommendations", s.handleClusterRecommend)
		clusters.GET("/validations", s.handleClusterValidate)
	}
	return engine
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.cfg.Listen).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}
