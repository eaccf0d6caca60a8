// Package http serves the wordsense REST API.
package http

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gbytes "github.com/labstack/gommon/bytes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/wordsense/internal/config"
	"github.com/fyrsmithlabs/wordsense/internal/logging"
	"github.com/fyrsmithlabs/wordsense/internal/services"
)

const instrumentationName = "github.com/fyrsmithlabs/wordsense/internal/http"

// Server provides the wordsense HTTP endpoints.
type Server struct {
	echo     *echo.Echo
	services services.Registry
	logger   *logging.Logger
	config   *Config
	tracer   trace.Tracer
	metrics  *HTTPMetrics
	scrape   http.Handler
}

// Config holds HTTP server configuration.
type Config struct {
	Host       string
	Port       int
	APIVersion string
	// AllowedOrigin restricts CORS to one origin. Empty disables CORS.
	AllowedOrigin string
	BodyLimit     string
	// RateLimit is requests per second per client IP. Zero disables it.
	RateLimit float64
}

// ConfigFromSettings converts loaded server settings.
func ConfigFromSettings(s config.ServerConfig) *Config {
	return &Config{
		Host:          s.Host,
		Port:          s.Port,
		APIVersion:    s.APIVersion,
		AllowedOrigin: s.AllowedOrigin,
		BodyLimit:     s.BodyLimit,
		RateLimit:     s.RateLimit,
	}
}

func defaultConfig() *Config {
	return &Config{
		Host:       "localhost",
		Port:       8000,
		APIVersion: "v1",
		BodyLimit:  "10M",
	}
}

// Option configures optional server dependencies.
type Option func(*Server)

// WithMeterProvider records request metrics on mp.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Server) {
		if mp != nil {
			s.metrics = NewHTTPMetrics(mp, s.logger.Underlying())
		}
	}
}

// WithTracerProvider creates a span per API request.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		if tp != nil {
			s.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.scrape = h
	}
}

// NewServer creates a new HTTP server.
func NewServer(registry services.Registry, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if registry == nil {
		return nil, errors.New("service registry cannot be nil")
	}
	if registry.Predictor() == nil || registry.Feedback() == nil || registry.Transcriber() == nil {
		return nil, errors.New("service registry is missing a service")
	}
	if logger == nil {
		return nil, errors.New("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = defaultConfig()
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1"
	}
	if cfg.BodyLimit != "" {
		if _, err := gbytes.Parse(cfg.BodyLimit); err != nil {
			return nil, fmt.Errorf("invalid body limit %q: %w", cfg.BodyLimit, err)
		}
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must be >= 0, got %v", cfg.RateLimit)
	}

	s := &Server{
		services: registry,
		logger:   logger.Named("http"),
		config:   cfg,
		tracer:   noop.NewTracerProvider().Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	s.echo = e

	s.registerMiddleware()
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerMiddleware() {
	e := s.echo

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.Error(c.Request().Context(), "panic recovered",
				zap.Error(err),
				zap.ByteString("stack", stack),
			)
			return err
		},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := logging.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	}))
	if s.metrics != nil {
		e.Use(s.metrics.MetricsMiddleware())
	}
	e.Use(s.requestLogger)

	if s.config.AllowedOrigin != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{s.config.AllowedOrigin},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
		}))
	}
	if s.config.BodyLimit != "" {
		e.Use(middleware.BodyLimit(s.config.BodyLimit))
	}
	if s.config.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: isProbe,
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.RateLimit),
				Burst:     int(math.Ceil(s.config.RateLimit)),
				ExpiresIn: 3 * time.Minute,
			}),
		}))
	}
}

// requestLogger logs every request once the error handler has written the
// final status.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		if isProbe(c) {
			return nil
		}

		req := c.Request()
		s.logger.Info(req.Context(), "http request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}

func isProbe(c echo.Context) bool {
	switch c.Path() {
	case "/health", "/ready", "/metrics":
		return true
	}
	return false
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/ready", s.handleReady)
	if s.scrape != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.scrape))
	}

	api := s.echo.Group("/api/" + s.config.APIVersion)
	api.POST("/predictions", s.handlePredict)
	api.POST("/predictions/feedback", s.handleFeedback)
	api.POST("/transcriptions", s.handleTranscribe)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server. It blocks until the server stops and
// returns nil after a graceful shutdown.
func (s *Server) Start() error {
	addr := s.Addr()
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
