// Package http exposes the claims intake and adjudication services over HTTP.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/claims-intake/internal/application/service"
)

// ServiceName is reported by the health check
const ServiceName = "claims-intake"

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	APIPrefix      string
	APIKey         string
	MaxUploadBytes int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "0.0.0.0",
		Port:           8000,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		APIPrefix:      "/api/v1",
		MaxUploadBytes: 10 << 20,
	}
}

// Services bundles the application services the handlers call
type Services struct {
	Claims       service.ClaimService
	Policies     service.PolicyService
	Adjudication service.AdjudicationService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	metrics    http.Handler
	logger     Logger
}

// NewServer creates a new HTTP server. metrics may be nil to disable /metrics.
func NewServer(config ServerConfig, services Services, metrics http.Handler, logger Logger) *Server {
	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		handlers: NewHandlers(services, config.MaxUploadBytes, logger),
		metrics:  metrics,
		logger:   logger,
	}

	server.router.Use(gin.Recovery())
	server.router.Use(server.loggingMiddleware())
	server.router.Use(corsMiddleware())
	server.setupRoutes()

	return server
}

// loggingMiddleware logs one line per request
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/", h.Root)
	s.router.GET("/health", h.HealthCheck)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := s.router.Group(s.config.APIPrefix, APIKeyAuth(s.config.APIKey))
	{
		api.POST("/claims", h.CreateClaim)
		api.GET("/claims/:id", h.GetClaim)
		api.POST("/claims/:id/photos", h.UploadPhoto)
		api.POST("/claims/:id/adjudicate", h.AdjudicateClaim)
		api.GET("/claims/:id/audit-log", h.ListAuditLog)

		api.GET("/policies/:policy_number", h.GetPolicy)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
