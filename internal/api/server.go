// Package api exposes the appropriateness engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/imaging-appropriateness-mcp-server/internal/domain"
	"github.com/imaging-appropriateness-mcp-server/internal/feedback"
	"github.com/imaging-appropriateness-mcp-server/internal/knowledge"
	"github.com/imaging-appropriateness-mcp-server/internal/middleware"
	"github.com/imaging-appropriateness-mcp-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	base          *knowledge.Base
	evaluator     atomic.Pointer[service.EvaluatorService]
	feedbackStore feedback.Store
	limiter       *middleware.RateLimiter
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance. The feedback store may be nil
// when feedback capture is disabled.
func NewServer(configManager domain.ConfigManager, logger *logrus.Logger, base *knowledge.Base, evaluator *service.EvaluatorService, store feedback.Store) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware())
	router.Use(middleware.CorrelationID())

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		router.Use(limiter.Middleware())
	}

	server := &Server{
		configManager: configManager,
		logger:        logger,
		base:          base,
		feedbackStore: store,
		limiter:       limiter,
		router:        router,
	}
	server.evaluator.Store(evaluator)

	// Setup routes
	server.setupRoutes()

	return server
}

// Router returns the underlying gin engine, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.limiter != nil {
		s.limiter.Close()
	}
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/evaluate", s.handleEvaluate)
		v1.GET("/topics", s.handleListTopics)
		v1.GET("/criteria", s.handleListCriteria)
		v1.GET("/criteria/:id", s.handleGetCriteria)
		v1.POST("/reload", s.handleReload)
		v1.POST("/feedback", s.handleSaveFeedback)
		v1.GET("/feedback", s.handleListFeedback)
		v1.GET("/feedback/stats", s.handleFeedbackStats)
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
