// file: internal/server/server.go
// version: 2.0.0
// guid: d74e0fba-fd1a-4ace-8c7a-4bcbf58fd888

package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/readora/internal/library"
	"github.com/jdfalk/readora/internal/metrics"
	"github.com/jdfalk/readora/internal/realtime"
	"github.com/jdfalk/readora/internal/server/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	svc        *library.Service
	events     *realtime.EventHub
	cfg        ServerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port              string
	Host              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerMinute int // 0 disables per-client limiting
	MaxBodyBytes      int64
}

// GetDefaultServerConfig returns default server configuration
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:              "8484",
		Host:              "127.0.0.1",
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		RequestsPerMinute: 120,
		MaxBodyBytes:      middleware.DefaultMaxBodyBytes,
	}
}

// NewServer creates a server exposing svc over JSON.
func NewServer(svc *library.Service, cfg ServerConfig) *Server {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(corsMiddleware())

	metrics.Register()

	s := &Server{
		router: router,
		svc:    svc,
		events: realtime.NewEventHub(),
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

// Events returns the hub that streams library changes.
func (s *Server) Events() *realtime.EventHub {
	return s.events
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port),
		Handler:        s.router,
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[INFO] Shutting down server...")

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("[INFO] Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/healthz", s.healthCheck)

	api := s.router.Group("/api")
	if s.cfg.RequestsPerMinute > 0 {
		api.Use(middleware.NewClientLimiter(s.cfg.RequestsPerMinute, burstFor(s.cfg.RequestsPerMinute)).Middleware())
	}
	api.Use(middleware.MaxRequestBodySize(s.cfg.MaxBodyBytes))
	{
		api.GET("/recent", s.listRecent)
		api.GET("/search", s.searchBooks)
		api.GET("/books/:id", s.getBook)

		api.GET("/downloads", s.listDownloads)
		api.POST("/downloads", s.saveDownload)
		api.DELETE("/downloads/:id", s.removeDownload)
		api.DELETE("/downloads", s.clearDownloads)

		api.GET("/preferences", s.getPreferences)
		api.PUT("/preferences", s.updatePreferences)

		api.DELETE("/cache", s.clearCache)

		api.GET("/events", s.events.HandleSSE)
	}
}

func burstFor(perMinute int) int {
	if b := perMinute / 6; b > 1 {
		return b
	}
	return 1
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"downloads": len(s.svc.Downloads("")),
		"listeners": s.events.ClientCount(),
	})
}
