// Package http provides the HTTP adapter for the application layer.
// It translates requests into application service calls and maps domain
// errors onto status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kdninv/nota-api/internal/application/port"
	"github.com/kdninv/nota-api/internal/application/service"
	"github.com/kdninv/nota-api/internal/auth"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	SecureCookies bool
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application services the HTTP layer exposes.
// Store may be nil when attachment uploads are not configured.
type Services struct {
	Auth      service.AuthService
	Pengajuan service.PengajuanService
	Users     service.UserService
	Rekening  service.RekeningService
	Push      service.PushService
	Store     port.AttachmentStore
	Folder    string
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	tokens     *auth.TokenManager
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, tokens *auth.TokenManager, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		tokens: tokens,
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes(services)

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(services Services) {
	handlers := NewHandlers(services, s.tokens, s.config.SecureCookies, s.logger)
	session := s.sessionMiddleware()

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/login", handlers.Login)
		api.POST("/logout", handlers.Logout)

		authed := api.Group("", session)
		{
			authed.GET("/me", handlers.Me)
			authed.POST("/change-password", handlers.ChangePassword)
			authed.PATCH("/profile", handlers.UpdateProfile)

			authed.POST("/pengajuan", handlers.SubmitPengajuan)
			authed.GET("/pengajuan", handlers.ListPengajuan)
			authed.GET("/pengajuan/:id", handlers.GetPengajuan)
			authed.PATCH("/pengajuan/:id", handlers.UpdatePengajuan)
			authed.GET("/nota-counter", handlers.PeekNotaNumber)

			authed.GET("/users", handlers.ListUsers)
			authed.POST("/users", handlers.CreateUser)
			authed.DELETE("/users/:id", handlers.DeleteUser)
			authed.PATCH("/users/:id/password", handlers.ResetUserPassword)

			authed.GET("/rekening", handlers.ListRekening)
			authed.POST("/rekening", handlers.SaveRekening)
			authed.PUT("/rekening", handlers.UpdateRekening)
			authed.DELETE("/rekening", handlers.DeleteRekening)

			authed.GET("/push/status", handlers.PushStatus)
			authed.POST("/push/subscribe", handlers.PushSubscribe)
			authed.POST("/push/unsubscribe", handlers.PushUnsubscribe)

			authed.POST("/upload", handlers.Upload)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

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

	s.logger.Info("Stopping HTTP server")

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
