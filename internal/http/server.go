// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/adminguard/adminguard/internal/audit/http"
	authHTTP "github.com/adminguard/adminguard/internal/auth/http"
	authUseCase "github.com/adminguard/adminguard/internal/auth/usecase"
	"github.com/adminguard/adminguard/internal/authz"
	"github.com/adminguard/adminguard/internal/config"
	identityHTTP "github.com/adminguard/adminguard/internal/identity/http"
	"github.com/adminguard/adminguard/internal/metrics"
)

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	logger *slog.Logger
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig holds the dependencies SetupRouter wires into routes.
type RouterConfig struct {
	Config          *config.Config
	AuthUseCase     authUseCase.AuthUseCase
	AuthHandler     *authHTTP.AuthHandler
	OperatorHandler *identityHTTP.OperatorHandler
	RoleHandler     *identityHTTP.RoleHandler
	TrailHandler    *auditHTTP.TrailHandler
	Engine          *authz.Engine
	MetricsProvider *metrics.Provider
}

// SetupRouter configures all routes and middleware for the server.
//
// Read endpoints are guarded by the RequirePermission middleware alone.
// Mutating identity endpoints skip it: their handlers run the engine
// decision themselves because the hierarchy check needs the target level
// from the request body or the stored record.
//
// The metrics endpoint is intentionally absent: it lives on a separate
// server bound to its own port.
func (s *Server) SetupRouter(rc RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if rc.Config.MetricsEnabled && rc.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			rc.MetricsProvider.MeterProvider(),
			rc.Config.MetricsNamespace,
		))
	}

	if corsMiddleware := createCORSMiddleware(
		rc.Config.CORSEnabled,
		rc.Config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Unauthenticated authentication endpoints. Login is rate limited
	// per client IP to slow down credential stuffing.
	public := router.Group("/v1/auth")
	if rc.Config.RateLimitLoginEnabled {
		public.POST("/login", authHTTP.LoginRateLimitMiddleware(
			rc.Config.RateLimitLoginRequestsPerSec,
			rc.Config.RateLimitLoginBurst,
			s.logger,
		), rc.AuthHandler.LoginHandler)
	} else {
		public.POST("/login", rc.AuthHandler.LoginHandler)
	}
	public.POST("/refresh", rc.AuthHandler.RefreshHandler)
	public.POST("/logout", rc.AuthHandler.LogoutHandler)

	// Everything below requires a verified access assertion.
	authenticated := router.Group("/v1")
	authenticated.Use(authHTTP.AuthenticationMiddleware(rc.AuthUseCase, s.logger))
	if rc.Config.RateLimitEnabled {
		authenticated.Use(authHTTP.RateLimitMiddleware(
			rc.Config.RateLimitRequestsPerSec,
			rc.Config.RateLimitBurst,
			s.logger,
		))
	}

	authenticated.POST("/auth/change-password", rc.AuthHandler.ChangePasswordHandler)
	authenticated.GET("/auth/identity", rc.AuthHandler.IdentityHandler)

	operators := authenticated.Group("/operators")
	operators.POST("", rc.OperatorHandler.CreateHandler)
	operators.GET("",
		authz.RequirePermission(rc.Engine, "operators", "read", s.logger),
		rc.OperatorHandler.ListHandler)
	operators.GET("/:id",
		authz.RequirePermission(rc.Engine, "operators", "read", s.logger),
		rc.OperatorHandler.GetHandler)
	operators.PUT("/:id", rc.OperatorHandler.UpdateHandler)
	operators.DELETE("/:id", rc.OperatorHandler.DisableHandler)
	operators.POST("/:id/unlock", rc.OperatorHandler.UnlockHandler)
	operators.POST("/:id/revoke-sessions", rc.OperatorHandler.RevokeSessionsHandler)

	roles := authenticated.Group("/roles")
	roles.POST("", rc.RoleHandler.CreateHandler)
	roles.GET("",
		authz.RequirePermission(rc.Engine, "roles", "read", s.logger),
		rc.RoleHandler.ListHandler)
	roles.GET("/:name",
		authz.RequirePermission(rc.Engine, "roles", "read", s.logger),
		rc.RoleHandler.GetHandler)
	roles.PUT("/:name", rc.RoleHandler.UpdateHandler)

	auditEvents := authenticated.Group("/audit-events")
	auditEvents.Use(authz.RequirePermission(rc.Engine, "audit-events", "read", s.logger))
	auditEvents.GET("", rc.TrailHandler.ListHandler)
	auditEvents.GET("/report", rc.TrailHandler.ReportHandler)
	auditEvents.GET("/suspicious/:id", rc.TrailHandler.SuspiciousActivityHandler)

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can take traffic, checking
// the database connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		s.server.Handler = s.router
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
