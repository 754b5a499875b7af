// Package http provides HTTP handlers and middleware for authentication.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	"github.com/adminguard/adminguard/internal/auth/http/dto"
	authUseCase "github.com/adminguard/adminguard/internal/auth/usecase"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	"github.com/adminguard/adminguard/internal/httputil"
	customValidation "github.com/adminguard/adminguard/internal/validation"
)

// AuthHandler handles HTTP requests for the authentication pipeline:
// login, refresh, logout, and password changes.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	authUC authUseCase.AuthUseCase,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUC,
		logger:      logger,
	}
}

// requestContext captures the request attributes the audit trail records.
func requestContext(c *gin.Context) auditDomain.RequestContext {
	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = c.Request.URL.Path
	}
	return auditDomain.RequestContext{
		Origin:    c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Method:    c.Request.Method,
		Endpoint:  endpoint,
	}
}

// LoginHandler authenticates an operator and issues a token pair.
// POST /v1/auth/login - No authentication required.
// Returns 200 OK with access and refresh tokens.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.authUseCase.Authenticate(
		c.Request.Context(), req.Email, req.Password, requestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// RefreshHandler exchanges a refresh token for a new token pair.
// POST /v1/auth/refresh - No authentication required (the refresh token is
// the credential). Returns 200 OK with the rotated pair.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.authUseCase.Refresh(c.Request.Context(), req.RefreshToken, requestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// LogoutHandler revokes the session(s) tied to a refresh token.
// POST /v1/auth/logout - No authentication required (possession of the
// refresh token is the credential). Returns 204 No Content.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	var req dto.LogoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	scope := authDomain.RevocationScope(req.Scope)
	if scope == "" {
		scope = authDomain.RevokeSingle
	}

	if err := h.authUseCase.Revoke(c.Request.Context(), req.RefreshToken, scope, requestContext(c)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ChangePasswordHandler replaces the password of the authenticated operator.
// POST /v1/auth/change-password - Requires authentication. Every live session of the
// operator is revoked on success. Returns 204 No Content.
func (h *AuthHandler) ChangePasswordHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok || identity == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.authUseCase.ChangePassword(
		c.Request.Context(), identity.OperatorID,
		req.CurrentPassword, req.NewPassword, requestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// IdentityHandler returns the identity behind the presented assertion.
// GET /v1/auth/identity - Requires authentication. Returns 200 OK.
func (h *AuthHandler) IdentityHandler(c *gin.Context) {
	identity, ok := GetIdentity(c.Request.Context())
	if !ok || identity == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapIdentityToResponse(identity))
}
