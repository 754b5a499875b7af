// Package http provides HTTP handlers and middleware for authentication.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/adminguard/adminguard/internal/auth/usecase"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	"github.com/adminguard/adminguard/internal/httputil"
)

// AuthenticationMiddleware authenticates requests via a Bearer access
// assertion in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Verifies the assertion signature and expiry via AuthUseCase.VerifyAccess
// 3. Stores the verified identity in the request context
// 4. Allows downstream handlers to access the identity via GetIdentity()
//
// Verification is purely cryptographic: no storage lookup happens per request,
// so a revoked refresh credential only takes effect once the current access
// assertion expires.
//
// Error handling:
//   - Missing Authorization header → 401 Unauthorized
//   - Malformed Authorization header → 401 Unauthorized
//   - Expired or tampered assertion → 401 Unauthorized
func AuthenticationMiddleware(
	authUC authUseCase.AuthUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		assertion := authHeader[len(bearerPrefix):]
		if assertion == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		identity, err := authUC.VerifyAccess(c.Request.Context(), assertion)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("operator_id", identity.OperatorID.String()),
			slog.String("role", identity.RoleName))

		c.Next()
	}
}
