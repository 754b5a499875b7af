package authz

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	authHTTP "github.com/adminguard/adminguard/internal/auth/http"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	"github.com/adminguard/adminguard/internal/httputil"
)

// RequirePermission authorizes the request against (resource, action) using
// the verified identity in the request context.
//
// MUST be used after the authentication middleware. The grant-condition
// context is built from path and query parameters; the "id" path parameter,
// when present, becomes the ResourceID for ownership checks. Handlers with
// hierarchy-sensitive targets or body-derived conditions call
// Engine.Authorize themselves with a fuller Request.
//
// Returns 401 when no identity is present and 403 on deny.
func RequirePermission(engine *Engine, resource, action string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authHTTP.GetIdentity(c.Request.Context())
		if !ok || identity == nil {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		req := &Request{
			Resource:    resource,
			Action:      action,
			Context:     requestConditionContext(c),
			ResourceID:  c.Param("id"),
			RequestInfo: RequestInfoFromGin(c),
		}

		if err := engine.Authorize(c.Request.Context(), identity, req); err != nil {
			logger.Debug("authorization denied",
				slog.String("operator_id", identity.OperatorID.String()),
				slog.String("resource", resource),
				slog.String("action", action),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// requestConditionContext flattens query and path parameters into the map
// grant conditions evaluate against. Path values win over query values on
// collision so callers cannot shadow a route parameter.
func requestConditionContext(c *gin.Context) map[string]any {
	fields := make(map[string]any)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	for _, param := range c.Params {
		fields[param.Key] = param.Value
	}
	return fields
}

// RequestInfoFromGin captures the transport attributes recorded with deny
// events. Handlers running their own engine decisions use it too.
func RequestInfoFromGin(c *gin.Context) auditDomain.RequestContext {
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
