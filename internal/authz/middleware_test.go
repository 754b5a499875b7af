package authz

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	authHTTP "github.com/adminguard/adminguard/internal/auth/http"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

func setupPermissionRouter(
	engine *Engine,
	identity *authDomain.IdentityContext,
	resource, action string,
) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	if identity != nil {
		router.Use(func(c *gin.Context) {
			ctx := authHTTP.WithIdentity(c.Request.Context(), identity)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
	router.GET("/v1/"+resource+"/:id", RequirePermission(engine, resource, action, logger),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	return router
}

func TestRequirePermission(t *testing.T) {
	t.Run("Success_GrantedAction", func(t *testing.T) {
		recorder := &mockAuditRecorder{}
		engine := newTestEngine(nil, recorder)

		identity := &authDomain.IdentityContext{
			OperatorID: uuid.Must(uuid.NewV7()),
			RoleName:   "manager",
			Level:      2,
			Grants: []identityDomain.Grant{
				{Resource: "operators", Actions: []string{"read"}},
			},
		}

		router := setupPermissionRouter(engine, identity, "operators", "read")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/operators/42", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_NoIdentity", func(t *testing.T) {
		recorder := &mockAuditRecorder{}
		engine := newTestEngine(nil, recorder)

		router := setupPermissionRouter(engine, nil, "operators", "read")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/operators/42", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_DeniedAction", func(t *testing.T) {
		recorder := &mockAuditRecorder{}
		engine := newTestEngine(nil, recorder)

		recorder.On("Record", mock.Anything, mock.Anything).Return(nil).Once()

		identity := &authDomain.IdentityContext{
			OperatorID: uuid.Must(uuid.NewV7()),
			RoleName:   "viewer",
			Level:      5,
			Grants: []identityDomain.Grant{
				{Resource: "operators", Actions: []string{"read"}},
			},
		}

		router := setupPermissionRouter(engine, identity, "operators", "delete")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/operators/42", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		recorder.AssertExpectations(t)
	})

	t.Run("Success_ConditionFromQueryParameter", func(t *testing.T) {
		recorder := &mockAuditRecorder{}
		engine := newTestEngine(nil, recorder)

		identity := &authDomain.IdentityContext{
			OperatorID: uuid.Must(uuid.NewV7()),
			RoleName:   "analyst",
			Level:      4,
			Grants: []identityDomain.Grant{
				{
					Resource: "reports",
					Actions:  []string{"read"},
					Conditions: []identityDomain.Condition{
						{Field: "region", Operator: identityDomain.OperatorEquals, Value: "emea"},
					},
				},
			},
		}

		router := setupPermissionRouter(engine, identity, "reports", "read")

		allowed := httptest.NewRecorder()
		allowedReq := httptest.NewRequest(http.MethodGet, "/v1/reports/42?region=emea", nil)
		router.ServeHTTP(allowed, allowedReq)
		assert.Equal(t, http.StatusOK, allowed.Code)

		recorder.On("Record", mock.Anything, mock.Anything).Return(nil).Once()

		denied := httptest.NewRecorder()
		deniedReq := httptest.NewRequest(http.MethodGet, "/v1/reports/42?region=apac", nil)
		router.ServeHTTP(denied, deniedReq)
		assert.Equal(t, http.StatusForbidden, denied.Code)
	})

	t.Run("Success_OwnershipUsesIDParameter", func(t *testing.T) {
		actorID := uuid.Must(uuid.NewV7())
		recorder := &mockAuditRecorder{}

		var seenResourceID string
		accessors := map[string]OwnerAccessor{
			"notes": func(_ context.Context, resourceID string) (uuid.UUID, error) {
				seenResourceID = resourceID
				return actorID, nil
			},
		}
		engine := newTestEngine(accessors, recorder)

		identity := &authDomain.IdentityContext{
			OperatorID: actorID,
			RoleName:   "manager",
			Level:      2,
			Grants: []identityDomain.Grant{
				{Resource: "notes", Actions: []string{"read"}, OwnerField: "operator_id"},
			},
		}

		router := setupPermissionRouter(engine, identity, "notes", "read")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/notes/note-7", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "note-7", seenResourceID)
	})
}
