package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	authHTTP "github.com/adminguard/adminguard/internal/auth/http"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

func setupRoleRouter(identity *authDomain.IdentityContext) (*gin.Engine, *mockRoleUseCase, *capturingRecorder) {
	gin.SetMode(gin.TestMode)

	roles := &mockRoleUseCase{}
	audit := &capturingRecorder{}
	handler := NewRoleHandler(roles, audit, testEngine(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if identity != nil {
			c.Request = c.Request.WithContext(
				authHTTP.WithIdentity(c.Request.Context(), identity))
		}
		c.Next()
	})
	router.POST("/v1/roles", handler.CreateHandler)
	router.GET("/v1/roles", handler.ListHandler)
	router.GET("/v1/roles/:name", handler.GetHandler)
	router.PUT("/v1/roles/:name", handler.UpdateHandler)

	return router, roles, audit
}

func TestRoleHandler_Create(t *testing.T) {
	body := map[string]any{
		"name":  "auditor",
		"level": 3,
		"grants": []map[string]any{
			{"resource": "audit-events", "actions": []string{"read"}},
		},
	}

	t.Run("Success_CreatesSubordinateRole", func(t *testing.T) {
		router, roles, audit := setupRoleRouter(adminIdentity())

		roles.On("Create", mock.Anything, mock.MatchedBy(func(input *identityDomain.CreateRoleInput) bool {
			return input.Name == "auditor" && input.Level == 3 && len(input.Grants) == 1
		})).Return(auditorRole(), nil).Once()

		w := performJSON(t, router, http.MethodPost, "/v1/roles", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"auditor"`)
		roles.AssertExpectations(t)

		events := audit.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.ActionRoleCreate, events[0].Action)
		assert.Equal(t, "auditor", events[0].ResourceID)
		assert.Equal(t, auditDomain.OutcomeSuccess, events[0].Outcome)
		assert.Equal(t, 3, events[0].NewValues["level"])
	})

	t.Run("Error_DefiningPeerLevel", func(t *testing.T) {
		router, roles, audit := setupRoleRouter(adminIdentity())

		peer := map[string]any{"name": "co-admin", "level": 2}
		w := performJSON(t, router, http.MethodPost, "/v1/roles", peer)

		assert.Equal(t, http.StatusForbidden, w.Code)
		roles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, audit.recorded())
	})

	t.Run("Error_MissingLevel", func(t *testing.T) {
		router, roles, _ := setupRoleRouter(adminIdentity())

		w := performJSON(t, router, http.MethodPost, "/v1/roles", map[string]any{"name": "x"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		roles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error_DuplicateName", func(t *testing.T) {
		router, roles, audit := setupRoleRouter(adminIdentity())

		roles.On("Create", mock.Anything, mock.Anything).
			Return(nil, identityDomain.ErrRoleAlreadyExists).
			Once()

		w := performJSON(t, router, http.MethodPost, "/v1/roles", body)

		assert.Equal(t, http.StatusConflict, w.Code)

		events := audit.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.OutcomeFailed, events[0].Outcome)
	})
}

func TestRoleHandler_Update(t *testing.T) {
	body := map[string]any{
		"level": 4,
		"grants": []map[string]any{
			{"resource": "audit-events", "actions": []string{"read"}},
		},
	}

	t.Run("Success_UpdatesSubordinateRole", func(t *testing.T) {
		router, roles, audit := setupRoleRouter(adminIdentity())

		roles.On("Get", mock.Anything, "auditor").Return(auditorRole(), nil).Once()
		roles.On("Update", mock.Anything, "auditor", mock.MatchedBy(func(input *identityDomain.UpdateRoleInput) bool {
			return input.Level == 4
		})).Return(nil).Once()

		w := performJSON(t, router, http.MethodPut, "/v1/roles/auditor", body)

		assert.Equal(t, http.StatusNoContent, w.Code)
		roles.AssertExpectations(t)

		events := audit.recorded()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.ActionRoleUpdate, events[0].Action)
		assert.Equal(t, "auditor", events[0].ResourceID)
		assert.Equal(t, 3, events[0].OldValues["level"])
		assert.Equal(t, 4, events[0].NewValues["level"])
	})

	t.Run("Error_PromotingRolePastActor", func(t *testing.T) {
		router, roles, audit := setupRoleRouter(adminIdentity())

		roles.On("Get", mock.Anything, "auditor").Return(auditorRole(), nil).Once()

		promote := map[string]any{"level": 1}
		w := performJSON(t, router, http.MethodPut, "/v1/roles/auditor", promote)

		assert.Equal(t, http.StatusForbidden, w.Code)
		roles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, audit.recorded())
	})

	t.Run("Error_RoleNotFound", func(t *testing.T) {
		router, roles, _ := setupRoleRouter(adminIdentity())

		roles.On("Get", mock.Anything, "ghost").
			Return(nil, identityDomain.ErrRoleNotFound).
			Once()

		w := performJSON(t, router, http.MethodPut, "/v1/roles/ghost", body)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRoleHandler_Get(t *testing.T) {
	t.Run("Success_ReturnsRole", func(t *testing.T) {
		router, roles, _ := setupRoleRouter(adminIdentity())

		roles.On("Get", mock.Anything, "auditor").Return(auditorRole(), nil).Once()

		w := performJSON(t, router, http.MethodGet, "/v1/roles/auditor", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"level":3`)
	})
}

func TestRoleHandler_List(t *testing.T) {
	t.Run("Success_ReturnsCatalog", func(t *testing.T) {
		router, roles, _ := setupRoleRouter(adminIdentity())

		now := time.Now().UTC()
		catalog := []*identityDomain.Role{
			{Name: "root", Level: 1, CreatedAt: now, UpdatedAt: now},
			{Name: "admin", Level: 2, CreatedAt: now, UpdatedAt: now},
			{Name: "auditor", Level: 3, CreatedAt: now, UpdatedAt: now},
		}
		roles.On("List", mock.Anything).Return(catalog, nil).Once()

		w := performJSON(t, router, http.MethodGet, "/v1/roles", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Data, 3)
	})
}
