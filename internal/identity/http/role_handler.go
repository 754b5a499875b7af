package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	authHTTP "github.com/adminguard/adminguard/internal/auth/http"
	"github.com/adminguard/adminguard/internal/authz"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	"github.com/adminguard/adminguard/internal/httputil"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
	"github.com/adminguard/adminguard/internal/identity/http/dto"
	identityUseCase "github.com/adminguard/adminguard/internal/identity/usecase"
	customValidation "github.com/adminguard/adminguard/internal/validation"
)

// roleResource is the resource name role grants are written against.
const roleResource = "roles"

// RoleHandler handles HTTP requests for the role catalog.
type RoleHandler struct {
	roleUseCase identityUseCase.RoleUseCase
	recorder    ActionRecorder
	engine      *authz.Engine
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler with required dependencies.
func NewRoleHandler(
	roleUC identityUseCase.RoleUseCase,
	recorder ActionRecorder,
	engine *authz.Engine,
	logger *slog.Logger,
) *RoleHandler {
	return &RoleHandler{
		roleUseCase: roleUC,
		recorder:    recorder,
		engine:      engine,
		logger:      logger,
	}
}

// authorize runs a full engine decision with the role level as the hierarchy
// target: defining or reshaping a privilege tier requires outranking it.
func (h *RoleHandler) authorize(c *gin.Context, action string, targetLevel int) error {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok || identity == nil {
		return apperrors.ErrUnauthorized
	}

	return h.engine.Authorize(c.Request.Context(), identity, &authz.Request{
		Resource:    roleResource,
		Action:      action,
		ResourceID:  c.Param("name"),
		TargetLevel: &targetLevel,
		RequestInfo: authz.RequestInfoFromGin(c),
	})
}

// CreateHandler creates a new role definition.
// POST /v1/roles - The actor must outrank the level being defined.
// Returns 201 Created.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRoleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.authorize(c, "create", req.Level); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	input := recordInput(c, auditDomain.ActionRoleCreate, roleResource, req.Name)
	input.NewValues = map[string]any{
		"level":                   req.Level,
		"can_create_subordinates": req.CanCreateSubordinates,
		"bypass_ownership":        req.BypassOwnership,
	}
	var role *identityDomain.Role
	err := h.recorder.WrapAction(c.Request.Context(), input, func(ctx context.Context) error {
		var createErr error
		role, createErr = h.roleUseCase.Create(ctx, &identityDomain.CreateRoleInput{
			Name:                  req.Name,
			Level:                 req.Level,
			CanCreateSubordinates: req.CanCreateSubordinates,
			BypassOwnership:       req.BypassOwnership,
			Grants:                req.Grants,
		})
		return createErr
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRoleToResponse(role))
}

// UpdateHandler modifies an existing role definition.
// PUT /v1/roles/:name - The actor must outrank both the current and the new
// level. Returns 204 No Content.
func (h *RoleHandler) UpdateHandler(c *gin.Context) {
	name := c.Param("name")

	var req dto.UpdateRoleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Get(c.Request.Context(), name)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	targetLevel := role.Level
	if req.Level < targetLevel {
		targetLevel = req.Level
	}
	if err := h.authorize(c, "update", targetLevel); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	input := recordInput(c, auditDomain.ActionRoleUpdate, roleResource, name)
	input.OldValues = map[string]any{
		"level":                   role.Level,
		"can_create_subordinates": role.CanCreateSubordinates,
		"bypass_ownership":        role.BypassOwnership,
	}
	input.NewValues = map[string]any{
		"level":                   req.Level,
		"can_create_subordinates": req.CanCreateSubordinates,
		"bypass_ownership":        req.BypassOwnership,
	}
	err = h.recorder.WrapAction(c.Request.Context(), input, func(ctx context.Context) error {
		return h.roleUseCase.Update(ctx, name, &identityDomain.UpdateRoleInput{
			Level:                 req.Level,
			CanCreateSubordinates: req.CanCreateSubordinates,
			BypassOwnership:       req.BypassOwnership,
			Grants:                req.Grants,
		})
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// GetHandler retrieves one role by name.
// GET /v1/roles/:name - Requires a roles read grant.
// Returns 200 OK.
func (h *RoleHandler) GetHandler(c *gin.Context) {
	role, err := h.roleUseCase.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// ListHandler retrieves the full role catalog ordered by level.
// GET /v1/roles - Requires a roles read grant.
// Returns 200 OK.
func (h *RoleHandler) ListHandler(c *gin.Context) {
	roles, err := h.roleUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRolesToListResponse(roles))
}
