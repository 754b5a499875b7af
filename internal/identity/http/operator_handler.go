// Package http provides HTTP handlers for operator and role management.
//
// Read routes are guarded by the RequirePermission middleware alone. Mutating
// handlers authorize through the engine themselves because the hierarchy
// target level comes from the request body or the stored operator, neither of
// which the middleware can see.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	auditUseCase "github.com/adminguard/adminguard/internal/audit/usecase"
	authHTTP "github.com/adminguard/adminguard/internal/auth/http"
	"github.com/adminguard/adminguard/internal/authz"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	"github.com/adminguard/adminguard/internal/httputil"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
	"github.com/adminguard/adminguard/internal/identity/http/dto"
	identityUseCase "github.com/adminguard/adminguard/internal/identity/usecase"
	customValidation "github.com/adminguard/adminguard/internal/validation"
)

// operatorResource is the resource name operator grants are written against.
const operatorResource = "operators"

// SessionRevoker is the slice of the auth pipeline operator management needs.
type SessionRevoker interface {
	// RevokeOperatorSessions revokes every live credential of the operator.
	RevokeOperatorSessions(ctx context.Context, operatorID uuid.UUID) (int64, error)
}

// ActionRecorder is the slice of the audit trail mutating handlers write to.
// Every successful or failed admin mutation produces exactly one event.
type ActionRecorder interface {
	WrapAction(ctx context.Context, input *auditUseCase.RecordInput, fn func(ctx context.Context) error) error
}

// OperatorHandler handles HTTP requests for operator lifecycle management.
type OperatorHandler struct {
	operatorUseCase identityUseCase.OperatorUseCase
	roleUseCase     identityUseCase.RoleUseCase
	sessionRevoker  SessionRevoker
	recorder        ActionRecorder
	engine          *authz.Engine
	logger          *slog.Logger
}

// NewOperatorHandler creates a new operator handler with required dependencies.
func NewOperatorHandler(
	operatorUC identityUseCase.OperatorUseCase,
	roleUC identityUseCase.RoleUseCase,
	sessionRevoker SessionRevoker,
	recorder ActionRecorder,
	engine *authz.Engine,
	logger *slog.Logger,
) *OperatorHandler {
	return &OperatorHandler{
		operatorUseCase: operatorUC,
		roleUseCase:     roleUC,
		sessionRevoker:  sessionRevoker,
		recorder:        recorder,
		engine:          engine,
		logger:          logger,
	}
}

// recordInput assembles the audit event skeleton for one mutating request:
// the acting operator, the transport attributes, and the target resource.
func recordInput(c *gin.Context, action, resource, resourceID string) *auditUseCase.RecordInput {
	input := &auditUseCase.RecordInput{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Request:    authz.RequestInfoFromGin(c),
	}
	if identity, ok := authHTTP.GetIdentity(c.Request.Context()); ok && identity != nil {
		input.OperatorID = &identity.OperatorID
	}
	return input
}

// authorize runs a full engine decision with a hierarchy target level.
func (h *OperatorHandler) authorize(c *gin.Context, action string, targetLevel int) error {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok || identity == nil {
		return apperrors.ErrUnauthorized
	}

	return h.engine.Authorize(c.Request.Context(), identity, &authz.Request{
		Resource:    operatorResource,
		Action:      action,
		ResourceID:  c.Param("id"),
		TargetLevel: &targetLevel,
		RequestInfo: authz.RequestInfoFromGin(c),
	})
}

// targetLevelOf resolves the role level of the operator being acted on.
func (h *OperatorHandler) targetLevelOf(
	c *gin.Context,
	operator *identityDomain.Operator,
) (int, error) {
	role, err := h.roleUseCase.Get(c.Request.Context(), operator.RoleName)
	if err != nil {
		return 0, err
	}
	return role.Level, nil
}

// CreateHandler provisions a new operator.
// POST /v1/operators - The actor must outrank the level of the assigned role.
// Returns 201 Created with the operator (password hash excluded).
func (h *OperatorHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateOperatorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Get(c.Request.Context(), req.Role)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.authorize(c, "create", role.Level); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	input := recordInput(c, auditDomain.ActionOperatorCreate, operatorResource, "")
	var operator *identityDomain.Operator
	err = h.recorder.WrapAction(c.Request.Context(), input, func(ctx context.Context) error {
		var createErr error
		operator, createErr = h.operatorUseCase.Create(ctx, &identityDomain.CreateOperatorInput{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
			RoleName: req.Role,
			IsActive: req.IsActive,
		})
		if createErr != nil {
			return createErr
		}
		input.ResourceID = operator.ID.String()
		input.NewValues = map[string]any{
			"email":     operator.Email,
			"name":      operator.Name,
			"role":      operator.RoleName,
			"is_active": operator.IsActive,
		}
		return nil
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapOperatorToResponse(operator))
}

// UpdateHandler modifies name, role, and active status of an operator.
// PUT /v1/operators/:id - The actor must outrank both the operator's current
// role level and the newly assigned one. Returns 204 No Content.
func (h *OperatorHandler) UpdateHandler(c *gin.Context) {
	operatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdateOperatorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	operator, err := h.operatorUseCase.Get(c.Request.Context(), operatorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	currentLevel, err := h.targetLevelOf(c, operator)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	newRole, err := h.roleUseCase.Get(c.Request.Context(), req.Role)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Authorize against the more privileged of the two levels so neither
	// demoting an outranking operator nor promoting one past the actor slips
	// through.
	targetLevel := currentLevel
	if newRole.Level < targetLevel {
		targetLevel = newRole.Level
	}
	if err := h.authorize(c, "update", targetLevel); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	input := recordInput(c, auditDomain.ActionOperatorUpdate, operatorResource, operatorID.String())
	input.OldValues = map[string]any{
		"name":      operator.Name,
		"role":      operator.RoleName,
		"is_active": operator.IsActive,
	}
	input.NewValues = map[string]any{
		"name":      req.Name,
		"role":      req.Role,
		"is_active": req.IsActive,
	}
	err = h.recorder.WrapAction(c.Request.Context(), input, func(ctx context.Context) error {
		return h.operatorUseCase.Update(ctx, operatorID, &identityDomain.UpdateOperatorInput{
			Name:     req.Name,
			RoleName: req.Role,
			IsActive: req.IsActive,
		})
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// GetHandler retrieves one operator.
// GET /v1/operators/:id - Requires an operators read grant.
// Returns 200 OK.
func (h *OperatorHandler) GetHandler(c *gin.Context) {
	operatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	operator, err := h.operatorUseCase.Get(c.Request.Context(), operatorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOperatorToResponse(operator))
}

// ListHandler retrieves operators with pagination.
// GET /v1/operators?offset=0&limit=50 - Requires an operators read grant.
// Returns 200 OK.
func (h *OperatorHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	operators, err := h.operatorUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOperatorsToListResponse(operators))
}

// DisableHandler deactivates an operator. The record is kept so audit events
// retain a valid identity reference.
// DELETE /v1/operators/:id - The actor must outrank the operator.
// Returns 204 No Content.
func (h *OperatorHandler) DisableHandler(c *gin.Context) {
	operatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	operator, err := h.operatorUseCase.Get(c.Request.Context(), operatorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	targetLevel, err := h.targetLevelOf(c, operator)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.authorize(c, "delete", targetLevel); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	input := recordInput(c, auditDomain.ActionOperatorDisable, operatorResource, operatorID.String())
	input.OldValues = map[string]any{"is_active": operator.IsActive}
	input.NewValues = map[string]any{"is_active": false}
	err = h.recorder.WrapAction(c.Request.Context(), input, func(ctx context.Context) error {
		return h.operatorUseCase.Disable(ctx, operatorID)
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// UnlockHandler clears an operator's brute-force lockout state.
// POST /v1/operators/:id/unlock - The actor must outrank the operator.
// Returns 204 No Content.
func (h *OperatorHandler) UnlockHandler(c *gin.Context) {
	operatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	operator, err := h.operatorUseCase.Get(c.Request.Context(), operatorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	targetLevel, err := h.targetLevelOf(c, operator)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.authorize(c, "unlock", targetLevel); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	input := recordInput(c, auditDomain.ActionOperatorUnlock, operatorResource, operatorID.String())
	input.OldValues = map[string]any{
		"failed_attempts": operator.FailedAttempts,
		"lock_episodes":   operator.LockEpisodes,
	}
	err = h.recorder.WrapAction(c.Request.Context(), input, func(ctx context.Context) error {
		return h.operatorUseCase.Unlock(ctx, operatorID)
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RevokeSessionsHandler revokes every live session of an operator.
// POST /v1/operators/:id/revoke-sessions - The actor must outrank the operator.
// Returns 200 OK with the revoked count.
func (h *OperatorHandler) RevokeSessionsHandler(c *gin.Context) {
	operatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	operator, err := h.operatorUseCase.Get(c.Request.Context(), operatorID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	targetLevel, err := h.targetLevelOf(c, operator)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if err := h.authorize(c, "revoke_sessions", targetLevel); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	input := recordInput(c, auditDomain.ActionSessionsRevoked, operatorResource, operatorID.String())
	var revoked int64
	err = h.recorder.WrapAction(c.Request.Context(), input, func(ctx context.Context) error {
		var revokeErr error
		revoked, revokeErr = h.sessionRevoker.RevokeOperatorSessions(ctx, operatorID)
		if revokeErr != nil {
			return revokeErr
		}
		input.NewValues = map[string]any{"revoked_count": revoked}
		return nil
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeSessionsResponse{RevokedCount: revoked})
}
