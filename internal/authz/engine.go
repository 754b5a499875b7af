// Package authz implements the authorization engine: an ordered list of pure
// rule functions evaluating role hierarchy, explicit grants, conditional
// predicates, and resource ownership.
package authz

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	auditUseCase "github.com/adminguard/adminguard/internal/audit/usecase"
	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	apperrors "github.com/adminguard/adminguard/internal/errors"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// OwnerAccessor resolves the owner identity of a protected resource. It is
// injected per protected route so the engine stays storage-agnostic.
type OwnerAccessor func(ctx context.Context, resourceID string) (uuid.UUID, error)

// Request describes one authorization decision.
type Request struct {
	Resource string
	Action   string

	// Context is the flat request-context map grant conditions evaluate
	// against (body/query/path fields).
	Context map[string]any

	// ResourceID identifies the target for ownership checks. Required when
	// the matched grant is resource-scoped.
	ResourceID string

	// TargetLevel is the role level of the target identity for
	// hierarchy-sensitive actions (assigning, editing, or deleting another
	// identity or role). Nil for actions without a target identity.
	TargetLevel *int

	// RequestInfo carries the transport attributes recorded with deny events.
	RequestInfo auditDomain.RequestContext
}

// AuditRecorder is the slice of the audit trail the engine reports denials to.
type AuditRecorder interface {
	Record(ctx context.Context, input auditUseCase.RecordInput) error
}

// BulkLimits configures the two-tier bulk operation guard.
type BulkLimits struct {
	// StandardLimit is the item count every role may operate on at once.
	StandardLimit int

	// ElevatedLimit is the item count roles at or above AdminLevelFloor may
	// operate on. Nothing exceeds it.
	ElevatedLimit int

	// AdminLevelFloor is the least privileged level still treated as
	// admin-or-above for the elevated tier.
	AdminLevelFloor int
}

// Engine evaluates authorization requests against an identity snapshot.
//
// Rules run in a fixed order: super admin, explicit grant, grant conditions,
// ownership, hierarchy. The hierarchy rule is absolute: it runs after the
// grant and condition checks and denies regardless of their outcome. Every
// deny is reported to the audit trail without blocking the decision.
type Engine struct {
	ownerAccessors map[string]OwnerAccessor
	recorder       AuditRecorder
	limits         BulkLimits
	logger         *slog.Logger
	rules          []rule
}

// evaluation carries per-decision state between rules.
type evaluation struct {
	actor *authDomain.IdentityContext
	req   *Request

	// grant is the explicit grant matched by grantRule; later rules read it.
	grant *identityDomain.Grant
}

// rule is a single authorization predicate. Returning done=true ends the
// evaluation: the decision is allow when err is nil, deny otherwise.
type rule func(ctx context.Context, ev *evaluation) (done bool, err error)

// NewEngine creates an authorization engine. ownerAccessors maps resource
// names to their owner lookup; resources without an entry cannot carry
// resource-scoped grants.
func NewEngine(
	ownerAccessors map[string]OwnerAccessor,
	recorder AuditRecorder,
	limits BulkLimits,
	logger *slog.Logger,
) *Engine {
	e := &Engine{
		ownerAccessors: ownerAccessors,
		recorder:       recorder,
		limits:         limits,
		logger:         logger,
	}
	e.rules = []rule{
		e.superAdminRule,
		e.grantRule,
		e.conditionRule,
		e.ownershipRule,
		e.hierarchyRule,
	}
	return e
}

// Authorize decides whether the actor may perform the request. A nil return
// means allow; deny errors wrap ErrForbidden.
func (e *Engine) Authorize(
	ctx context.Context,
	actor *authDomain.IdentityContext,
	req *Request,
) error {
	ev := &evaluation{actor: actor, req: req}

	for _, r := range e.rules {
		done, err := r(ctx, ev)
		if err != nil {
			// Owner accessor failures are infrastructure errors, not denies;
			// only actual denies reach the audit trail.
			if apperrors.Is(err, apperrors.ErrForbidden) {
				e.reportDeny(ctx, actor, req, err)
			}
			return err
		}
		if done {
			return nil
		}
	}

	return nil
}

// superAdminRule allows the most privileged level unconditionally.
func (e *Engine) superAdminRule(_ context.Context, ev *evaluation) (bool, error) {
	if ev.actor.IsSuperAdmin() {
		return true, nil
	}
	return false, nil
}

// grantRule requires an explicit (resource, action) grant.
func (e *Engine) grantRule(_ context.Context, ev *evaluation) (bool, error) {
	for i := range ev.actor.Grants {
		grant := &ev.actor.Grants[i]
		if grant.Resource == ev.req.Resource && grant.Allows(ev.req.Action) {
			ev.grant = grant
			return false, nil
		}
	}
	return false, ErrPermissionDenied
}

// conditionRule requires every condition on the matched grant to hold.
func (e *Engine) conditionRule(_ context.Context, ev *evaluation) (bool, error) {
	for i := range ev.grant.Conditions {
		if !ev.grant.Conditions[i].Evaluate(ev.req.Context) {
			return false, ErrPermissionDenied
		}
	}
	return false, nil
}

// ownershipRule requires the actor to own the target of a resource-scoped
// grant, unless the role bypasses ownership.
func (e *Engine) ownershipRule(ctx context.Context, ev *evaluation) (bool, error) {
	if ev.grant.OwnerField == "" || ev.actor.BypassOwnership {
		return false, nil
	}

	accessor, ok := e.ownerAccessors[ev.req.Resource]
	if !ok {
		// A resource-scoped grant on a resource without an owner lookup is a
		// configuration error; fail closed.
		e.logger.Error("no owner accessor configured for resource",
			slog.String("resource", ev.req.Resource))
		return false, ErrNotOwner
	}

	ownerID, err := accessor(ctx, ev.req.ResourceID)
	if err != nil {
		return false, err
	}
	if ownerID != ev.actor.OperatorID {
		return false, ErrNotOwner
	}
	return false, nil
}

// hierarchyRule requires the actor to strictly outrank the target level on
// hierarchy-sensitive actions. Equal levels deny.
func (e *Engine) hierarchyRule(_ context.Context, ev *evaluation) (bool, error) {
	if ev.req.TargetLevel == nil {
		return false, nil
	}
	if ev.actor.Level >= *ev.req.TargetLevel {
		return false, ErrHierarchyViolation
	}
	return false, nil
}

// CheckBulkSize applies the two-tier bulk operation guard.
//
// Item counts up to StandardLimit pass for every role. Between StandardLimit
// and ElevatedLimit the actor's level must be at or above AdminLevelFloor.
// Nothing exceeds ElevatedLimit. Exactly-at-threshold passes on both tiers.
func (e *Engine) CheckBulkSize(
	ctx context.Context,
	actor *authDomain.IdentityContext,
	itemCount int,
	requestInfo auditDomain.RequestContext,
) error {
	if itemCount <= e.limits.StandardLimit {
		return nil
	}

	if itemCount > e.limits.ElevatedLimit || actor.Level > e.limits.AdminLevelFloor {
		e.reportBulkDeny(ctx, actor, itemCount, requestInfo)
		return ErrBulkLimitExceeded
	}

	return nil
}

// reportDeny emits the audit event for a denied decision. PermissionDenied
// and NotOwner record as medium severity, HierarchyViolation as high.
// Recording failures never block the decision.
func (e *Engine) reportDeny(
	ctx context.Context,
	actor *authDomain.IdentityContext,
	req *Request,
	denyErr error,
) {
	action := auditDomain.ActionPermissionDenied
	severity := auditDomain.SeverityMedium
	if denyErr == ErrHierarchyViolation {
		action = auditDomain.ActionHierarchyViolation
		severity = auditDomain.SeverityHigh
	}

	recordErr := e.recorder.Record(ctx, auditUseCase.RecordInput{
		OperatorID: &actor.OperatorID,
		Action:     action,
		Resource:   req.Resource,
		ResourceID: req.ResourceID,
		Outcome:    auditDomain.OutcomeDenied,
		Severity:   severity,
		Request:    req.RequestInfo,
		NewValues: map[string]any{
			"requested_action": req.Action,
			"reason":           denyErr.Error(),
		},
	})
	if recordErr != nil {
		e.logger.Error("failed to record authorization deny",
			slog.Any("error", recordErr))
	}
}

// reportBulkDeny emits the BULK_LIMIT_EXCEEDED event.
func (e *Engine) reportBulkDeny(
	ctx context.Context,
	actor *authDomain.IdentityContext,
	itemCount int,
	requestInfo auditDomain.RequestContext,
) {
	recordErr := e.recorder.Record(ctx, auditUseCase.RecordInput{
		OperatorID: &actor.OperatorID,
		Action:     auditDomain.ActionBulkLimitExceeded,
		Resource:   "bulk",
		Outcome:    auditDomain.OutcomeDenied,
		Severity:   auditDomain.SeverityMedium,
		Request:    requestInfo,
		NewValues: map[string]any{
			"item_count":     itemCount,
			"standard_limit": e.limits.StandardLimit,
			"elevated_limit": e.limits.ElevatedLimit,
		},
	})
	if recordErr != nil {
		e.logger.Error("failed to record bulk limit deny",
			slog.Any("error", recordErr))
	}
}
