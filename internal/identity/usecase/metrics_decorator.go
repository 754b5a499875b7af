package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
	"github.com/adminguard/adminguard/internal/metrics"
)

// operatorUseCaseWithMetrics decorates OperatorUseCase with metrics instrumentation.
type operatorUseCaseWithMetrics struct {
	next    OperatorUseCase
	metrics metrics.BusinessMetrics
}

// NewOperatorUseCaseWithMetrics wraps an OperatorUseCase with metrics recording.
func NewOperatorUseCaseWithMetrics(useCase OperatorUseCase, m metrics.BusinessMetrics) OperatorUseCase {
	return &operatorUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration for one call.
func (o *operatorUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	o.metrics.RecordOperation(ctx, "identity", operation, status)
	o.metrics.RecordDuration(ctx, "identity", operation, time.Since(start), status)
}

func (o *operatorUseCaseWithMetrics) Create(
	ctx context.Context,
	createOperatorInput *identityDomain.CreateOperatorInput,
) (*identityDomain.Operator, error) {
	start := time.Now()
	operator, err := o.next.Create(ctx, createOperatorInput)
	o.record(ctx, "operator_create", start, err)
	return operator, err
}

func (o *operatorUseCaseWithMetrics) Update(
	ctx context.Context,
	operatorID uuid.UUID,
	updateOperatorInput *identityDomain.UpdateOperatorInput,
) error {
	start := time.Now()
	err := o.next.Update(ctx, operatorID, updateOperatorInput)
	o.record(ctx, "operator_update", start, err)
	return err
}

func (o *operatorUseCaseWithMetrics) Get(
	ctx context.Context,
	operatorID uuid.UUID,
) (*identityDomain.Operator, error) {
	start := time.Now()
	operator, err := o.next.Get(ctx, operatorID)
	o.record(ctx, "operator_get", start, err)
	return operator, err
}

func (o *operatorUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*identityDomain.Operator, error) {
	start := time.Now()
	operators, err := o.next.List(ctx, offset, limit)
	o.record(ctx, "operator_list", start, err)
	return operators, err
}

func (o *operatorUseCaseWithMetrics) Disable(ctx context.Context, operatorID uuid.UUID) error {
	start := time.Now()
	err := o.next.Disable(ctx, operatorID)
	o.record(ctx, "operator_disable", start, err)
	return err
}

func (o *operatorUseCaseWithMetrics) Unlock(ctx context.Context, operatorID uuid.UUID) error {
	start := time.Now()
	err := o.next.Unlock(ctx, operatorID)
	o.record(ctx, "operator_unlock", start, err)
	return err
}

// roleUseCaseWithMetrics decorates RoleUseCase with metrics instrumentation.
type roleUseCaseWithMetrics struct {
	next    RoleUseCase
	metrics metrics.BusinessMetrics
}

// NewRoleUseCaseWithMetrics wraps a RoleUseCase with metrics recording.
func NewRoleUseCaseWithMetrics(useCase RoleUseCase, m metrics.BusinessMetrics) RoleUseCase {
	return &roleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration for one call.
func (r *roleUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordOperation(ctx, "identity", operation, status)
	r.metrics.RecordDuration(ctx, "identity", operation, time.Since(start), status)
}

func (r *roleUseCaseWithMetrics) Create(
	ctx context.Context,
	createRoleInput *identityDomain.CreateRoleInput,
) (*identityDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Create(ctx, createRoleInput)
	r.record(ctx, "role_create", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) Update(
	ctx context.Context,
	name string,
	updateRoleInput *identityDomain.UpdateRoleInput,
) error {
	start := time.Now()
	err := r.next.Update(ctx, name, updateRoleInput)
	r.record(ctx, "role_update", start, err)
	return err
}

func (r *roleUseCaseWithMetrics) Get(ctx context.Context, name string) (*identityDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Get(ctx, name)
	r.record(ctx, "role_get", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) List(ctx context.Context) ([]*identityDomain.Role, error) {
	start := time.Now()
	roles, err := r.next.List(ctx)
	r.record(ctx, "role_list", start, err)
	return roles, err
}
