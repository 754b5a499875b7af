package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// mockOperatorUseCase is a mock implementation of identityUseCase.OperatorUseCase.
type mockOperatorUseCase struct {
	mock.Mock
}

func (m *mockOperatorUseCase) Create(
	ctx context.Context,
	createOperatorInput *identityDomain.CreateOperatorInput,
) (*identityDomain.Operator, error) {
	args := m.Called(ctx, createOperatorInput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Operator), args.Error(1)
}

func (m *mockOperatorUseCase) Update(
	ctx context.Context,
	operatorID uuid.UUID,
	updateOperatorInput *identityDomain.UpdateOperatorInput,
) error {
	args := m.Called(ctx, operatorID, updateOperatorInput)
	return args.Error(0)
}

func (m *mockOperatorUseCase) Get(
	ctx context.Context,
	operatorID uuid.UUID,
) (*identityDomain.Operator, error) {
	args := m.Called(ctx, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Operator), args.Error(1)
}

func (m *mockOperatorUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*identityDomain.Operator, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.Operator), args.Error(1)
}

func (m *mockOperatorUseCase) Disable(ctx context.Context, operatorID uuid.UUID) error {
	args := m.Called(ctx, operatorID)
	return args.Error(0)
}

func (m *mockOperatorUseCase) Unlock(ctx context.Context, operatorID uuid.UUID) error {
	args := m.Called(ctx, operatorID)
	return args.Error(0)
}

// mockRoleUseCase is a mock implementation of identityUseCase.RoleUseCase.
type mockRoleUseCase struct {
	mock.Mock
}

func (m *mockRoleUseCase) Create(
	ctx context.Context,
	createRoleInput *identityDomain.CreateRoleInput,
) (*identityDomain.Role, error) {
	args := m.Called(ctx, createRoleInput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) Update(
	ctx context.Context,
	name string,
	updateRoleInput *identityDomain.UpdateRoleInput,
) error {
	args := m.Called(ctx, name, updateRoleInput)
	return args.Error(0)
}

func (m *mockRoleUseCase) Get(ctx context.Context, name string) (*identityDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) List(ctx context.Context) ([]*identityDomain.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.Role), args.Error(1)
}

// mockAuthUseCase is a mock implementation of authUseCase.AuthUseCase.
type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Authenticate(
	ctx context.Context,
	email, password string,
	request auditDomain.RequestContext,
) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, email, password, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

func (m *mockAuthUseCase) VerifyAccess(
	ctx context.Context,
	assertion string,
) (*authDomain.IdentityContext, error) {
	args := m.Called(ctx, assertion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IdentityContext), args.Error(1)
}

func (m *mockAuthUseCase) Refresh(
	ctx context.Context,
	plainRefreshToken string,
	request auditDomain.RequestContext,
) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, plainRefreshToken, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

func (m *mockAuthUseCase) Revoke(
	ctx context.Context,
	plainRefreshToken string,
	scope authDomain.RevocationScope,
	request auditDomain.RequestContext,
) error {
	args := m.Called(ctx, plainRefreshToken, scope, request)
	return args.Error(0)
}

func (m *mockAuthUseCase) RevokeOperatorSessions(
	ctx context.Context,
	operatorID uuid.UUID,
) (int64, error) {
	args := m.Called(ctx, operatorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAuthUseCase) ChangePassword(
	ctx context.Context,
	operatorID uuid.UUID,
	currentPassword, newPassword string,
	request auditDomain.RequestContext,
) error {
	args := m.Called(ctx, operatorID, currentPassword, newPassword, request)
	return args.Error(0)
}

func (m *mockAuthUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// mockTrailUseCase is a mock implementation of auditUseCase.TrailUseCase.
type mockTrailUseCase struct {
	mock.Mock
}

func (m *mockTrailUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Event), args.Error(1)
}

func (m *mockTrailUseCase) Verify(ctx context.Context, batchSize int) (int, []uuid.UUID, error) {
	args := m.Called(ctx, batchSize)
	invalid, _ := args.Get(1).([]uuid.UUID)
	return args.Int(0), invalid, args.Error(2)
}

func (m *mockTrailUseCase) DetectSuspiciousActivity(
	ctx context.Context,
	operatorID uuid.UUID,
	window time.Duration,
) ([]auditDomain.Finding, error) {
	args := m.Called(ctx, operatorID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditDomain.Finding), args.Error(1)
}

func (m *mockTrailUseCase) GenerateReport(ctx context.Context, days int) (*auditDomain.Report, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.Report), args.Error(1)
}

func (m *mockTrailUseCase) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}
