package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// mockOperatorUseCase is a mock implementation of OperatorUseCase for testing.
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

// mockRoleUseCase is a mock implementation of RoleUseCase for testing.
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

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(
	ctx context.Context,
	domain, operation, status string,
) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

// expectMetrics registers the counter and duration expectations for one
// identity operation.
func expectMetrics(m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", mock.Anything, "identity", operation, status).Once()
	m.On("RecordDuration",
		mock.Anything, "identity", operation, mock.AnythingOfType("time.Duration"), status).
		Once()
}

func TestOperatorMetricsDecorator(t *testing.T) {
	t.Run("Success_Create", func(t *testing.T) {
		next := &mockOperatorUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewOperatorUseCaseWithMetrics(next, m)

		input := &identityDomain.CreateOperatorInput{Email: "a@b.example", RoleName: "auditor"}
		next.On("Create", mock.Anything, input).Return(storedOperator(), nil).Once()
		expectMetrics(m, "operator_create", "success")

		operator, err := decorated.Create(context.Background(), input)

		require.NoError(t, err)
		assert.NotNil(t, operator)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Error_CreateFailureIsRecorded", func(t *testing.T) {
		next := &mockOperatorUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewOperatorUseCaseWithMetrics(next, m)

		input := &identityDomain.CreateOperatorInput{Email: "a@b.example", RoleName: "ghost"}
		next.On("Create", mock.Anything, input).
			Return(nil, identityDomain.ErrRoleNotFound).
			Once()
		expectMetrics(m, "operator_create", "error")

		_, err := decorated.Create(context.Background(), input)

		assert.ErrorIs(t, err, identityDomain.ErrRoleNotFound)
		m.AssertExpectations(t)
	})

	t.Run("Success_Unlock", func(t *testing.T) {
		next := &mockOperatorUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewOperatorUseCaseWithMetrics(next, m)

		operatorID := uuid.Must(uuid.NewV7())
		next.On("Unlock", mock.Anything, operatorID).Return(nil).Once()
		expectMetrics(m, "operator_unlock", "success")

		err := decorated.Unlock(context.Background(), operatorID)

		require.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("Success_List", func(t *testing.T) {
		next := &mockOperatorUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewOperatorUseCaseWithMetrics(next, m)

		next.On("List", mock.Anything, 0, 50).
			Return([]*identityDomain.Operator{storedOperator()}, nil).
			Once()
		expectMetrics(m, "operator_list", "success")

		operators, err := decorated.List(context.Background(), 0, 50)

		require.NoError(t, err)
		assert.Len(t, operators, 1)
		m.AssertExpectations(t)
	})
}

func TestRoleMetricsDecorator(t *testing.T) {
	t.Run("Success_Create", func(t *testing.T) {
		next := &mockRoleUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewRoleUseCaseWithMetrics(next, m)

		input := &identityDomain.CreateRoleInput{Name: "auditor", Level: 3}
		next.On("Create", mock.Anything, input).Return(auditorRole(), nil).Once()
		expectMetrics(m, "role_create", "success")

		role, err := decorated.Create(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, "auditor", role.Name)
		m.AssertExpectations(t)
	})

	t.Run("Error_UpdateFailureIsRecorded", func(t *testing.T) {
		next := &mockRoleUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewRoleUseCaseWithMetrics(next, m)

		input := &identityDomain.UpdateRoleInput{Level: 4}
		next.On("Update", mock.Anything, "ghost", input).
			Return(identityDomain.ErrRoleNotFound).
			Once()
		expectMetrics(m, "role_update", "error")

		err := decorated.Update(context.Background(), "ghost", input)

		assert.ErrorIs(t, err, identityDomain.ErrRoleNotFound)
		m.AssertExpectations(t)
	})
}
