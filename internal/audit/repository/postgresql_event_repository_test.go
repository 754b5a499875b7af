package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
)

var eventColumnNames = []string{
	"id", "operator_id", "action", "resource", "resource_id", "outcome", "severity",
	"origin", "user_agent", "method", "endpoint", "old_values", "new_values", "signature", "created_at",
}

func newMockDB(t *testing.T) (*PostgreSQLEventRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewPostgreSQLEventRepository(db), mock
}

func TestPostgreSQLEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_WithValues", func(t *testing.T) {
		repo, mock := newMockDB(t)

		operatorID := uuid.Must(uuid.NewV7())
		event := &auditDomain.Event{
			ID:         uuid.Must(uuid.NewV7()),
			OperatorID: &operatorID,
			Action:     auditDomain.ActionLogin,
			Resource:   "auth",
			Outcome:    auditDomain.OutcomeSuccess,
			Severity:   auditDomain.SeverityLow,
			Origin:     "192.0.2.1",
			Method:     "POST",
			Endpoint:   "/v1/auth/login",
			NewValues:  map[string]any{"email": "user@example.com"},
			Signature:  []byte{0x01, 0x02},
			CreatedAt:  time.Now().UTC(),
		}

		newJSON, err := json.Marshal(event.NewValues)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO audit_events`).
			WithArgs(
				event.ID, event.OperatorID, event.Action, event.Resource, event.ResourceID,
				string(event.Outcome), string(event.Severity), event.Origin, event.UserAgent,
				event.Method, event.Endpoint, nil, newJSON, event.Signature, event.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NilOperatorAndValues", func(t *testing.T) {
		repo, mock := newMockDB(t)

		event := &auditDomain.Event{
			ID:        uuid.Must(uuid.NewV7()),
			Action:    auditDomain.ActionLogin,
			Resource:  "auth",
			Outcome:   auditDomain.OutcomeFailed,
			Severity:  auditDomain.SeverityMedium,
			Signature: []byte{0x03},
			CreatedAt: time.Now().UTC(),
		}

		mock.ExpectExec(`INSERT INTO audit_events`).
			WithArgs(
				event.ID, nil, event.Action, event.Resource, event.ResourceID,
				string(event.Outcome), string(event.Severity), event.Origin, event.UserAgent,
				event.Method, event.Endpoint, nil, nil, event.Signature, event.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DatabaseFailure", func(t *testing.T) {
		repo, mock := newMockDB(t)

		event := &auditDomain.Event{
			ID:        uuid.Must(uuid.NewV7()),
			Action:    auditDomain.ActionLogin,
			CreatedAt: time.Now().UTC(),
		}

		mock.ExpectExec(`INSERT INTO audit_events`).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(ctx, event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create audit event")
	})
}

func TestPostgreSQLEventRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ScansAllFields", func(t *testing.T) {
		repo, mock := newMockDB(t)

		id := uuid.Must(uuid.NewV7())
		operatorID := uuid.Must(uuid.NewV7())
		createdAt := time.Now().UTC()
		newJSON := []byte(`{"email":"user@example.com"}`)

		rows := sqlmock.NewRows(eventColumnNames).AddRow(
			id, operatorID, "LOGIN", "auth", "", "success", "low",
			"192.0.2.1", "curl/8.0", "POST", "/v1/auth/login",
			nil, newJSON, []byte{0x01}, createdAt,
		)

		mock.ExpectQuery(`SELECT (.+) FROM audit_events`).
			WithArgs(nil, nil, 50, 0).
			WillReturnRows(rows)

		events, err := repo.List(ctx, 0, 50, nil, nil)
		require.NoError(t, err)
		require.Len(t, events, 1)

		event := events[0]
		assert.Equal(t, id, event.ID)
		require.NotNil(t, event.OperatorID)
		assert.Equal(t, operatorID, *event.OperatorID)
		assert.Equal(t, auditDomain.OutcomeSuccess, event.Outcome)
		assert.Equal(t, auditDomain.SeverityLow, event.Severity)
		assert.Nil(t, event.OldValues)
		assert.Equal(t, map[string]any{"email": "user@example.com"}, event.NewValues)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_EmptyResult", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT (.+) FROM audit_events`).
			WithArgs(nil, nil, 50, 0).
			WillReturnRows(sqlmock.NewRows(eventColumnNames))

		events, err := repo.List(ctx, 0, 50, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestPostgreSQLEventRepository_Counts(t *testing.T) {
	ctx := context.Background()
	since := time.Now().UTC().Add(-24 * time.Hour)

	t.Run("Success_CountSince", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_events WHERE created_at`).
			WithArgs(since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

		count, err := repo.CountSince(ctx, since)
		require.NoError(t, err)
		assert.Equal(t, 42, count)
	})

	t.Run("Success_CountSecurityEventsSince", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery(`severity IN \('high', 'critical'\)`).
			WithArgs(since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.CountSecurityEventsSince(ctx, since)
		require.NoError(t, err)
		assert.Equal(t, 7, count)
	})

	t.Run("Success_CountPermissionViolationsSince", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery(`action IN \('PERMISSION_DENIED', 'HIERARCHY_VIOLATION'\)`).
			WithArgs(since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountPermissionViolationsSince(ctx, since)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestPostgreSQLEventRepository_TopOriginsSince(t *testing.T) {
	ctx := context.Background()
	since := time.Now().UTC().Add(-24 * time.Hour)

	repo, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"origin", "event_count"}).
		AddRow("10.0.0.1", 42).
		AddRow("10.0.0.2", 7)

	mock.ExpectQuery(`GROUP BY origin`).
		WithArgs(since, 10).
		WillReturnRows(rows)

	origins, err := repo.TopOriginsSince(ctx, since, 10)
	require.NoError(t, err)
	require.Len(t, origins, 2)
	assert.Equal(t, auditDomain.OriginCount{Origin: "10.0.0.1", Count: 42}, origins[0])
	assert.Equal(t, auditDomain.OriginCount{Origin: "10.0.0.2", Count: 7}, origins[1])
}

func TestPostgreSQLEventRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-90 * 24 * time.Hour)

	repo, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM audit_events WHERE created_at`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 150))

	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(150), deleted)
}
