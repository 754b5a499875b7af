package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
)

func newMockRepo(t *testing.T) (*PostgreSQLCredentialRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewPostgreSQLCredentialRepository(db), mock
}

func TestPostgreSQLCredentialRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	credential := &authDomain.RefreshCredential{
		ID:         uuid.Must(uuid.NewV7()),
		TokenHash:  "abcd1234",
		OperatorID: uuid.Must(uuid.NewV7()),
		ExpiresAt:  time.Now().UTC().Add(7 * 24 * time.Hour),
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO refresh_credentials`).
		WithArgs(
			credential.ID, credential.TokenHash, credential.OperatorID,
			credential.ExpiresAt, nil, nil, credential.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(ctx, credential))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCredentialRepository_GetByTokenHash(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Found", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		id := uuid.Must(uuid.NewV7())
		operatorID := uuid.Must(uuid.NewV7())
		expiresAt := time.Now().UTC().Add(time.Hour)
		createdAt := time.Now().UTC()

		rows := sqlmock.NewRows([]string{
			"id", "token_hash", "operator_id", "expires_at", "revoked_at", "replaced_by_id", "created_at",
		}).AddRow(id, "abcd1234", operatorID, expiresAt, nil, nil, createdAt)

		mock.ExpectQuery(`SELECT (.+) FROM refresh_credentials WHERE token_hash`).
			WithArgs("abcd1234").
			WillReturnRows(rows)

		credential, err := repo.GetByTokenHash(ctx, "abcd1234")
		require.NoError(t, err)
		assert.Equal(t, id, credential.ID)
		assert.Equal(t, operatorID, credential.OperatorID)
		assert.Nil(t, credential.RevokedAt)
		assert.Nil(t, credential.ReplacedByID)
		assert.True(t, credential.IsLive(time.Now().UTC()))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT (.+) FROM refresh_credentials WHERE token_hash`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "token_hash", "operator_id", "expires_at", "revoked_at", "replaced_by_id", "created_at",
			}))

		credential, err := repo.GetByTokenHash(ctx, "missing")
		assert.Nil(t, credential)
		assert.ErrorIs(t, err, authDomain.ErrCredentialNotFound)
	})
}

func TestPostgreSQLCredentialRepository_MarkReplaced(t *testing.T) {
	ctx := context.Background()
	credentialID := uuid.Must(uuid.NewV7())
	successorID := uuid.Must(uuid.NewV7())

	t.Run("Success_CredentialStillLive", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(`UPDATE refresh_credentials\s+SET replaced_by_id`).
			WithArgs(successorID, credentialID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkReplaced(ctx, credentialID, successorID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_LostTheRace", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		// A concurrent refresh already rotated this credential
		mock.ExpectExec(`UPDATE refresh_credentials\s+SET replaced_by_id`).
			WithArgs(successorID, credentialID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkReplaced(ctx, credentialID, successorID)
		assert.ErrorIs(t, err, authDomain.ErrCredentialRevoked)
	})
}

func TestPostgreSQLCredentialRepository_RevokeAllForOperator(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	operatorID := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`UPDATE refresh_credentials\s+SET revoked_at`).
		WithArgs(sqlmock.AnyArg(), operatorID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	revoked, err := repo.RevokeAllForOperator(ctx, operatorID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), revoked)
}

func TestPostgreSQLCredentialRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	cutoff := time.Now().UTC()

	mock.ExpectExec(`DELETE FROM refresh_credentials WHERE expires_at`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	deleted, err := repo.DeleteExpired(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
}
