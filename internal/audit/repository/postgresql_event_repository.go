// Package repository implements data persistence for audit events.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). The created_at column is indexed because every read-side
// contract (reports, suspicious-activity scans, retention) filters by time.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	"github.com/adminguard/adminguard/internal/database"
	apperrors "github.com/adminguard/adminguard/internal/errors"
)

// PostgreSQLEventRepository implements audit Event persistence for PostgreSQL.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

const eventColumns = `id, operator_id, action, resource, resource_id, outcome, severity,
			  origin, user_agent, method, endpoint, old_values, new_values, signature, created_at`

// Create appends a new Event. Events are never updated or deleted outside
// the retention command; there is no Update method on purpose.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	oldJSON, newJSON, err := marshalValues(event)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (` + eventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
		event.OperatorID,
		event.Action,
		event.Resource,
		event.ResourceID,
		string(event.Outcome),
		string(event.Severity),
		event.Origin,
		event.UserAgent,
		event.Method,
		event.Endpoint,
		oldJSON,
		newJSON,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List retrieves events ordered by created_at descending with pagination and
// optional inclusive time filters (nil means unbounded).
func (p *PostgreSQLEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + ` FROM audit_events
			  WHERE ($1::timestamptz IS NULL OR created_at >= $1)
			    AND ($2::timestamptz IS NULL OR created_at <= $2)
			  ORDER BY created_at DESC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, createdAtFrom, createdAtTo, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return scanEvents(rows)
}

// ListByOperatorSince retrieves all events for one operator newer than the
// given instant, newest first. Used by suspicious-activity scans.
func (p *PostgreSQLEventRepository) ListByOperatorSince(
	ctx context.Context,
	operatorID uuid.UUID,
	since time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + ` FROM audit_events
			  WHERE operator_id = $1 AND created_at >= $2
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, operatorID, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events by operator")
	}
	return scanEvents(rows)
}

// CountSince returns the total number of events newer than the given instant.
func (p *PostgreSQLEventRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	querier := database.GetTx(ctx, p.db)

	var count int
	query := `SELECT COUNT(*) FROM audit_events WHERE created_at >= $1`
	if err := querier.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}
	return count, nil
}

// CountSecurityEventsSince counts high and critical severity events.
func (p *PostgreSQLEventRepository) CountSecurityEventsSince(
	ctx context.Context,
	since time.Time,
) (int, error) {
	querier := database.GetTx(ctx, p.db)

	var count int
	query := `SELECT COUNT(*) FROM audit_events
			  WHERE created_at >= $1 AND severity IN ('high', 'critical')`
	if err := querier.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count security events")
	}
	return count, nil
}

// CountPermissionViolationsSince counts permission-denied and
// hierarchy-violation events.
func (p *PostgreSQLEventRepository) CountPermissionViolationsSince(
	ctx context.Context,
	since time.Time,
) (int, error) {
	querier := database.GetTx(ctx, p.db)

	var count int
	query := `SELECT COUNT(*) FROM audit_events
			  WHERE created_at >= $1 AND action IN ('PERMISSION_DENIED', 'HIERARCHY_VIOLATION')`
	if err := querier.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count permission violations")
	}
	return count, nil
}

// TopOriginsSince returns the most frequent network origins by event count.
func (p *PostgreSQLEventRepository) TopOriginsSince(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]auditDomain.OriginCount, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT origin, COUNT(*) AS event_count FROM audit_events
			  WHERE created_at >= $1 AND origin <> ''
			  GROUP BY origin
			  ORDER BY event_count DESC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query top origins")
	}
	defer func() {
		_ = rows.Close()
	}()

	origins := make([]auditDomain.OriginCount, 0)
	for rows.Next() {
		var origin auditDomain.OriginCount
		if err := rows.Scan(&origin.Origin, &origin.Count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan origin count")
		}
		origins = append(origins, origin)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate origin counts")
	}

	return origins, nil
}

// DeleteOlderThan removes events older than the cutoff, for retention.
func (p *PostgreSQLEventRepository) DeleteOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read deleted rows")
	}
	return deleted, nil
}

// marshalValues serializes the old/new value snapshots, mapping nil to NULL.
func marshalValues(event *auditDomain.Event) (oldJSON, newJSON []byte, err error) {
	if event.OldValues != nil {
		if oldJSON, err = json.Marshal(event.OldValues); err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to marshal old values")
		}
	}
	if event.NewValues != nil {
		if newJSON, err = json.Marshal(event.NewValues); err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to marshal new values")
		}
	}
	return oldJSON, newJSON, nil
}

// scanEvents drains an event result set.
func scanEvents(rows *sql.Rows) ([]*auditDomain.Event, error) {
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		var event auditDomain.Event
		var outcome, severity string
		var oldJSON, newJSON []byte

		err := rows.Scan(
			&event.ID,
			&event.OperatorID,
			&event.Action,
			&event.Resource,
			&event.ResourceID,
			&outcome,
			&severity,
			&event.Origin,
			&event.UserAgent,
			&event.Method,
			&event.Endpoint,
			&oldJSON,
			&newJSON,
			&event.Signature,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}

		event.Outcome = auditDomain.Outcome(outcome)
		event.Severity = auditDomain.Severity(severity)

		if oldJSON != nil {
			if err := json.Unmarshal(oldJSON, &event.OldValues); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal old values")
			}
		}
		if newJSON != nil {
			if err := json.Unmarshal(newJSON, &event.NewValues); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal new values")
			}
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}

// NewPostgreSQLEventRepository creates a new PostgreSQL audit Event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}
