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

// MySQLEventRepository implements audit Event persistence for MySQL.
// Uses BINARY(16) for UUIDs with transaction support via database.GetTx().
type MySQLEventRepository struct {
	db *sql.DB
}

// Create appends a new Event.
func (m *MySQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event id")
	}

	var operatorID []byte
	if event.OperatorID != nil {
		operatorID, err = event.OperatorID.MarshalBinary()
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal operator id")
		}
	}

	oldJSON, newJSON, err := marshalValues(event)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events
			  (id, operator_id, action, resource, resource_id, outcome, severity,
			   origin, user_agent, method, endpoint, old_values, new_values, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		operatorID,
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
func (m *MySQLEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, operator_id, action, resource, resource_id, outcome, severity,
					 origin, user_agent, method, endpoint, old_values, new_values, signature, created_at
			  FROM audit_events
			  WHERE (? IS NULL OR created_at >= ?)
			    AND (? IS NULL OR created_at <= ?)
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(
		ctx, query,
		createdAtFrom, createdAtFrom,
		createdAtTo, createdAtTo,
		limit, offset,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return scanMySQLEvents(rows)
}

// ListByOperatorSince retrieves all events for one operator newer than the
// given instant, newest first.
func (m *MySQLEventRepository) ListByOperatorSince(
	ctx context.Context,
	operatorID uuid.UUID,
	since time.Time,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := operatorID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal operator id")
	}

	query := `SELECT id, operator_id, action, resource, resource_id, outcome, severity,
					 origin, user_agent, method, endpoint, old_values, new_values, signature, created_at
			  FROM audit_events
			  WHERE operator_id = ? AND created_at >= ?
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, id, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events by operator")
	}
	return scanMySQLEvents(rows)
}

// CountSince returns the total number of events newer than the given instant.
func (m *MySQLEventRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	querier := database.GetTx(ctx, m.db)

	var count int
	query := `SELECT COUNT(*) FROM audit_events WHERE created_at >= ?`
	if err := querier.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}
	return count, nil
}

// CountSecurityEventsSince counts high and critical severity events.
func (m *MySQLEventRepository) CountSecurityEventsSince(
	ctx context.Context,
	since time.Time,
) (int, error) {
	querier := database.GetTx(ctx, m.db)

	var count int
	query := `SELECT COUNT(*) FROM audit_events
			  WHERE created_at >= ? AND severity IN ('high', 'critical')`
	if err := querier.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count security events")
	}
	return count, nil
}

// CountPermissionViolationsSince counts permission-denied and
// hierarchy-violation events.
func (m *MySQLEventRepository) CountPermissionViolationsSince(
	ctx context.Context,
	since time.Time,
) (int, error) {
	querier := database.GetTx(ctx, m.db)

	var count int
	query := `SELECT COUNT(*) FROM audit_events
			  WHERE created_at >= ? AND action IN ('PERMISSION_DENIED', 'HIERARCHY_VIOLATION')`
	if err := querier.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count permission violations")
	}
	return count, nil
}

// TopOriginsSince returns the most frequent network origins by event count.
func (m *MySQLEventRepository) TopOriginsSince(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]auditDomain.OriginCount, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT origin, COUNT(*) AS event_count FROM audit_events
			  WHERE created_at >= ? AND origin <> ''
			  GROUP BY origin
			  ORDER BY event_count DESC
			  LIMIT ?`

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
func (m *MySQLEventRepository) DeleteOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read deleted rows")
	}
	return deleted, nil
}

// scanMySQLEvents drains an event result set, converting BINARY(16) ids.
func scanMySQLEvents(rows *sql.Rows) ([]*auditDomain.Event, error) {
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		var event auditDomain.Event
		var idBytes, operatorIDBytes []byte
		var outcome, severity string
		var oldJSON, newJSON []byte

		err := rows.Scan(
			&idBytes,
			&operatorIDBytes,
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

		event.ID, err = uuid.FromBytes(idBytes)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse event id")
		}

		if operatorIDBytes != nil {
			operatorID, err := uuid.FromBytes(operatorIDBytes)
			if err != nil {
				return nil, apperrors.Wrap(err, "failed to parse operator id")
			}
			event.OperatorID = &operatorID
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

// NewMySQLEventRepository creates a new MySQL audit Event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}
