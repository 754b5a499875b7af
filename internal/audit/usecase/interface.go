// Package usecase defines business logic interfaces for the security audit trail.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
)

// EventRepository defines persistence operations for audit events.
// Implementations must support transaction-aware operations via context propagation.
type EventRepository interface {
	// Create stores a new event in the repository.
	Create(ctx context.Context, event *auditDomain.Event) error

	// List retrieves events ordered by created_at descending with pagination
	// and optional inclusive time filters (nil means no filter).
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.Event, error)

	// ListByOperatorSince retrieves all events for one operator newer than
	// the given instant, newest first.
	ListByOperatorSince(
		ctx context.Context,
		operatorID uuid.UUID,
		since time.Time,
	) ([]*auditDomain.Event, error)

	// CountSince returns the number of events newer than the given instant.
	CountSince(ctx context.Context, since time.Time) (int, error)

	// CountSecurityEventsSince counts high and critical severity events.
	CountSecurityEventsSince(ctx context.Context, since time.Time) (int, error)

	// CountPermissionViolationsSince counts authorization denial events.
	CountPermissionViolationsSince(ctx context.Context, since time.Time) (int, error)

	// TopOriginsSince returns the most frequent network origins by event count.
	TopOriginsSince(ctx context.Context, since time.Time, limit int) ([]auditDomain.OriginCount, error)

	// DeleteOlderThan removes events older than the cutoff for retention.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RecordInput describes one auditable occurrence. The recorder assigns the
// event id, timestamp, and signature.
type RecordInput struct {
	OperatorID *uuid.UUID
	Action     string
	Resource   string
	ResourceID string
	Outcome    auditDomain.Outcome
	Severity   auditDomain.Severity
	Request    auditDomain.RequestContext
	OldValues  map[string]any
	NewValues  map[string]any
}

// Recorder appends signed events to the audit trail.
//
// Record is non-blocking under normal load: events flow through a bounded
// queue drained by a background worker. When the queue is full the recorder
// falls back to synchronous persistence so no event is ever dropped.
type Recorder interface {
	// Record signs the event and enqueues it for persistence. Falls back to
	// synchronous persistence when the queue is full.
	Record(ctx context.Context, input RecordInput) error

	// RecordSync signs and persists the event before returning. Used for
	// critical events that must be durable before the response is sent.
	RecordSync(ctx context.Context, input RecordInput) error

	// WrapAction runs fn and records exactly one event with the outcome
	// derived from fn's error: success when nil, failed otherwise. An unset
	// Severity defaults to low on success and medium on failure. fn may fill
	// identifiers discovered during the action (a generated resource id,
	// value snapshots) before the event is recorded. Returns fn's error.
	WrapAction(ctx context.Context, input *RecordInput, fn func(ctx context.Context) error) error

	// Close stops the background worker after draining the queue.
	Close(ctx context.Context) error
}

// TrailUseCase defines read-side operations over the audit trail: querying,
// integrity verification, suspicious-activity detection, reporting, and
// retention.
type TrailUseCase interface {
	// List retrieves events with pagination and optional time filters.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.Event, error)

	// Verify walks the trail in batches and recomputes every signature.
	// Returns the number of events checked and the ids of events whose
	// signature did not match.
	Verify(ctx context.Context, batchSize int) (checked int, invalid []uuid.UUID, err error)

	// DetectSuspiciousActivity scans one operator's recent events for known
	// abuse patterns. A clean trail yields an empty slice.
	DetectSuspiciousActivity(
		ctx context.Context,
		operatorID uuid.UUID,
		window time.Duration,
	) ([]auditDomain.Finding, error)

	// GenerateReport aggregates the trail over the trailing number of days.
	GenerateReport(ctx context.Context, days int) (*auditDomain.Report, error)

	// Purge removes events older than the retention cutoff.
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}
