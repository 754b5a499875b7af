package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	"github.com/adminguard/adminguard/internal/metrics"
)

// trailUseCaseWithMetrics decorates TrailUseCase with metrics instrumentation.
type trailUseCaseWithMetrics struct {
	next    TrailUseCase
	metrics metrics.BusinessMetrics
}

// NewTrailUseCaseWithMetrics wraps a TrailUseCase with metrics recording.
func NewTrailUseCaseWithMetrics(useCase TrailUseCase, m metrics.BusinessMetrics) TrailUseCase {
	return &trailUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration for one call.
func (t *trailUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	t.metrics.RecordOperation(ctx, "audit", operation, status)
	t.metrics.RecordDuration(ctx, "audit", operation, time.Since(start), status)
}

func (t *trailUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	start := time.Now()
	events, err := t.next.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	t.record(ctx, "list", start, err)
	return events, err
}

func (t *trailUseCaseWithMetrics) Verify(
	ctx context.Context,
	batchSize int,
) (int, []uuid.UUID, error) {
	start := time.Now()
	checked, invalid, err := t.next.Verify(ctx, batchSize)
	t.record(ctx, "verify", start, err)
	return checked, invalid, err
}

func (t *trailUseCaseWithMetrics) DetectSuspiciousActivity(
	ctx context.Context,
	operatorID uuid.UUID,
	window time.Duration,
) ([]auditDomain.Finding, error) {
	start := time.Now()
	findings, err := t.next.DetectSuspiciousActivity(ctx, operatorID, window)
	t.record(ctx, "detect_suspicious_activity", start, err)
	return findings, err
}

func (t *trailUseCaseWithMetrics) GenerateReport(
	ctx context.Context,
	days int,
) (*auditDomain.Report, error) {
	start := time.Now()
	report, err := t.next.GenerateReport(ctx, days)
	t.record(ctx, "generate_report", start, err)
	return report, err
}

func (t *trailUseCaseWithMetrics) Purge(
	ctx context.Context,
	retention time.Duration,
) (int64, error) {
	start := time.Now()
	purged, err := t.next.Purge(ctx, retention)
	t.record(ctx, "purge", start, err)
	return purged, err
}
