package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	auditService "github.com/adminguard/adminguard/internal/audit/service"
	apperrors "github.com/adminguard/adminguard/internal/errors"
)

// topOriginsLimit caps how many origins a report includes.
const topOriginsLimit = 10

// trailUseCase implements TrailUseCase.
type trailUseCase struct {
	eventRepo  EventRepository
	signer     auditService.EventSigner
	signingKey []byte

	failureThreshold int
	originThreshold  int
	denialThreshold  int
}

// List retrieves events with pagination and optional time filters.
func (t *trailUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.Event, error) {
	events, err := t.eventRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

// Verify walks the whole trail in batches and recomputes every signature.
func (t *trailUseCase) Verify(
	ctx context.Context,
	batchSize int,
) (int, []uuid.UUID, error) {
	var checked int
	var invalid []uuid.UUID

	for offset := 0; ; offset += batchSize {
		events, err := t.eventRepo.List(ctx, offset, batchSize, nil, nil)
		if err != nil {
			return checked, invalid, apperrors.Wrap(err, "failed to load audit events for verification")
		}
		if len(events) == 0 {
			break
		}

		for _, event := range events {
			ok, err := t.signer.Verify(t.signingKey, event)
			if err != nil {
				return checked, invalid, apperrors.Wrap(err, "failed to verify audit event signature")
			}
			checked++
			if !ok {
				invalid = append(invalid, event.ID)
			}
		}

		if len(events) < batchSize {
			break
		}
	}

	return checked, invalid, nil
}

// DetectSuspiciousActivity scans one operator's events inside the trailing
// window for abuse patterns: excessive failures, too many distinct origins,
// and repeated authorization denials.
func (t *trailUseCase) DetectSuspiciousActivity(
	ctx context.Context,
	operatorID uuid.UUID,
	window time.Duration,
) ([]auditDomain.Finding, error) {
	since := time.Now().UTC().Add(-window)

	events, err := t.eventRepo.ListByOperatorSince(ctx, operatorID, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load operator events")
	}

	var failures, denials int
	origins := make(map[string]struct{})
	for _, event := range events {
		switch event.Outcome {
		case auditDomain.OutcomeFailed:
			failures++
		case auditDomain.OutcomeDenied:
			denials++
		case auditDomain.OutcomeSuccess:
		}
		if event.Origin != "" {
			origins[event.Origin] = struct{}{}
		}
	}

	findings := make([]auditDomain.Finding, 0)

	if failures >= t.failureThreshold {
		findings = append(findings, auditDomain.Finding{
			Reason:     auditDomain.ReasonExcessiveFailures,
			OperatorID: operatorID,
			Count:      failures,
			Detail:     fmt.Sprintf("%d failed operations in %s", failures, window),
		})
	}

	if len(origins) >= t.originThreshold {
		findings = append(findings, auditDomain.Finding{
			Reason:     auditDomain.ReasonMultipleOrigins,
			OperatorID: operatorID,
			Count:      len(origins),
			Detail:     fmt.Sprintf("activity from %d distinct origins in %s", len(origins), window),
		})
	}

	if denials >= t.denialThreshold {
		findings = append(findings, auditDomain.Finding{
			Reason:     auditDomain.ReasonRepeatedDenials,
			OperatorID: operatorID,
			Count:      denials,
			Detail:     fmt.Sprintf("%d authorization denials in %s", denials, window),
		})
	}

	return findings, nil
}

// GenerateReport aggregates the trail over the trailing number of days.
// An empty window produces an all-zero report. The four aggregate queries
// are independent and run concurrently.
func (t *trailUseCase) GenerateReport(ctx context.Context, days int) (*auditDomain.Report, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	var total, security, violations int
	var origins []auditDomain.OriginCount

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		total, err = t.eventRepo.CountSince(groupCtx, since)
		return apperrors.Wrap(err, "failed to count events")
	})
	group.Go(func() error {
		var err error
		security, err = t.eventRepo.CountSecurityEventsSince(groupCtx, since)
		return apperrors.Wrap(err, "failed to count security events")
	})
	group.Go(func() error {
		var err error
		violations, err = t.eventRepo.CountPermissionViolationsSince(groupCtx, since)
		return apperrors.Wrap(err, "failed to count permission violations")
	})
	group.Go(func() error {
		var err error
		origins, err = t.eventRepo.TopOriginsSince(groupCtx, since, topOriginsLimit)
		return apperrors.Wrap(err, "failed to query top origins")
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &auditDomain.Report{
		Days:                 days,
		TotalEvents:          total,
		SecurityEvents:       security,
		PermissionViolations: violations,
		SuspiciousOrigins:    origins,
		GeneratedAt:          time.Now().UTC(),
	}, nil
}

// Purge removes events older than the retention cutoff.
func (t *trailUseCase) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	deleted, err := t.eventRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to purge audit events")
	}
	return deleted, nil
}

// NewTrailUseCase creates a TrailUseCase with the provided dependencies and
// suspicious-activity thresholds.
func NewTrailUseCase(
	eventRepo EventRepository,
	signer auditService.EventSigner,
	signingKey []byte,
	failureThreshold, originThreshold, denialThreshold int,
) TrailUseCase {
	return &trailUseCase{
		eventRepo:        eventRepo,
		signer:           signer,
		signingKey:       signingKey,
		failureThreshold: failureThreshold,
		originThreshold:  originThreshold,
		denialThreshold:  denialThreshold,
	}
}
