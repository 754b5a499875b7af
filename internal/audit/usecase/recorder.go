package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	auditService "github.com/adminguard/adminguard/internal/audit/service"
	apperrors "github.com/adminguard/adminguard/internal/errors"
)

// persistTimeout bounds the background worker's write to the database so a
// stalled database cannot wedge the drain loop forever.
const persistTimeout = 10 * time.Second

// recorder implements Recorder with a bounded queue and one drain worker.
type recorder struct {
	eventRepo       EventRepository
	signer          auditService.EventSigner
	signingKey      []byte
	sensitiveFields []string
	logger          *slog.Logger

	// mu guards closed against the queue close in Close so a late Record
	// never sends on a closed channel.
	mu        sync.RWMutex
	closed    bool
	queue     chan *auditDomain.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Record signs the event and hands it to the background worker. When the
// queue is full, or the recorder is already closed, the event is persisted
// synchronously on the caller's goroutine; audit events are never dropped.
func (r *recorder) Record(ctx context.Context, input RecordInput) error {
	event, err := r.buildEvent(input)
	if err != nil {
		return err
	}

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return r.persist(ctx, event)
	}

	select {
	case r.queue <- event:
		r.mu.RUnlock()
		return nil
	default:
		r.mu.RUnlock()
		r.logger.Warn("audit queue full, persisting synchronously",
			slog.String("action", event.Action))
		return r.persist(ctx, event)
	}
}

// RecordSync signs and persists the event before returning.
func (r *recorder) RecordSync(ctx context.Context, input RecordInput) error {
	event, err := r.buildEvent(input)
	if err != nil {
		return err
	}
	return r.persist(ctx, event)
}

// WrapAction runs fn and records the event with the outcome derived from
// fn's error. fn may fill identifiers and value snapshots it discovers while
// running (a generated resource id, the persisted state) before the event is
// recorded. The recording failure never masks fn's error.
func (r *recorder) WrapAction(
	ctx context.Context,
	input *RecordInput,
	fn func(ctx context.Context) error,
) error {
	fnErr := fn(ctx)

	if fnErr != nil {
		input.Outcome = auditDomain.OutcomeFailed
		if input.Severity == "" {
			input.Severity = auditDomain.SeverityMedium
		}
	} else {
		input.Outcome = auditDomain.OutcomeSuccess
		if input.Severity == "" {
			input.Severity = auditDomain.SeverityLow
		}
	}

	if err := r.Record(ctx, *input); err != nil {
		r.logger.Error("failed to record audit event",
			slog.String("action", input.Action),
			slog.String("error", err.Error()))
	}

	return fnErr
}

// Close stops accepting queued events and waits for the worker to drain.
// The context bounds how long the drain may take.
func (r *recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), "audit recorder drain interrupted")
	}
}

// buildEvent assembles, redacts, and signs a new event.
func (r *recorder) buildEvent(input RecordInput) (*auditDomain.Event, error) {
	event := &auditDomain.Event{
		ID:         uuid.Must(uuid.NewV7()),
		OperatorID: input.OperatorID,
		Action:     input.Action,
		Resource:   input.Resource,
		ResourceID: input.ResourceID,
		Outcome:    input.Outcome,
		Severity:   input.Severity,
		Origin:     input.Request.Origin,
		UserAgent:  input.Request.UserAgent,
		Method:     input.Request.Method,
		Endpoint:   input.Request.Endpoint,
		OldValues:  auditDomain.Redact(input.OldValues, r.sensitiveFields),
		NewValues:  auditDomain.Redact(input.NewValues, r.sensitiveFields),
		CreatedAt:  time.Now().UTC(),
	}

	signature, err := r.signer.Sign(r.signingKey, event)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign audit event")
	}
	event.Signature = signature

	return event, nil
}

func (r *recorder) persist(ctx context.Context, event *auditDomain.Event) error {
	if err := r.eventRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to persist audit event")
	}
	return nil
}

// drain runs on the worker goroutine until the queue is closed and empty.
// Persistence uses a fresh context per event; the request that produced the
// event may be long gone by the time it reaches the front of the queue.
func (r *recorder) drain() {
	defer close(r.done)

	for event := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := r.persist(ctx, event); err != nil {
			r.logger.Error("failed to persist queued audit event",
				slog.String("event_id", event.ID.String()),
				slog.String("action", event.Action),
				slog.String("error", err.Error()))
		}
		cancel()
	}
}

// NewRecorder creates a Recorder backed by a bounded queue of the given size
// and starts its drain worker. Call Close on shutdown to flush the queue.
func NewRecorder(
	eventRepo EventRepository,
	signer auditService.EventSigner,
	signingKey []byte,
	sensitiveFields []string,
	queueSize int,
	logger *slog.Logger,
) Recorder {
	r := &recorder{
		eventRepo:       eventRepo,
		signer:          signer,
		signingKey:      signingKey,
		sensitiveFields: sensitiveFields,
		logger:          logger,
		queue:           make(chan *auditDomain.Event, queueSize),
		done:            make(chan struct{}),
	}
	go r.drain()
	return r
}
