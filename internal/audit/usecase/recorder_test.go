package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	auditService "github.com/adminguard/adminguard/internal/audit/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memoryEventRepo is a thread-safe in-memory EventRepository for recorder tests.
type memoryEventRepo struct {
	mu        sync.Mutex
	events    []*auditDomain.Event
	createErr error

	// When gate is set, the first Create call closes entered and then blocks
	// until gate is closed.
	gate        chan struct{}
	entered     chan struct{}
	gateEntered atomic.Bool
}

func (r *memoryEventRepo) Create(_ context.Context, event *auditDomain.Event) error {
	if r.gate != nil {
		if r.gateEntered.CompareAndSwap(false, true) {
			close(r.entered)
			<-r.gate
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.events = append(r.events, event)
	return nil
}

func (r *memoryEventRepo) stored() []*auditDomain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*auditDomain.Event(nil), r.events...)
}

func (r *memoryEventRepo) List(
	_ context.Context, _, _ int, _, _ *time.Time,
) ([]*auditDomain.Event, error) {
	return nil, nil
}

func (r *memoryEventRepo) ListByOperatorSince(
	_ context.Context, _ uuid.UUID, _ time.Time,
) ([]*auditDomain.Event, error) {
	return nil, nil
}

func (r *memoryEventRepo) CountSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (r *memoryEventRepo) CountSecurityEventsSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (r *memoryEventRepo) CountPermissionViolationsSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (r *memoryEventRepo) TopOriginsSince(
	_ context.Context, _ time.Time, _ int,
) ([]auditDomain.OriginCount, error) {
	return nil, nil
}

func (r *memoryEventRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testSigningKey = []byte("recorder-test-signing-key")

func TestRecorder_RecordAndDrain(t *testing.T) {
	ctx := context.Background()
	repo := &memoryEventRepo{}
	signer := auditService.NewEventSigner()

	rec := NewRecorder(repo, signer, testSigningKey, []string{"password"}, 16, discardLogger())

	operatorID := uuid.Must(uuid.NewV7())
	for i := 0; i < 3; i++ {
		err := rec.Record(ctx, RecordInput{
			OperatorID: &operatorID,
			Action:     auditDomain.ActionLogin,
			Resource:   "auth",
			Outcome:    auditDomain.OutcomeSuccess,
			Severity:   auditDomain.SeverityLow,
			Request: auditDomain.RequestContext{
				Origin:   "192.0.2.1",
				Method:   "POST",
				Endpoint: "/v1/auth/login",
			},
			NewValues: map[string]any{"email": "user@example.com", "password": "secret"},
		})
		require.NoError(t, err)
	}

	require.NoError(t, rec.Close(ctx))

	events := repo.stored()
	require.Len(t, events, 3)

	for _, event := range events {
		assert.NotEqual(t, uuid.Nil, event.ID)
		assert.Equal(t, &operatorID, event.OperatorID)
		assert.Equal(t, auditDomain.ActionLogin, event.Action)
		assert.False(t, event.CreatedAt.IsZero())

		// Sensitive fields are redacted before signing
		assert.Equal(t, auditDomain.RedactionMarker, event.NewValues["password"])
		assert.Equal(t, "user@example.com", event.NewValues["email"])

		// Signature covers the persisted (redacted) event
		ok, err := signer.Verify(testSigningKey, event)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRecorder_SyncFallbackWhenQueueFull(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	repo := &memoryEventRepo{gate: gate, entered: make(chan struct{})}
	signer := auditService.NewEventSigner()

	rec := NewRecorder(repo, signer, testSigningKey, nil, 1, discardLogger())

	input := RecordInput{
		Action:   auditDomain.ActionLogout,
		Resource: "auth",
		Outcome:  auditDomain.OutcomeSuccess,
		Severity: auditDomain.SeverityLow,
	}

	// First event is taken by the worker, which blocks on the gate.
	require.NoError(t, rec.Record(ctx, input))

	// Wait for the worker to pick the event up so the buffer is free.
	select {
	case <-repo.entered:
	case <-time.After(time.Second):
		t.Fatal("worker never picked up the first event")
	}

	// Second event fills the one-slot buffer.
	require.NoError(t, rec.Record(ctx, input))

	// Third event finds the queue full and persists on this goroutine.
	require.NoError(t, rec.Record(ctx, input))
	assert.Len(t, repo.stored(), 1)

	close(gate)
	require.NoError(t, rec.Close(ctx))
	assert.Len(t, repo.stored(), 3)
}

func TestRecorder_RecordSync(t *testing.T) {
	ctx := context.Background()
	repo := &memoryEventRepo{}
	signer := auditService.NewEventSigner()

	rec := NewRecorder(repo, signer, testSigningKey, nil, 16, discardLogger())
	defer func() {
		require.NoError(t, rec.Close(ctx))
	}()

	err := rec.RecordSync(ctx, RecordInput{
		Action:   auditDomain.ActionTokenReuseDetected,
		Resource: "auth",
		Outcome:  auditDomain.OutcomeFailed,
		Severity: auditDomain.SeverityCritical,
	})
	require.NoError(t, err)

	// Durable before the call returns, not sitting in the queue
	events := repo.stored()
	require.Len(t, events, 1)
	assert.Equal(t, auditDomain.SeverityCritical, events[0].Severity)
}

func TestRecorder_WrapAction(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_OutcomeSuccess", func(t *testing.T) {
		repo := &memoryEventRepo{}
		rec := NewRecorder(repo, auditService.NewEventSigner(), testSigningKey, nil, 16, discardLogger())

		err := rec.WrapAction(ctx, &RecordInput{
			Action:   auditDomain.ActionPasswordChange,
			Resource: "operators",
		}, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
		require.NoError(t, rec.Close(ctx))

		events := repo.stored()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.OutcomeSuccess, events[0].Outcome)
		assert.Equal(t, auditDomain.SeverityLow, events[0].Severity)
	})

	t.Run("Error_OutcomeFailedAndErrorReturned", func(t *testing.T) {
		repo := &memoryEventRepo{}
		rec := NewRecorder(repo, auditService.NewEventSigner(), testSigningKey, nil, 16, discardLogger())

		actionErr := errors.New("password too weak")
		err := rec.WrapAction(ctx, &RecordInput{
			Action:   auditDomain.ActionPasswordChange,
			Resource: "operators",
		}, func(ctx context.Context) error {
			return actionErr
		})
		require.ErrorIs(t, err, actionErr)
		require.NoError(t, rec.Close(ctx))

		events := repo.stored()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.OutcomeFailed, events[0].Outcome)
		assert.Equal(t, auditDomain.SeverityMedium, events[0].Severity)
	})

	t.Run("Success_FnFillsDiscoveredIdentifiers", func(t *testing.T) {
		repo := &memoryEventRepo{}
		rec := NewRecorder(repo, auditService.NewEventSigner(), testSigningKey, nil, 16, discardLogger())

		input := &RecordInput{
			Action:   auditDomain.ActionOperatorCreate,
			Resource: "operators",
		}
		createdID := uuid.Must(uuid.NewV7())
		err := rec.WrapAction(ctx, input, func(ctx context.Context) error {
			input.ResourceID = createdID.String()
			input.NewValues = map[string]any{"email": "new@example.com"}
			return nil
		})
		require.NoError(t, err)
		require.NoError(t, rec.Close(ctx))

		events := repo.stored()
		require.Len(t, events, 1)
		assert.Equal(t, createdID.String(), events[0].ResourceID)
		assert.Equal(t, "new@example.com", events[0].NewValues["email"])
	})

	t.Run("Success_ExplicitSeverityKept", func(t *testing.T) {
		repo := &memoryEventRepo{}
		rec := NewRecorder(repo, auditService.NewEventSigner(), testSigningKey, nil, 16, discardLogger())

		err := rec.WrapAction(ctx, &RecordInput{
			Action:   auditDomain.ActionOperatorDisable,
			Resource: "operators",
			Severity: auditDomain.SeverityHigh,
		}, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
		require.NoError(t, rec.Close(ctx))

		events := repo.stored()
		require.Len(t, events, 1)
		assert.Equal(t, auditDomain.SeverityHigh, events[0].Severity)
	})
}

func TestRecorder_RecordAfterClose(t *testing.T) {
	ctx := context.Background()
	repo := &memoryEventRepo{}
	rec := NewRecorder(repo, auditService.NewEventSigner(), testSigningKey, nil, 4, discardLogger())

	require.NoError(t, rec.Close(ctx))

	// A straggler after shutdown persists synchronously instead of panicking
	// on the closed queue.
	require.NotPanics(t, func() {
		err := rec.Record(ctx, RecordInput{
			Action:   auditDomain.ActionLogout,
			Resource: "auth",
			Outcome:  auditDomain.OutcomeSuccess,
			Severity: auditDomain.SeverityLow,
		})
		require.NoError(t, err)
	})
	assert.Len(t, repo.stored(), 1)
}

func TestRecorder_CloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := &memoryEventRepo{}
	rec := NewRecorder(repo, auditService.NewEventSigner(), testSigningKey, nil, 4, discardLogger())

	require.NoError(t, rec.Close(ctx))
	require.NoError(t, rec.Close(ctx))
}
