// Package guard implements brute-force defenses: persistent per-identity
// failure counters with escalating lockouts, and in-process time-windowed
// per-origin counters.
package guard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/adminguard/adminguard/internal/errors"
	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// maxLockShift caps the doubling exponent so the shift cannot overflow;
// LockoutMaxDuration clamps the result anyway.
const maxLockShift = 20

// OperatorLockStore is the slice of operator persistence the guard needs.
// Both operations must be atomic: concurrent failures for the same identity
// race on the counter.
type OperatorLockStore interface {
	// IncrementFailedAttempts atomically bumps the counter and returns the
	// new value.
	IncrementFailedAttempts(ctx context.Context, operatorID uuid.UUID) (int, error)

	// UpdateLockState overwrites the lockout columns.
	UpdateLockState(
		ctx context.Context,
		operatorID uuid.UUID,
		failedAttempts int,
		lockedUntil *time.Time,
		lockEpisodes int,
	) error
}

// originCounter tracks failures from one network origin inside a sliding
// window that restarts when the window elapses.
type originCounter struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// Guard tracks failed authentication attempts per identity and per origin.
//
// Identity counters live on the operator row so they survive restarts and
// are shared across instances. Origin counters are in-process only: they are
// a cheap first line against single-source floods, and precision across
// instances is not required.
type Guard struct {
	store OperatorLockStore

	maxAttempts  int
	baseDuration time.Duration
	maxDuration  time.Duration

	originMaxAttempts int
	originWindow      time.Duration
	origins           sync.Map // origin string -> *originCounter

	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// RecordFailure registers a failed attempt for the identity and its origin.
// When the identity counter reaches the threshold the account is locked with
// a duration that doubles per lock episode, capped at the configured
// maximum. Returns the lock deadline when a lock was applied.
func (g *Guard) RecordFailure(
	ctx context.Context,
	operator *identityDomain.Operator,
	origin string,
) (locked bool, lockedUntil time.Time, err error) {
	g.recordOriginFailure(origin)

	attempts, err := g.store.IncrementFailedAttempts(ctx, operator.ID)
	if err != nil {
		return false, time.Time{}, apperrors.Wrap(err, "failed to record authentication failure")
	}

	if attempts < g.maxAttempts {
		return false, time.Time{}, nil
	}

	episodes := operator.LockEpisodes + 1
	until := g.now().UTC().Add(g.lockDuration(episodes))

	// Counter restarts at zero for the next episode
	if err := g.store.UpdateLockState(ctx, operator.ID, 0, &until, episodes); err != nil {
		return false, time.Time{}, apperrors.Wrap(err, "failed to apply account lock")
	}

	return true, until, nil
}

// RecordSuccess resets the identity failure counter. Lock episodes persist
// so a repeat offender locks for longer next time; only an explicit admin
// unlock clears them. Origin counters age out by time, not by success.
func (g *Guard) RecordSuccess(ctx context.Context, operator *identityDomain.Operator) error {
	if err := g.store.UpdateLockState(ctx, operator.ID, 0, nil, operator.LockEpisodes); err != nil {
		return apperrors.Wrap(err, "failed to reset failure counter")
	}
	return nil
}

// RecordOriginFailure registers a failure for an origin with no known
// identity (unknown email). Identity counters cannot move in that case, but
// the origin still accumulates.
func (g *Guard) RecordOriginFailure(origin string) {
	g.recordOriginFailure(origin)
}

// OriginBlocked reports whether the origin exceeded its failure budget
// inside the current window.
func (g *Guard) OriginBlocked(origin string) bool {
	value, ok := g.origins.Load(origin)
	if !ok {
		return false
	}
	counter := value.(*originCounter)

	counter.mu.Lock()
	defer counter.mu.Unlock()

	if g.now().Sub(counter.windowStart) > g.originWindow {
		return false
	}
	return counter.count >= g.originMaxAttempts
}

// Stop terminates the janitor goroutine.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() {
		close(g.stop)
	})
}

func (g *Guard) recordOriginFailure(origin string) {
	if origin == "" {
		return
	}

	value, _ := g.origins.LoadOrStore(origin, &originCounter{windowStart: g.now()})
	counter := value.(*originCounter)

	counter.mu.Lock()
	defer counter.mu.Unlock()

	if g.now().Sub(counter.windowStart) > g.originWindow {
		counter.windowStart = g.now()
		counter.count = 0
	}
	counter.count++
}

// lockDuration doubles the base per episode: episode 1 = base, episode 2 =
// 2x base, capped at the configured maximum.
func (g *Guard) lockDuration(episodes int) time.Duration {
	shift := episodes - 1
	if shift > maxLockShift {
		shift = maxLockShift
	}

	duration := g.baseDuration << shift
	if duration > g.maxDuration || duration <= 0 {
		duration = g.maxDuration
	}
	return duration
}

// janitor drops origin counters whose window has fully elapsed.
func (g *Guard) janitor() {
	ticker := time.NewTicker(g.originWindow)
	defer ticker.Stop()

	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.origins.Range(func(key, value any) bool {
				counter := value.(*originCounter)
				counter.mu.Lock()
				stale := g.now().Sub(counter.windowStart) > g.originWindow
				counter.mu.Unlock()
				if stale {
					g.origins.Delete(key)
				}
				return true
			})
		}
	}
}

// New creates a Guard and starts its origin-counter janitor. Call Stop on
// shutdown.
func New(
	store OperatorLockStore,
	maxAttempts int,
	baseDuration, maxDuration time.Duration,
	originMaxAttempts int,
	originWindow time.Duration,
) *Guard {
	g := &Guard{
		store:             store,
		maxAttempts:       maxAttempts,
		baseDuration:      baseDuration,
		maxDuration:       maxDuration,
		originMaxAttempts: originMaxAttempts,
		originWindow:      originWindow,
		now:               time.Now,
		stop:              make(chan struct{}),
	}
	go g.janitor()
	return g
}
