// Package domain defines identity domain models for administrative operators and roles.
//
// Operators authenticate with email and password and carry a single role
// reference. Roles form a strict privilege hierarchy (lower level = more
// privileged) with explicit resource grants and conditional predicates.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Operator represents an administrative operator account.
// Operators are never physically deleted; IsActive is set to false instead
// so audit events keep a valid identity reference.
type Operator struct {
	ID           uuid.UUID
	Email        string // stored lowercase, unique
	Name         string
	PasswordHash string //nolint:gosec // Argon2id hash, not plaintext
	RoleName     string

	// Lockout state, mutated only through atomic UpdateLockState operations.
	FailedAttempts int
	LockedUntil    *time.Time
	LockEpisodes   int // completed lock episodes, drives the escalating schedule

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the operator is locked out at the given instant.
func (o *Operator) IsLocked(now time.Time) bool {
	return o.LockedUntil != nil && now.Before(*o.LockedUntil)
}

// NormalizeEmail lowercases and trims an email for case-insensitive lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateOperatorInput contains the parameters for provisioning a new operator.
type CreateOperatorInput struct {
	Email    string
	Name     string
	Password string
	RoleName string
	IsActive bool
}

// UpdateOperatorInput contains the mutable fields for updating an operator.
// Email, password, and lockout state are changed through dedicated operations.
type UpdateOperatorInput struct {
	Name     string
	RoleName string
	IsActive bool
}
