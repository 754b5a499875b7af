// Package domain defines audit event models for the security trail.
//
// Events are append-only: they are signed at creation and never mutated, so
// the trail stays tamper-evident. Every decision point in authentication,
// authorization, and lockout handling emits exactly one event.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how the audited operation ended.
type Outcome string

const (
	// OutcomeSuccess indicates the operation completed.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailed indicates the operation failed (e.g., bad credentials).
	OutcomeFailed Outcome = "failed"

	// OutcomeDenied indicates the operation was rejected by authorization.
	OutcomeDenied Outcome = "denied"
)

// Severity is the ordinal classification driving monitoring thresholds.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Well-known action names recorded by the security core.
const (
	ActionLogin              = "LOGIN"
	ActionLogout             = "LOGOUT"
	ActionTokenRefresh       = "TOKEN_REFRESH"
	ActionTokenReuseDetected = "TOKEN_REUSE_DETECTED"
	ActionPasswordChange     = "PASSWORD_CHANGE" //nolint:gosec // action name, not a credential
	ActionAccountLocked      = "ACCOUNT_LOCKED"
	ActionPermissionDenied   = "PERMISSION_DENIED"
	ActionHierarchyViolation = "HIERARCHY_VIOLATION"
	ActionBulkLimitExceeded  = "BULK_LIMIT_EXCEEDED"
	ActionOperatorCreate     = "OPERATOR_CREATE"
	ActionOperatorUpdate     = "OPERATOR_UPDATE"
	ActionOperatorDisable    = "OPERATOR_DISABLE"
	ActionOperatorUnlock     = "OPERATOR_UNLOCK"
	ActionSessionsRevoked    = "SESSIONS_REVOKED"
	ActionRoleCreate         = "ROLE_CREATE"
	ActionRoleUpdate         = "ROLE_UPDATE"
)

// RequestContext carries the transport-level facts about the request that
// produced an event.
type RequestContext struct {
	Origin    string // network origin (client IP)
	UserAgent string
	Method    string
	Endpoint  string
}

// Event is a single entry in the security audit trail.
// OperatorID is nil for pre-authentication events (e.g., a failed login for
// an unknown email). OldValues/NewValues are redacted before persistence.
type Event struct {
	ID         uuid.UUID
	OperatorID *uuid.UUID
	Action     string
	Resource   string
	ResourceID string
	Outcome    Outcome
	Severity   Severity
	Origin     string
	UserAgent  string
	Method     string
	Endpoint   string
	OldValues  map[string]any
	NewValues  map[string]any
	Signature  []byte
	CreatedAt  time.Time
}

// Finding is a suspicious-activity detection result. Findings report
// patterns; callers decide whether to lock accounts or alert.
type Finding struct {
	Reason     string
	OperatorID uuid.UUID
	Count      int
	Detail     string
}

// Suspicious-activity reason codes.
const (
	ReasonExcessiveFailures = "EXCESSIVE_FAILURES"
	ReasonMultipleOrigins   = "MULTIPLE_ORIGINS"
	ReasonRepeatedDenials   = "REPEATED_DENIALS"
)

// OriginCount pairs a network origin with its event count.
type OriginCount struct {
	Origin string
	Count  int
}

// Report aggregates the security trail over a trailing window.
// A zero-event window produces an all-zero report, not an error.
type Report struct {
	Days                 int
	TotalEvents          int
	SecurityEvents       int // high + critical severity
	PermissionViolations int // PERMISSION_DENIED + HIERARCHY_VIOLATION
	SuspiciousOrigins    []OriginCount
	GeneratedAt          time.Time
}
