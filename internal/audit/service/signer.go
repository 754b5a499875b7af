// Package service provides technical services for the audit trail.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
)

// EventSigner produces and verifies tamper-evidence signatures for audit events.
type EventSigner interface {
	// Sign generates an HMAC-SHA256 signature over the canonical event bytes.
	Sign(key []byte, event *auditDomain.Event) ([]byte, error)

	// Verify checks the event signature in constant time.
	Verify(key []byte, event *auditDomain.Event) (bool, error)
}

type eventSigner struct{}

// NewEventSigner creates an HMAC-based audit event signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewEventSigner() EventSigner {
	return &eventSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// configured audit key, separating signing-key usage from any other use of
// the same material. Info parameter is versioned for future algorithm changes.
func (e *eventSigner) deriveSigningKey(key []byte) ([]byte, error) {
	info := []byte("audit-event-signing-v1")
	reader := hkdf.New(sha256.New, key, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalize converts an event to its canonical byte representation.
// Variable-length fields are length-prefixed to prevent ambiguity between
// adjacent fields.
func (e *eventSigner) canonicalize(event *auditDomain.Event) ([]byte, error) {
	buf := make([]byte, 0, 1024)

	buf = append(buf, event.ID[:]...)

	// Nil operator ids canonicalize to 16 zero bytes
	var operatorID [16]byte
	if event.OperatorID != nil {
		operatorID = *event.OperatorID
	}
	buf = append(buf, operatorID[:]...)

	for _, field := range []string{
		event.Action,
		event.Resource,
		event.ResourceID,
		string(event.Outcome),
		string(event.Severity),
		event.Origin,
		event.UserAgent,
		event.Method,
		event.Endpoint,
	} {
		buf = appendLengthPrefixed(buf, []byte(field))
	}

	for _, values := range []map[string]any{event.OldValues, event.NewValues} {
		if values != nil {
			valuesJSON, err := json.Marshal(values)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal event values: %w", err)
			}
			buf = appendLengthPrefixed(buf, valuesJSON)
		} else {
			buf = appendLengthPrefixed(buf, nil)
		}
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(event.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates an HMAC-SHA256 signature for the audit event.
func (e *eventSigner) Sign(key []byte, event *auditDomain.Event) ([]byte, error) {
	signingKey, err := e.deriveSigningKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	canonical, err := e.canonicalize(event)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify recomputes the event signature and compares it in constant time.
func (e *eventSigner) Verify(key []byte, event *auditDomain.Event) (bool, error) {
	expected, err := e.Sign(key, event)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, event.Signature), nil
}
