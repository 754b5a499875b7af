package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var sensitiveFields = []string{"password", "token", "cardNumber"}

func TestRedact_TopLevel(t *testing.T) {
	values := map[string]any{
		"email":    "user@example.com",
		"password": "super-secret",
	}

	redacted := Redact(values, sensitiveFields)

	assert.Equal(t, "user@example.com", redacted["email"])
	assert.Equal(t, RedactionMarker, redacted["password"])
	// Input map is untouched
	assert.Equal(t, "super-secret", values["password"])
}

func TestRedact_CaseInsensitive(t *testing.T) {
	values := map[string]any{
		"Password":   "x",
		"CARDNUMBER": "4111111111111111",
	}

	redacted := Redact(values, sensitiveFields)

	assert.Equal(t, RedactionMarker, redacted["Password"])
	assert.Equal(t, RedactionMarker, redacted["CARDNUMBER"])
}

func TestRedact_NestedStructures(t *testing.T) {
	values := map[string]any{
		"profile": map[string]any{
			"name": "Alice",
			"credentials": map[string]any{
				"password": "deep-secret",
			},
		},
		"sessions": []any{
			map[string]any{"token": "abc", "origin": "10.0.0.1"},
			map[string]any{"token": "def", "origin": "10.0.0.2"},
		},
	}

	redacted := Redact(values, sensitiveFields)

	profile := redacted["profile"].(map[string]any)
	credentials := profile["credentials"].(map[string]any)
	assert.Equal(t, "Alice", profile["name"])
	assert.Equal(t, RedactionMarker, credentials["password"])

	sessions := redacted["sessions"].([]any)
	for _, session := range sessions {
		assert.Equal(t, RedactionMarker, session.(map[string]any)["token"])
	}
	assert.Equal(t, "10.0.0.1", sessions[0].(map[string]any)["origin"])
}

func TestRedact_NilMap(t *testing.T) {
	assert.Nil(t, Redact(nil, sensitiveFields))
}
