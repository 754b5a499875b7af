package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
)

func TestRunSecurityReport(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	report := &auditDomain.Report{
		Days:                 7,
		TotalEvents:          1250,
		SecurityEvents:       40,
		PermissionViolations: 12,
		SuspiciousOrigins: []auditDomain.OriginCount{
			{Origin: "203.0.113.9", Count: 300},
		},
		GeneratedAt: time.Now().UTC(),
	}

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockTrailUseCase{}
		mockUseCase.On("GenerateReport", ctx, 7).Return(report, nil)

		var out bytes.Buffer
		err := RunSecurityReport(ctx, mockUseCase, logger, &out, 7, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Security Report (last 7 day(s))")
		require.Contains(t, out.String(), "Total Events:          1250")
		require.Contains(t, out.String(), "203.0.113.9 (300 event(s))")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockTrailUseCase{}
		mockUseCase.On("GenerateReport", ctx, 7).Return(report, nil)

		var out bytes.Buffer
		err := RunSecurityReport(ctx, mockUseCase, logger, &out, 7, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"total_events": 1250`)
		require.Contains(t, out.String(), `"permission_violations": 12`)
	})

	t.Run("invalid-days", func(t *testing.T) {
		mockUseCase := &mockTrailUseCase{}

		err := RunSecurityReport(ctx, mockUseCase, logger, &bytes.Buffer{}, 0, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
	})
}
