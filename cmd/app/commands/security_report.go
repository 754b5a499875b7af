package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
	auditUseCase "github.com/adminguard/adminguard/internal/audit/usecase"
)

// RunSecurityReport aggregates the audit trail over a trailing window and
// prints totals, severity breakdown, and origins with unusual volume.
//
// Requirements: Database must be migrated and accessible.
func RunSecurityReport(
	ctx context.Context,
	trailUseCase auditUseCase.TrailUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days <= 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("generating security report", slog.Int("days", days))

	report, err := trailUseCase.GenerateReport(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if format == "json" {
		if err := outputReportJSON(writer, report); err != nil {
			return err
		}
	} else {
		outputReportText(writer, report)
	}

	logger.Info("report generated",
		slog.Int("total_events", report.TotalEvents),
		slog.Int("security_events", report.SecurityEvents),
	)

	return nil
}

// outputReportText outputs the report in human-readable text format.
func outputReportText(writer io.Writer, report *auditDomain.Report) {
	_, _ = fmt.Fprintf(writer, "Security Report (last %d day(s))\n", report.Days)
	_, _ = fmt.Fprintf(writer, "================================\n\n")
	_, _ = fmt.Fprintf(writer, "Generated At:          %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(writer, "Total Events:          %d\n", report.TotalEvents)
	_, _ = fmt.Fprintf(writer, "Security Events:       %d\n", report.SecurityEvents)
	_, _ = fmt.Fprintf(writer, "Permission Violations: %d\n", report.PermissionViolations)

	if len(report.SuspiciousOrigins) > 0 {
		_, _ = fmt.Fprintf(writer, "\nSuspicious Origins:\n")
		for _, origin := range report.SuspiciousOrigins {
			_, _ = fmt.Fprintf(writer, "  - %s (%d event(s))\n", origin.Origin, origin.Count)
		}
	}
}

// outputReportJSON outputs the report in JSON format for machine consumption.
func outputReportJSON(writer io.Writer, report *auditDomain.Report) error {
	origins := make([]map[string]any, 0, len(report.SuspiciousOrigins))
	for _, origin := range report.SuspiciousOrigins {
		origins = append(origins, map[string]any{
			"origin": origin.Origin,
			"count":  origin.Count,
		})
	}

	return writeJSON(writer, map[string]any{
		"days":                  report.Days,
		"generated_at":          report.GeneratedAt,
		"total_events":          report.TotalEvents,
		"security_events":       report.SecurityEvents,
		"permission_violations": report.PermissionViolations,
		"suspicious_origins":    origins,
	})
}
