// Package http provides read-only HTTP access to the security audit trail.
// Routes are guarded by the RequirePermission middleware; writing happens
// only through the recorder.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adminguard/adminguard/internal/audit/http/dto"
	auditUseCase "github.com/adminguard/adminguard/internal/audit/usecase"
	"github.com/adminguard/adminguard/internal/httputil"
)

// Query bounds for the read endpoints.
const (
	maxReportDays     = 365
	defaultWindow     = 24 * time.Hour
	maxWindowHours    = 24 * 7
	defaultReportDays = 7
)

// TrailHandler handles HTTP requests for querying the audit trail.
type TrailHandler struct {
	trailUseCase auditUseCase.TrailUseCase
	logger       *slog.Logger
}

// NewTrailHandler creates a new trail handler with required dependencies.
func NewTrailHandler(trailUC auditUseCase.TrailUseCase, logger *slog.Logger) *TrailHandler {
	return &TrailHandler{
		trailUseCase: trailUC,
		logger:       logger,
	}
}

// ListHandler retrieves audit events with pagination and time filters.
// GET /v1/audit-events?offset=0&limit=50&from=RFC3339&to=RFC3339
// Requires an audit-events read grant. Returns 200 OK, newest first.
func (h *TrailHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	from, err := parseTimeParam(c, "from")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	to, err := parseTimeParam(c, "to")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.trailUseCase.List(c.Request.Context(), offset, limit, from, to)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}

// ReportHandler aggregates the trail over a trailing number of days.
// GET /v1/audit-events/report?days=7 - Requires an audit-events read grant.
// Returns 200 OK; an empty window yields an all-zero report.
func (h *TrailHandler) ReportHandler(c *gin.Context) {
	days := defaultReportDays
	if daysStr := c.Query("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 || parsed > maxReportDays {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid days parameter: must be between 1 and %d", maxReportDays),
				h.logger,
			)
			return
		}
		days = parsed
	}

	report, err := h.trailUseCase.GenerateReport(c.Request.Context(), days)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapReportToResponse(report))
}

// SuspiciousActivityHandler scans one operator's recent events for known
// abuse patterns.
// GET /v1/audit-events/suspicious/:id?window_hours=24
// Requires an audit-events read grant. Returns 200 OK with the findings;
// a clean trail yields an empty list.
func (h *TrailHandler) SuspiciousActivityHandler(c *gin.Context) {
	operatorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	window := defaultWindow
	if hoursStr := c.Query("window_hours"); hoursStr != "" {
		hours, err := strconv.Atoi(hoursStr)
		if err != nil || hours < 1 || hours > maxWindowHours {
			httputil.HandleValidationErrorGin(
				c,
				fmt.Errorf("invalid window_hours parameter: must be between 1 and %d", maxWindowHours),
				h.logger,
			)
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	findings, err := h.trailUseCase.DetectSuspiciousActivity(c.Request.Context(), operatorID, window)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapFindingsToListResponse(findings))
}

// parseTimeParam parses an optional RFC 3339 query parameter.
func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: must be RFC 3339", name)
	}
	return &parsed, nil
}
