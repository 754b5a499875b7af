// Package dto provides data transfer objects for audit trail responses.
// The trail is read-only over HTTP; events are written internally.
package dto

import (
	"time"

	auditDomain "github.com/adminguard/adminguard/internal/audit/domain"
)

// EventResponse represents one audit event in API responses.
// The signature stays internal; integrity is checked server-side.
type EventResponse struct {
	ID         string         `json:"id"`
	OperatorID *string        `json:"operator_id,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource,omitempty"`
	ResourceID string         `json:"resource_id,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Origin     string         `json:"origin"`
	UserAgent  string         `json:"user_agent,omitempty"`
	Method     string         `json:"method,omitempty"`
	Endpoint   string         `json:"endpoint,omitempty"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MapEventToResponse converts a domain event to an API response.
func MapEventToResponse(event *auditDomain.Event) EventResponse {
	response := EventResponse{
		ID:         event.ID.String(),
		Action:     event.Action,
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		Outcome:    string(event.Outcome),
		Severity:   string(event.Severity),
		Origin:     event.Origin,
		UserAgent:  event.UserAgent,
		Method:     event.Method,
		Endpoint:   event.Endpoint,
		OldValues:  event.OldValues,
		NewValues:  event.NewValues,
		CreatedAt:  event.CreatedAt,
	}
	if event.OperatorID != nil {
		operatorID := event.OperatorID.String()
		response.OperatorID = &operatorID
	}
	return response
}

// ListEventsResponse represents a paginated page of the audit trail.
type ListEventsResponse struct {
	Data []EventResponse `json:"data"`
}

// MapEventsToListResponse converts a slice of domain events to a list response.
func MapEventsToListResponse(events []*auditDomain.Event) ListEventsResponse {
	data := make([]EventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapEventToResponse(event))
	}
	return ListEventsResponse{Data: data}
}

// OriginCountResponse pairs a network origin with its event count.
type OriginCountResponse struct {
	Origin string `json:"origin"`
	Count  int    `json:"count"`
}

// ReportResponse represents the aggregated security report.
type ReportResponse struct {
	Days                 int                   `json:"days"`
	TotalEvents          int                   `json:"total_events"`
	SecurityEvents       int                   `json:"security_events"`
	PermissionViolations int                   `json:"permission_violations"`
	SuspiciousOrigins    []OriginCountResponse `json:"suspicious_origins"`
	GeneratedAt          time.Time             `json:"generated_at"`
}

// MapReportToResponse converts a domain report to an API response.
func MapReportToResponse(report *auditDomain.Report) ReportResponse {
	origins := make([]OriginCountResponse, 0, len(report.SuspiciousOrigins))
	for _, origin := range report.SuspiciousOrigins {
		origins = append(origins, OriginCountResponse{
			Origin: origin.Origin,
			Count:  origin.Count,
		})
	}
	return ReportResponse{
		Days:                 report.Days,
		TotalEvents:          report.TotalEvents,
		SecurityEvents:       report.SecurityEvents,
		PermissionViolations: report.PermissionViolations,
		SuspiciousOrigins:    origins,
		GeneratedAt:          report.GeneratedAt,
	}
}

// FindingResponse represents one suspicious-activity finding.
type FindingResponse struct {
	Reason     string `json:"reason"`
	OperatorID string `json:"operator_id"`
	Count      int    `json:"count"`
	Detail     string `json:"detail,omitempty"`
}

// ListFindingsResponse represents the findings for one operator.
type ListFindingsResponse struct {
	Data []FindingResponse `json:"data"`
}

// MapFindingsToListResponse converts domain findings to a list response.
func MapFindingsToListResponse(findings []auditDomain.Finding) ListFindingsResponse {
	data := make([]FindingResponse, 0, len(findings))
	for _, finding := range findings {
		data = append(data, FindingResponse{
			Reason:     finding.Reason,
			OperatorID: finding.OperatorID.String(),
			Count:      finding.Count,
			Detail:     finding.Detail,
		})
	}
	return ListFindingsResponse{Data: data}
}
