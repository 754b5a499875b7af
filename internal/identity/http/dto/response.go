package dto

import (
	"time"

	identityDomain "github.com/adminguard/adminguard/internal/identity/domain"
)

// OperatorResponse represents an operator in API responses.
// The password hash and raw lockout counters never leave the service.
type OperatorResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsLocked    bool       `json:"is_locked"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MapOperatorToResponse converts a domain operator to an API response.
func MapOperatorToResponse(operator *identityDomain.Operator) OperatorResponse {
	response := OperatorResponse{
		ID:        operator.ID.String(),
		Email:     operator.Email,
		Name:      operator.Name,
		Role:      operator.RoleName,
		IsActive:  operator.IsActive,
		IsLocked:  operator.IsLocked(time.Now().UTC()),
		CreatedAt: operator.CreatedAt,
		UpdatedAt: operator.UpdatedAt,
	}
	if response.IsLocked {
		response.LockedUntil = operator.LockedUntil
	}
	return response
}

// ListOperatorsResponse represents a paginated list of operators.
type ListOperatorsResponse struct {
	Data []OperatorResponse `json:"data"`
}

// MapOperatorsToListResponse converts a slice of domain operators to a list response.
func MapOperatorsToListResponse(operators []*identityDomain.Operator) ListOperatorsResponse {
	data := make([]OperatorResponse, 0, len(operators))
	for _, operator := range operators {
		data = append(data, MapOperatorToResponse(operator))
	}
	return ListOperatorsResponse{Data: data}
}

// RevokeSessionsResponse reports how many live sessions were revoked.
type RevokeSessionsResponse struct {
	RevokedCount int64 `json:"revoked_count"`
}

// RoleResponse represents a role definition in API responses.
type RoleResponse struct {
	Name                  string                 `json:"name"`
	Level                 int                    `json:"level"`
	CanCreateSubordinates bool                   `json:"can_create_subordinates"`
	BypassOwnership       bool                   `json:"bypass_ownership"`
	Grants                []identityDomain.Grant `json:"grants"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// MapRoleToResponse converts a domain role to an API response.
func MapRoleToResponse(role *identityDomain.Role) RoleResponse {
	return RoleResponse{
		Name:                  role.Name,
		Level:                 role.Level,
		CanCreateSubordinates: role.CanCreateSubordinates,
		BypassOwnership:       role.BypassOwnership,
		Grants:                role.Grants,
		CreatedAt:             role.CreatedAt,
		UpdatedAt:             role.UpdatedAt,
	}
}

// ListRolesResponse represents the full role catalog.
type ListRolesResponse struct {
	Data []RoleResponse `json:"data"`
}

// MapRolesToListResponse converts a slice of domain roles to a list response.
func MapRolesToListResponse(roles []*identityDomain.Role) ListRolesResponse {
	data := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		data = append(data, MapRoleToResponse(role))
	}
	return ListRolesResponse{Data: data}
}
