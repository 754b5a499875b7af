// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	authDomain "github.com/adminguard/adminguard/internal/auth/domain"
	customValidation "github.com/adminguard/adminguard/internal/validation"
)

// LoginRequest contains the credentials for an operator login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			is.Email,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// RefreshRequest contains the refresh token to exchange for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate checks if the refresh request is valid.
func (r *RefreshRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// LogoutRequest contains the refresh token whose session(s) should end.
// Scope defaults to "single"; "all" revokes every session of the operator.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Validate checks if the logout request is valid.
func (r *LogoutRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Scope,
			validation.In(
				string(authDomain.RevokeSingle),
				string(authDomain.RevokeAll),
			),
		),
	)
}

// ChangePasswordRequest contains the current and replacement passwords.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate checks if the change password request is valid.
// The strength policy itself is enforced by the use case; this only rejects
// structurally empty input.
func (r *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CurrentPassword,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.NewPassword,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
