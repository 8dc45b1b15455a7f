// Package types holds the request and response bodies of the HTTP API.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// CreateUserRequest represents the request to create a new user with password authentication.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses (avoids import cycle with db package).
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture *string   `json:"profilePicture"`
	PasswordSet    bool      `json:"password_set"`
	DateJoined     time.Time `json:"date_joined"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// UpdatePasswordRequest represents a password update request.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UpdateProfileRequest changes profile fields. Nil fields are left alone.
type UpdateProfileRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone          *string `json:"phone" validate:"omitempty,max=50"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,url"`
}

// ProgressUpdateRequest adds to the caller's activity counters.
type ProgressUpdateRequest struct {
	ResumeAnalyzed int      `json:"resume_analyzed" validate:"gte=0"`
	JobAnalyzed    int      `json:"job_analyzed" validate:"gte=0"`
	CoverLetters   int      `json:"cover_letters" validate:"gte=0"`
	SuccessRate    *float64 `json:"success_rate" validate:"omitempty,gte=0,lte=100"`
}

// Validate validates the CreateUserRequest using the validator.
func (r *CreateUserRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the UpdatePasswordRequest using the validator.
func (r *UpdatePasswordRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the UpdateProfileRequest using the validator.
func (r *UpdateProfileRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ProgressUpdateRequest using the validator.
func (r *ProgressUpdateRequest) Validate() error {
	return validate.Struct(r)
}
