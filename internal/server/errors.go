// Package server provides the HTTP API: mock interviews over REST,
// websocket and SSE, plus résumé services and account management.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/session"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return "A user with this email is already registered. Please use a different email or try logging in."
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "Current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailErr     *ErrEmailAlreadyExists
		credErr      *ErrInvalidCredentials
		mismatchErr  *ErrPasswordMismatch
		notFoundErr  *ErrUserNotFound
		validErr     *ErrValidation
		resumeValErr *resume.ValidationError
		pdfErr       *resume.PDFError
		fetchErr     *fetch.Error
		configErr    *llm.ConfigError
		transientErr *llm.TransientError
		permErr      *llm.PermanentError
		upstreamErr  *resume.UpstreamError
	)
	switch {
	case errors.As(err, &emailErr):
		return http.StatusConflict
	case errors.As(err, &credErr), errors.As(err, &mismatchErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFoundErr), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validErr), errors.As(err, &resumeValErr), errors.As(err, &pdfErr),
		errors.Is(err, interview.ErrInvalidConfig), errors.Is(err, interview.ErrEmptyResponse):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrInterviewEnded), errors.Is(err, interview.ErrNotAwaitingResponse),
		errors.Is(err, interview.ErrAlreadyStarted):
		return http.StatusConflict
	case errors.As(err, &fetchErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.As(err, &transientErr), errors.As(err, &permErr), errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody renders err for API clients: {"error": ...} plus "message" or
// "raw" when the failure came from a model reply.
func errorBody(err error) map[string]string {
	var up *resume.UpstreamError
	if errors.As(err, &up) {
		return up.Body()
	}
	var configErr *llm.ConfigError
	if errors.As(err, &configErr) {
		return map[string]string{"error": "Model gateway is misconfigured"}
	}
	return map[string]string{"error": err.Error()}
}
