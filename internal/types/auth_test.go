package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatable interface{ Validate() error }

func ptr[T any](v T) *T { return &v }

func TestAuthRequests_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     validatable
		wantErr string
	}{
		{name: "register ok", req: &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "123456"}},
		{name: "register with phone", req: &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "123456", Phone: "555-0100"}},
		{name: "register missing name", req: &CreateUserRequest{Email: "ada@example.com", Password: "123456"}, wantErr: "required"},
		{name: "register bad email", req: &CreateUserRequest{Name: "Ada", Email: "ada", Password: "123456"}, wantErr: "email"},
		{name: "register short password", req: &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "12345"}, wantErr: "min"},

		{name: "login ok", req: &LoginRequest{Email: "ada@example.com", Password: "x"}},
		{name: "login missing password", req: &LoginRequest{Email: "ada@example.com"}, wantErr: "required"},
		{name: "login bad email", req: &LoginRequest{Email: "nope", Password: "x"}, wantErr: "email"},

		{name: "password ok", req: &UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "longer1"}},
		{name: "password missing current", req: &UpdatePasswordRequest{NewPassword: "longer1"}, wantErr: "required"},
		{name: "password new too short", req: &UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "abc"}, wantErr: "min"},

		{name: "profile empty is ok", req: &UpdateProfileRequest{}},
		{name: "profile picture url", req: &UpdateProfileRequest{ProfilePicture: ptr("https://cdn.example.com/a.png")}},
		{name: "profile picture not url", req: &UpdateProfileRequest{ProfilePicture: ptr("a.png")}, wantErr: "url"},
		{name: "profile name too long", req: &UpdateProfileRequest{Name: ptr(strings.Repeat("a", 201))}, wantErr: "max"},

		{name: "progress ok", req: &ProgressUpdateRequest{ResumeAnalyzed: 1, SuccessRate: ptr(55.5)}},
		{name: "progress negative", req: &ProgressUpdateRequest{JobAnalyzed: -1}, wantErr: "gte"},
		{name: "progress rate above 100", req: &ProgressUpdateRequest{SuccessRate: ptr(101.0)}, wantErr: "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoginResponse_JSON(t *testing.T) {
	joined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   "tok",
		User: &User{
			ID:          uuid.MustParse("6f1c2a8e-4a8e-4f7a-9d3a-0f6b1b2c3d4e"),
			Name:        "Ada",
			Email:       "ada@example.com",
			PasswordSet: true,
			DateJoined:  joined,
			UpdatedAt:   joined,
		},
	}

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "tok", raw["token"])
	user := raw["user"].(map[string]any)
	assert.Equal(t, "2024-03-01T12:00:00Z", user["date_joined"])
	assert.Nil(t, user["profilePicture"], "an unset picture is null")
	assert.NotContains(t, user, "phone")
	assert.NotContains(t, user, "password")
}
