package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartInterviewRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     StartInterviewRequest
		wantErr bool
	}{
		{"defaults", StartInterviewRequest{}, false},
		{"full", StartInterviewRequest{JobTitle: "SRE", InterviewType: "technical", ExperienceLevel: "senior", Duration: 45}, false},
		{"case insensitive enums", StartInterviewRequest{InterviewType: "Behavioral", ExperienceLevel: "JUNIOR"}, false},
		{"unknown type", StartInterviewRequest{InterviewType: "trivia"}, true},
		{"unknown level", StartInterviewRequest{ExperienceLevel: "wizard"}, true},
		{"negative duration", StartInterviewRequest{Duration: -5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStartInterviewRequest_ValidateNormalizesEnums(t *testing.T) {
	req := StartInterviewRequest{InterviewType: " Technical ", ExperienceLevel: "SENIOR"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "technical", req.InterviewType)
	assert.Equal(t, "senior", req.ExperienceLevel)
}

func TestRespondRequest_Validate(t *testing.T) {
	assert.NoError(t, (&RespondRequest{UserID: "u1", Response: "I used Go."}).Validate())
	assert.Error(t, (&RespondRequest{UserID: "u1"}).Validate())
	assert.Error(t, (&RespondRequest{Response: "hi"}).Validate())
	assert.Error(t, (&EndInterviewRequest{}).Validate())
}

func TestInterviewStatus_InactiveIsMinimal(t *testing.T) {
	data, err := json.Marshal(InterviewStatus{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"active":false}`, string(data))
}

func TestMatchRequest_Validate(t *testing.T) {
	resume := json.RawMessage(`{"skills":["Go"]}`)
	assert.NoError(t, (&MatchRequest{ResumeData: resume, JobDescription: "Go dev"}).Validate())
	assert.NoError(t, (&MatchRequest{ResumeData: resume, JobURL: "https://jobs.example.com/1"}).Validate())
	assert.Error(t, (&MatchRequest{ResumeData: resume}).Validate())
	assert.Error(t, (&MatchRequest{JobDescription: "Go dev"}).Validate())
	assert.Error(t, (&MatchRequest{ResumeData: resume, JobURL: "not a url"}).Validate())
}
