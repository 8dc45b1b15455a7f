package types

import "strings"

// StartInterviewRequest configures a new mock interview. Enum fields are
// case-insensitive; empty values take defaults.
type StartInterviewRequest struct {
	UserID          string `json:"user_id,omitempty" validate:"omitempty,max=128"`
	JobTitle        string `json:"job_title" validate:"max=200"`
	Company         string `json:"company" validate:"max=200"`
	JobDescription  string `json:"job_description" validate:"max=20000"`
	InterviewType   string `json:"interview_type" validate:"omitempty,oneof=technical behavioral mixed"`
	ExperienceLevel string `json:"experience_level" validate:"omitempty,oneof=entry junior mid senior principal"`
	Duration        int    `json:"duration" validate:"gte=0,lte=240"`
	VoiceAnalysis   bool   `json:"voice_analysis"`
}

// StartInterviewResponse is returned once the greeting and first question exist.
type StartInterviewResponse struct {
	UserID           string   `json:"user_id"`
	InterviewID      string   `json:"interview_id"`
	Message          string   `json:"message"`
	Messages         []string `json:"messages"`
	InterviewStarted bool     `json:"interview_started"`
	MaxQuestions     int      `json:"max_questions"`
}

// RespondRequest carries the candidate's answer.
type RespondRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Response string `json:"response" validate:"required"`
}

// RespondResponse reports one completed cycle. Message is the last emitted
// assistant message; Messages lists all of them.
type RespondResponse struct {
	Message        string   `json:"message"`
	Messages       []string `json:"messages"`
	QuestionCount  int      `json:"question_count"`
	MaxQuestions   int      `json:"max_questions"`
	VoiceFeedback  string   `json:"voice_feedback,omitempty"`
	InterviewEnded bool     `json:"interview_ended"`
}

// InterviewStatus describes a user's session. Only Active is set when none exists.
type InterviewStatus struct {
	Active          bool   `json:"active"`
	InterviewID     string `json:"interview_id,omitempty"`
	QuestionCount   int    `json:"question_count,omitempty"`
	MaxQuestions    int    `json:"max_questions,omitempty"`
	CurrentState    string `json:"current_state,omitempty"`
	JobTitle        string `json:"job_title,omitempty"`
	Company         string `json:"company,omitempty"`
	InterviewType   string `json:"interview_type,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
}

// EndInterviewRequest names the user whose interview should end.
type EndInterviewRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// EndInterviewResponse carries the closing statement, if one was produced.
type EndInterviewResponse struct {
	Status  string `json:"status"`
	UserID  string `json:"user_id"`
	Message string `json:"message,omitempty"`
}

// SocketMessage is the websocket frame in both directions.
type SocketMessage struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Validate lower-cases the enum fields, then validates the request.
func (r *StartInterviewRequest) Validate() error {
	r.InterviewType = strings.ToLower(strings.TrimSpace(r.InterviewType))
	r.ExperienceLevel = strings.ToLower(strings.TrimSpace(r.ExperienceLevel))
	return validate.Struct(r)
}

// Validate validates the RespondRequest using the validator.
func (r *RespondRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the EndInterviewRequest using the validator.
func (r *EndInterviewRequest) Validate() error {
	return validate.Struct(r)
}
