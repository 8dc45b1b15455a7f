package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MatchRequest asks for a résumé/job fit score. One of JobDescription and
// JobURL is required.
type MatchRequest struct {
	ResumeData     json.RawMessage `json:"resume_data" validate:"required"`
	JobDescription string          `json:"job_description" validate:"required_without=JobURL"`
	JobURL         string          `json:"job_url" validate:"omitempty,http_url"`
}

// SaveResumeRequest stores a parsed résumé.
type SaveResumeRequest struct {
	ResumeData       json.RawMessage `json:"resume_data" validate:"required"`
	OriginalFilename string          `json:"original_filename" validate:"max=255"`
	ObjectKey        string          `json:"object_key,omitempty" validate:"max=512"`
}

// CoverLetterRequest asks for a generated cover letter.
type CoverLetterRequest struct {
	ResumeData        json.RawMessage `json:"resume_data,omitempty"`
	JobDescription    string          `json:"job_description"`
	JobURL            string          `json:"job_url" validate:"omitempty,http_url"`
	CompanyName       string          `json:"company_name" validate:"max=200"`
	JobTitle          string          `json:"job_title" validate:"max=200"`
	AdditionalPrompts string          `json:"additional_prompts" validate:"max=4000"`
}

// CoverLetterResponse wraps a generated letter.
type CoverLetterResponse struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	CoverLetter string     `json:"cover_letter"`
}

// ResumeSummary is one entry of the résumé history.
type ResumeSummary struct {
	ID               uuid.UUID       `json:"id"`
	OriginalFilename string          `json:"original_filename"`
	CreatedAt        time.Time       `json:"created_at"`
	ResumeData       json.RawMessage `json:"resume_data"`
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SaveResumeRequest using the validator.
func (r *SaveResumeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the CoverLetterRequest using the validator.
func (r *CoverLetterRequest) Validate() error {
	return validate.Struct(r)
}
