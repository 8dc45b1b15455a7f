package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an account
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	PasswordHash   string    `json:"-"` // Never serialize to JSON
	PasswordSet    bool      `json:"password_set"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Resume is a saved, parsed résumé
type Resume struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	ResumeData       json.RawMessage `json:"resume_data"`
	OriginalFilename string          `json:"original_filename"`
	ObjectKey        string          `json:"object_key,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CoverLetter is a generated cover letter kept for history
type CoverLetter struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyName string    `json:"company_name"`
	JobTitle    string    `json:"job_title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Progress holds per-user activity counters
type Progress struct {
	UserID         uuid.UUID `json:"-"`
	ResumeAnalyzed int       `json:"resume_analyzed"`
	JobAnalyzed    int       `json:"job_analyzed"`
	CoverLetters   int       `json:"cover_letters"`
	SuccessRate    float64   `json:"success_rate"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProgressDelta is added to a user's counters. SuccessRate, when set,
// replaces the stored value.
type ProgressDelta struct {
	ResumeAnalyzed int      `json:"resume_analyzed"`
	JobAnalyzed    int      `json:"job_analyzed"`
	CoverLetters   int      `json:"cover_letters"`
	SuccessRate    *float64 `json:"success_rate,omitempty"`
}

// UserStats summarizes a user's saved artifacts
type UserStats struct {
	ResumeCount      int        `json:"resume_count"`
	CoverLetterCount int        `json:"cover_letter_count"`
	LatestResumeAt   *time.Time `json:"latest_resume_at,omitempty"`
	Progress         Progress   `json:"progress"`
}
