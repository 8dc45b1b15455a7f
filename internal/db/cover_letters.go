package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveCoverLetter records a generated cover letter
func (db *DB) SaveCoverLetter(ctx context.Context, userID uuid.UUID, company, jobTitle, content string) (*CoverLetter, error) {
	c := CoverLetter{UserID: userID, CompanyName: company, JobTitle: jobTitle, Content: content}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO cover_letters (user_id, company_name, job_title, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		userID, company, jobTitle, content,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save cover letter: %w", err)
	}
	return &c, nil
}

// ListCoverLetters returns the user's cover letters newest first
func (db *DB) ListCoverLetters(ctx context.Context, userID uuid.UUID) ([]CoverLetter, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, company_name, job_title, content, created_at
		 FROM cover_letters
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cover letters: %w", err)
	}
	defer rows.Close()

	letters := []CoverLetter{}
	for rows.Next() {
		var c CoverLetter
		if err := rows.Scan(&c.ID, &c.UserID, &c.CompanyName, &c.JobTitle, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cover letter: %w", err)
		}
		letters = append(letters, c)
	}
	return letters, rows.Err()
}
