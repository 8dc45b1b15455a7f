package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const resumeColumns = `id, user_id, resume_data, original_filename, object_key, created_at, updated_at`

func scanResume(row pgx.Row) (*Resume, error) {
	var r Resume
	var data []byte
	if err := row.Scan(&r.ID, &r.UserID, &data, &r.OriginalFilename, &r.ObjectKey, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ResumeData = json.RawMessage(data)
	return &r, nil
}

// SaveResume stores a parsed résumé for a user
func (db *DB) SaveResume(ctx context.Context, userID uuid.UUID, data json.RawMessage, filename, objectKey string) (*Resume, error) {
	if filename == "" {
		filename = "resume.pdf"
	}
	r, err := scanResume(db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, resume_data, original_filename, object_key)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+resumeColumns,
		userID, []byte(data), filename, objectKey))
	if err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return r, nil
}

// GetLatestResume returns the user's newest résumé, or nil, nil
func (db *DB) GetLatestResume(ctx context.Context, userID uuid.UUID) (*Resume, error) {
	r, err := scanResume(db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest resume: %w", err)
	}
	return r, nil
}

// ListResumes returns the user's résumés newest first
func (db *DB) ListResumes(ctx context.Context, userID uuid.UUID) ([]Resume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	resumes := []Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, *r)
	}
	return resumes, rows.Err()
}
