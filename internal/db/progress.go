package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetProgress returns the user's counters, all zero if none were recorded
func (db *DB) GetProgress(ctx context.Context, userID uuid.UUID) (*Progress, error) {
	return db.AddProgress(ctx, userID, ProgressDelta{})
}

// AddProgress applies delta to the user's counters and returns the result
func (db *DB) AddProgress(ctx context.Context, userID uuid.UUID, delta ProgressDelta) (*Progress, error) {
	p := Progress{UserID: userID}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO user_progress (user_id, resume_analyzed, job_analyzed, cover_letters, success_rate)
		 VALUES ($1, $2, $3, $4, COALESCE($5, 0))
		 ON CONFLICT (user_id) DO UPDATE SET
			resume_analyzed = user_progress.resume_analyzed + EXCLUDED.resume_analyzed,
			job_analyzed = user_progress.job_analyzed + EXCLUDED.job_analyzed,
			cover_letters = user_progress.cover_letters + EXCLUDED.cover_letters,
			success_rate = COALESCE($5, user_progress.success_rate),
			updated_at = NOW()
		 RETURNING resume_analyzed, job_analyzed, cover_letters, success_rate, updated_at`,
		userID, delta.ResumeAnalyzed, delta.JobAnalyzed, delta.CoverLetters, delta.SuccessRate,
	).Scan(&p.ResumeAnalyzed, &p.JobAnalyzed, &p.CoverLetters, &p.SuccessRate, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	return &p, nil
}

// GetUserStats counts saved résumés and cover letters
func (db *DB) GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	var s UserStats
	err := db.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM resumes WHERE user_id = $1),
			(SELECT COUNT(*) FROM cover_letters WHERE user_id = $1),
			(SELECT MAX(created_at) FROM resumes WHERE user_id = $1)`,
		userID,
	).Scan(&s.ResumeCount, &s.CoverLetterCount, &s.LatestResumeAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	p, err := db.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.Progress = *p
	return &s, nil
}
