package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeHistory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	userID := createTestUser(t, db)

	latest, err := db.GetLatestResume(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := db.SaveResume(ctx, userID, json.RawMessage(`{"name":"First"}`), "", "")
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", first.OriginalFilename)

	time.Sleep(10 * time.Millisecond)
	second, err := db.SaveResume(ctx, userID, json.RawMessage(`{"name":"Second"}`), "cv.pdf", "resumes/x.pdf")
	require.NoError(t, err)

	latest, err = db.GetLatestResume(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "resumes/x.pdf", latest.ObjectKey)
	assert.JSONEq(t, `{"name":"Second"}`, string(latest.ResumeData))

	all, err := db.ListResumes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestCoverLetterHistory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	userID := createTestUser(t, db)

	letters, err := db.ListCoverLetters(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, letters)

	saved, err := db.SaveCoverLetter(ctx, userID, "Acme", "Engineer", "Dear Acme")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)

	letters, err = db.ListCoverLetters(ctx, userID)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, "Dear Acme", letters[0].Content)
}

func TestProgressAndStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()
	userID := createTestUser(t, db)

	p, err := db.GetProgress(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, p.ResumeAnalyzed)

	rate := 0.75
	_, err = db.AddProgress(ctx, userID, ProgressDelta{ResumeAnalyzed: 1, JobAnalyzed: 2})
	require.NoError(t, err)
	p, err = db.AddProgress(ctx, userID, ProgressDelta{ResumeAnalyzed: 1, SuccessRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, 2, p.ResumeAnalyzed)
	assert.Equal(t, 2, p.JobAnalyzed)
	assert.InDelta(t, 0.75, p.SuccessRate, 1e-9)

	_, err = db.SaveResume(ctx, userID, json.RawMessage(`{}`), "", "")
	require.NoError(t, err)
	stats, err := db.GetUserStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ResumeCount)
	assert.Equal(t, 0, stats.CoverLetterCount)
	assert.NotNil(t, stats.LatestResumeAt)
	assert.Equal(t, 2, stats.Progress.ResumeAnalyzed)
}
