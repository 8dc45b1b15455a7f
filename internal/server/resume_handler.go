package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/storage"
	"github.com/jonathan/interview-coach/internal/types"
)

// maxUploadBytes bounds résumé uploads.
const maxUploadBytes = 10 << 20

// objectKeyHeader carries the storage key of an uploaded résumé so a later
// save can reference it.
const objectKeyHeader = "X-Resume-Object-Key"

// handleProcessResume extracts and parses an uploaded PDF résumé.
func (s *Server) handleProcessResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("pdf_doc")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		s.errorResponse(w, http.StatusBadRequest, "Only PDF files are supported")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	text, err := resume.ExtractPDFBytes(data)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	parsed, err := s.deps.Parser.Parse(r.Context(), text)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	if s.deps.Storage != nil {
		key := storage.ResumeKey(userID, header.Filename)
		if err := s.deps.Storage.Put(r.Context(), key, data, "application/pdf"); err != nil {
			s.logger.Warn("failed to store uploaded resume", zap.String("key", key), zap.Error(err))
		} else {
			w.Header().Set(objectKeyHeader, key)
		}
	}
	s.recordProgress(r.Context(), userID, db.ProgressDelta{ResumeAnalyzed: 1})

	s.jsonResponse(w, http.StatusOK, parsed)
}

// handleMatch scores a résumé against a job description or posting URL.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	var req types.MatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		msg := "Both resume_data and job_description are required"
		if req.JobURL != "" && len(req.ResumeData) > 0 {
			msg = extractValidationErrors(err)
		}
		s.errorResponse(w, http.StatusBadRequest, msg)
		return
	}

	job, err := s.jobText(r.Context(), req.JobDescription, req.JobURL)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	result, err := s.deps.Matcher.Analyze(r.Context(), req.ResumeData, job)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	s.recordProgress(r.Context(), userID, db.ProgressDelta{JobAnalyzed: 1})

	s.jsonResponse(w, http.StatusOK, result)
}

// handleSaveResume stores parsed résumé data for the user.
func (s *Server) handleSaveResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	var req types.SaveResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if err := req.Validate(); err != nil || !json.Valid(req.ResumeData) {
		s.errorResponse(w, http.StatusBadRequest, "resume_data is required")
		return
	}
	if req.ObjectKey != "" && !storage.OwnedBy(req.ObjectKey, userID) {
		s.errorResponse(w, http.StatusBadRequest, "object_key does not belong to this user")
		return
	}

	saved, err := s.deps.DB.SaveResume(r.Context(), userID, req.ResumeData, req.OriginalFilename, req.ObjectKey)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Resume saved successfully",
		"id":      saved.ID,
	})
}

// handleLatestResume returns the user's most recently saved résumé.
func (s *Server) handleLatestResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	latest, err := s.deps.DB.GetLatestResume(r.Context(), userID)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if latest == nil {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"message": "No resume found"})
		return
	}
	s.jsonResponse(w, http.StatusOK, latest)
}

// handleResumeHistory lists saved résumés, newest first.
func (s *Server) handleResumeHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	resumes, err := s.deps.DB.ListResumes(r.Context(), userID)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	out := make([]types.ResumeSummary, 0, len(resumes))
	for _, rs := range resumes {
		out = append(out, types.ResumeSummary{
			ID:               rs.ID,
			OriginalFilename: rs.OriginalFilename,
			CreatedAt:        rs.CreatedAt,
			ResumeData:       rs.ResumeData,
		})
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleCoverLetter drafts a cover letter and keeps it in the user's
// history. Without resume_data the latest saved résumé is used.
func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	var req types.CoverLetterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	job := req.JobDescription
	if strings.TrimSpace(job) == "" && req.JobURL != "" {
		text, err := s.jobText(r.Context(), "", req.JobURL)
		if err != nil {
			s.errorFrom(w, r, err)
			return
		}
		job = text
	}

	resumeData := req.ResumeData
	if len(resumeData) == 0 || string(resumeData) == "null" {
		latest, err := s.deps.DB.GetLatestResume(r.Context(), userID)
		if err != nil {
			s.errorFrom(w, r, err)
			return
		}
		if latest != nil {
			resumeData = latest.ResumeData
		}
	}

	letter, err := s.deps.Letters.Generate(r.Context(), resume.CoverLetterRequest{
		ResumeData:        resumeData,
		JobDescription:    job,
		CompanyName:       req.CompanyName,
		JobTitle:          req.JobTitle,
		AdditionalPrompts: req.AdditionalPrompts,
	})
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	resp := types.CoverLetterResponse{CoverLetter: letter}
	saved, err := s.deps.DB.SaveCoverLetter(r.Context(), userID, req.CompanyName, req.JobTitle, letter)
	if err != nil {
		s.logger.Warn("failed to save cover letter", zap.Error(err))
	} else {
		resp.ID = &saved.ID
	}
	s.recordProgress(r.Context(), userID, db.ProgressDelta{CoverLetters: 1})

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleCoverLetterHistory lists generated cover letters, newest first.
func (s *Server) handleCoverLetterHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	letters, err := s.deps.DB.ListCoverLetters(r.Context(), userID)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if letters == nil {
		letters = []db.CoverLetter{}
	}
	s.jsonResponse(w, http.StatusOK, letters)
}

// handleUserStats summarizes the user's saved artifacts and counters.
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authUser(w, r)
	if !ok {
		return
	}
	stats, err := s.deps.DB.GetUserStats(r.Context(), userID)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// jobText returns description, or the text behind url when description is blank.
func (s *Server) jobText(ctx context.Context, description, url string) (string, error) {
	if strings.TrimSpace(description) != "" {
		return description, nil
	}
	if url == "" {
		return "", &ErrValidation{Field: "job_description", Message: "job_description or job_url is required"}
	}
	if s.deps.Jobs == nil {
		return "", &ErrValidation{Field: "job_url", Message: "fetching job postings is disabled"}
	}
	return s.deps.Jobs.JobText(ctx, url)
}

// recordProgress bumps activity counters. Failures are logged only; the
// user's request already succeeded.
func (s *Server) recordProgress(ctx context.Context, userID uuid.UUID, delta db.ProgressDelta) {
	if _, err := s.deps.DB.AddProgress(ctx, userID, delta); err != nil {
		s.logger.Warn("failed to record progress", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *Server) authUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}
