package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/types"
)

// handleStartInterview creates a session, greets the candidate and asks the
// first question. A previous session of the same user is discarded.
func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req types.StartInterviewRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	cfg, err := interviewConfig(&req)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	if cfg.UserID != "" {
		if prev, err := s.deps.Registry.GetByUser(r.Context(), cfg.UserID); err == nil {
			if err := s.deps.Registry.Remove(r.Context(), prev.ID); err != nil {
				s.logger.Warn("failed to remove previous interview",
					zap.String("user_id", cfg.UserID),
					zap.String("interview_id", prev.ID),
					zap.Error(err))
			}
		}
	}

	st, turn, err := s.startSession(r.Context(), cfg)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.StartInterviewResponse{
		UserID:           st.UserID,
		InterviewID:      st.ID,
		Message:          turn.Last(),
		Messages:         nonNil(turn.Messages),
		InterviewStarted: st.Started,
		MaxQuestions:     st.MaxQuestions,
	})
}

// startSession registers a session and runs its opening cycle. A session
// whose opening fails is removed again.
func (s *Server) startSession(ctx context.Context, cfg interview.Config) (*interview.State, interview.Turn, error) {
	var turn interview.Turn
	created, err := s.deps.Registry.Create(ctx, cfg)
	if err != nil {
		return nil, turn, err
	}
	st, err := s.deps.Registry.Update(ctx, created.ID, func(st *interview.State) error {
		var err error
		turn, err = s.deps.Engine.Start(ctx, st)
		return err
	})
	if err != nil {
		_ = s.deps.Registry.Remove(context.WithoutCancel(ctx), created.ID)
		return nil, turn, err
	}
	return st, turn, nil
}

func interviewConfig(req *types.StartInterviewRequest) (interview.Config, error) {
	kind, err := interview.ParseKind(req.InterviewType)
	if err != nil {
		return interview.Config{}, err
	}
	level, err := interview.ParseLevel(req.ExperienceLevel)
	if err != nil {
		return interview.Config{}, err
	}
	return interview.Config{
		UserID:          strings.TrimSpace(req.UserID),
		JobTitle:        req.JobTitle,
		Company:         req.Company,
		JobDescription:  req.JobDescription,
		Kind:            kind,
		Level:           level,
		DurationMinutes: req.Duration,
		VoiceAnalysis:   req.VoiceAnalysis,
	}, nil
}

// handleRespond runs one evaluation cycle for the user's active session.
func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req types.RespondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	current, err := s.deps.Registry.GetByUser(r.Context(), req.UserID)
	if errors.Is(err, session.ErrNotFound) {
		s.jsonResponse(w, http.StatusNotFound, map[string]any{
			"active": false,
			"error":  "No active interview found for this user",
		})
		return
	}
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	st, turn, err := s.respond(r.Context(), current.ID, req.Response)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.RespondResponse{
		Message:        turn.Last(),
		Messages:       nonNil(turn.Messages),
		QuestionCount:  st.QuestionCount,
		MaxQuestions:   st.MaxQuestions,
		VoiceFeedback:  turn.VoiceFeedback,
		InterviewEnded: !st.Active(),
	})
}

// respond runs one engine cycle on session id under the registry lock. It is
// shared by the REST and websocket channels.
func (s *Server) respond(ctx context.Context, id, answer string) (*interview.State, interview.Turn, error) {
	var turn interview.Turn
	st, err := s.deps.Registry.Update(ctx, id, func(st *interview.State) error {
		var err error
		turn, err = s.deps.Engine.Respond(ctx, st, answer)
		return err
	})
	if err != nil {
		return nil, turn, err
	}
	if !st.Active() {
		s.logger.Info("interview completed",
			zap.String("interview_id", st.ID),
			zap.Int("question_count", st.QuestionCount))
	}
	return st, turn, nil
}

// handleStatus reports on the user's session. Unknown users are inactive, not an error.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Registry.GetByUser(r.Context(), r.PathValue("user_id"))
	if errors.Is(err, session.ErrNotFound) {
		s.jsonResponse(w, http.StatusOK, types.InterviewStatus{Active: false})
		return
	}
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.InterviewStatus{
		Active:          st.Active(),
		InterviewID:     st.ID,
		QuestionCount:   st.QuestionCount,
		MaxQuestions:    st.MaxQuestions,
		CurrentState:    string(st.Stage),
		JobTitle:        st.JobTitle,
		Company:         st.Company,
		InterviewType:   string(st.Kind),
		ExperienceLevel: string(st.Level),
	})
}

// handleEndInterview closes the user's interview early and forgets the session.
func (s *Server) handleEndInterview(w http.ResponseWriter, r *http.Request) {
	var req types.EndInterviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	current, err := s.deps.Registry.GetByUser(r.Context(), req.UserID)
	if errors.Is(err, session.ErrNotFound) {
		s.jsonResponse(w, http.StatusNotFound, map[string]any{
			"active": false,
			"error":  "No active interview found for this user",
		})
		return
	}
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	var turn interview.Turn
	_, err = s.deps.Registry.Update(r.Context(), current.ID, func(st *interview.State) error {
		var err error
		turn, err = s.deps.Engine.End(r.Context(), st)
		return err
	})
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		s.errorFrom(w, r, err)
		return
	}
	if err := s.deps.Registry.Remove(r.Context(), current.ID); err != nil {
		s.errorFrom(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.EndInterviewResponse{
		Status:  "ended",
		UserID:  req.UserID,
		Message: turn.Last(),
	})
}

func nonNil(msgs []string) []string {
	if msgs == nil {
		return []string{}
	}
	return msgs
}
