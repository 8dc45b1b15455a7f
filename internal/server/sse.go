package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/hub"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/types"
)

// sseHeartbeat is how often idle streams get a keep-alive comment.
var sseHeartbeat = 15 * time.Second

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteComment sends an SSE comment line; clients ignore it.
func (s *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", types.SocketMessage{Error: message}) //nolint:errcheck
}

// WriteEnd sends the final event of an interview stream
func (s *SSEWriter) WriteEnd(interviewID string) {
	s.WriteEvent("end", map[string]string{ //nolint:errcheck
		"interview_id": interviewID,
		"status":       "ended",
	})
}

// handleEvents mirrors the interview's broadcast group as server-sent
// events. The stream closes once the interview has ended.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	interviewID := strings.TrimSpace(r.PathValue("interview_id"))
	st, err := s.deps.Registry.Get(r.Context(), interviewID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Interview not found")
			return
		}
		s.errorFrom(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sub := s.deps.Hub.Subscribe(hub.GroupName(interviewID))
	defer sub.Close()

	if err := sse.WriteEvent("subscribed", map[string]any{
		"interview_id":   interviewID,
		"current_state":  st.Stage,
		"question_count": st.QuestionCount,
		"max_questions":  st.MaxQuestions,
	}); err != nil {
		return
	}
	if !st.Active() {
		sse.WriteEnd(interviewID)
		return
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if s.ended(r, interviewID) {
				sse.WriteEnd(interviewID)
				return
			}
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		case msg := <-sub.C():
			if err := sse.WriteEvent("message", types.SocketMessage{Message: msg}); err != nil {
				s.logger.Debug("sse write failed", zap.String("interview_id", interviewID), zap.Error(err))
				return
			}
			if s.ended(r, interviewID) {
				sse.WriteEnd(interviewID)
				return
			}
		}
	}
}

// ended reports whether the interview has finished or been removed. Messages
// are published before the registry saves, so the stored stage can lag the
// closing message; the heartbeat check catches that case.
func (s *Server) ended(r *http.Request, interviewID string) bool {
	st, err := s.deps.Registry.Get(r.Context(), interviewID)
	if errors.Is(err, session.ErrNotFound) {
		return true
	}
	return err == nil && !st.Active()
}
