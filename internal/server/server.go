package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/hub"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/server/ratelimit"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/storage"
)

// JobTextFetcher downloads a job posting and returns its main text.
type JobTextFetcher interface {
	JobText(ctx context.Context, url string) (string, error)
}

// Deps are the collaborators the server routes requests to. Engine,
// Registry and Hub are required. The account and résumé routes are mounted
// only when DB and JWT are set; Jobs and Storage are optional.
type Deps struct {
	Engine   *interview.Engine
	Registry *session.Registry
	Hub      *hub.Hub

	Parser  *resume.Parser
	Matcher *resume.Matcher
	Letters *resume.CoverLetterWriter
	Jobs    JobTextFetcher
	Storage storage.Store

	DB        DBClient
	JWT       *JWTService
	Passwords *config.PasswordConfig

	Limiter     *ratelimit.Limiter
	CORSOrigins []string
	Logger      *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	deps        Deps
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter
	userService *UserService
	authHandler *AuthHandler
	handler     http.Handler
}

// New creates a new server instance listening on port.
func New(port int, deps Deps) (*Server, error) {
	if deps.Engine == nil || deps.Registry == nil || deps.Hub == nil {
		return nil, fmt.Errorf("engine, registry and hub are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		deps:        deps,
		logger:      deps.Logger,
		rateLimiter: deps.Limiter,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Interview
	mux.HandleFunc("POST /interview/start", s.handleStartInterview)
	mux.HandleFunc("POST /interview/respond", s.handleRespond)
	mux.HandleFunc("GET /interview/status/{user_id}", s.handleStatus)
	mux.HandleFunc("POST /interview/end", s.handleEndInterview)
	mux.HandleFunc("GET /sse/interview/{interview_id}", s.handleEvents)
	mux.HandleFunc("GET /ws/interview/{interview_id}", s.handleWebSocket)

	if deps.DB != nil && deps.JWT != nil {
		s.userService = NewUserService(deps.DB, deps.Passwords)
		s.authHandler = NewAuthHandler(s.userService, deps.JWT, deps.DB, deps.Logger)
		auth := middleware.AuthMiddleware(deps.JWT.AsTokenValidator())
		protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

		// Accounts
		mux.HandleFunc("POST /api/auth/register/", s.authHandler.Register)
		mux.HandleFunc("POST /api/auth/login/", s.authHandler.Login)
		mux.Handle("POST /api/auth/logout/", protected(s.authHandler.Logout))
		mux.Handle("GET /api/auth/profile/", protected(s.authHandler.GetProfile))
		mux.Handle("PUT /api/auth/profile/", protected(s.authHandler.UpdateProfile))
		mux.Handle("POST /api/auth/change-password/", protected(s.authHandler.UpdatePassword))
		mux.Handle("GET /api/auth/progress/", protected(s.authHandler.GetProgress))
		mux.Handle("POST /api/auth/progress/update/", protected(s.authHandler.UpdateProgress))

		// Résumés
		mux.Handle("POST /api/resumes/process/", protected(s.handleProcessResume))
		mux.Handle("POST /api/resumes/match/", protected(s.handleMatch))
		mux.Handle("POST /api/resumes/save/", protected(s.handleSaveResume))
		mux.Handle("GET /api/resumes/latest/", protected(s.handleLatestResume))
		mux.Handle("GET /api/resumes/history/", protected(s.handleResumeHistory))
		mux.Handle("POST /api/resumes/cover-letter/", protected(s.handleCoverLetter))
		mux.Handle("POST /api/resumes/cover-letters/generate/", protected(s.handleCoverLetter))
		mux.Handle("POST /api/resumes/cover-letters/regenerate/", protected(s.handleCoverLetter))
		mux.Handle("GET /api/resumes/cover-letters/history/", protected(s.handleCoverLetterHistory))
		mux.Handle("GET /api/resumes/user-stats/", protected(s.handleUserStats))
	}

	s.handler = s.withRecover(s.withLogging(s.withRateLimit(s.withCORS(mux))))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: websocket and SSE connections are long lived.
	}
	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.deps.CORSOrigins))
	for _, o := range s.deps.CORSOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(allowed) == 0 || allowed["*"]:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logging. It forwards
// Flush and Hijack so SSE and websocket handlers keep working behind it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("hijacking not supported")
	}
	if r.status == 0 {
		r.status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// withRecover turns handler panics into 500 responses.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()))
				s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data, s.logger)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFrom maps err to its status and renders it. Unclassified failures
// are logged and reported without detail.
func (s *Server) errorFrom(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	var configErr *llm.ConfigError
	if status == http.StatusInternalServerError && !errors.As(err, &configErr) {
		s.errorResponse(w, status, "Internal server error")
		return
	}
	s.jsonResponse(w, status, errorBody(err))
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Message: "Invalid request body"}
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints where every field has a
// default; an empty body leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return &ErrValidation{Message: "Invalid request body"}
}

const maxJSONBody = 1 << 20

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is ignored since it can be forged without a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds())
		if secs < 1 {
			secs = 1
		}
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime))
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
