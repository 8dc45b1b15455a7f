package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/hub"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/storage"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

// fakeDB is an in-memory DBClient.
type fakeDB struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	progress map[uuid.UUID]*db.Progress
	resumes  []db.Resume
	letters  []db.CoverLetter
	err      error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:    make(map[uuid.UUID]*db.User),
		progress: make(map[uuid.UUID]*db.Progress),
	}
}

func (f *fakeDB) CreateUser(_ context.Context, name, email, phone string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	now := time.Now()
	u := &db.User{ID: uuid.New(), Name: name, Email: strings.ToLower(email), Phone: phone, CreatedAt: now, UpdatedAt: now}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeDB) UpdateUser(_ context.Context, id uuid.UUID, name, phone, picture string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	u.Name, u.Phone, u.ProfilePicture = name, phone, picture
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (f *fakeDB) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("user not found: %s", id)
	}
	u.PasswordHash = hash
	u.PasswordSet = true
	return nil
}

func (f *fakeDB) GetProgress(ctx context.Context, userID uuid.UUID) (*db.Progress, error) {
	return f.AddProgress(ctx, userID, db.ProgressDelta{})
}

func (f *fakeDB) AddProgress(_ context.Context, userID uuid.UUID, d db.ProgressDelta) (*db.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.progress[userID]
	if !ok {
		p = &db.Progress{UserID: userID}
		f.progress[userID] = p
	}
	p.ResumeAnalyzed += d.ResumeAnalyzed
	p.JobAnalyzed += d.JobAnalyzed
	p.CoverLetters += d.CoverLetters
	if d.SuccessRate != nil {
		p.SuccessRate = *d.SuccessRate
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (f *fakeDB) GetUserStats(ctx context.Context, userID uuid.UUID) (*db.UserStats, error) {
	p, err := f.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &db.UserStats{Progress: *p}
	for _, r := range f.resumes {
		if r.UserID == userID {
			stats.ResumeCount++
			at := r.CreatedAt
			stats.LatestResumeAt = &at
		}
	}
	for _, l := range f.letters {
		if l.UserID == userID {
			stats.CoverLetterCount++
		}
	}
	return stats, nil
}

func (f *fakeDB) SaveResume(_ context.Context, userID uuid.UUID, data json.RawMessage, filename, key string) (*db.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if filename == "" {
		filename = "resume.pdf"
	}
	now := time.Now().Add(time.Duration(len(f.resumes)) * time.Millisecond)
	r := db.Resume{ID: uuid.New(), UserID: userID, ResumeData: data, OriginalFilename: filename, ObjectKey: key, CreatedAt: now, UpdatedAt: now}
	f.resumes = append(f.resumes, r)
	return &r, nil
}

func (f *fakeDB) GetLatestResume(ctx context.Context, userID uuid.UUID) (*db.Resume, error) {
	list, err := f.ListResumes(ctx, userID)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

func (f *fakeDB) ListResumes(_ context.Context, userID uuid.UUID) ([]db.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Resume
	for _, r := range f.resumes {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDB) SaveCoverLetter(_ context.Context, userID uuid.UUID, company, title, content string) (*db.CoverLetter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := db.CoverLetter{ID: uuid.New(), UserID: userID, CompanyName: company, JobTitle: title, Content: content, CreatedAt: time.Now()}
	f.letters = append(f.letters, l)
	return &l, nil
}

func (f *fakeDB) ListCoverLetters(_ context.Context, userID uuid.UUID) ([]db.CoverLetter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.CoverLetter
	for i := len(f.letters) - 1; i >= 0; i-- {
		if f.letters[i].UserID == userID {
			out = append(out, f.letters[i])
		}
	}
	return out, nil
}

var _ DBClient = (*fakeDB)(nil)

// fakeJobs serves job text from a map.
type fakeJobs map[string]string

func (f fakeJobs) JobText(_ context.Context, url string) (string, error) {
	text, ok := f[url]
	if !ok {
		return "", fmt.Errorf("no posting at %s", url)
	}
	return text, nil
}

// interviewReplies answers interview prompts by kind, like a cooperative
// model would.
func interviewReplies(evaluation string) func([]llm.Message) (string, error) {
	var mu sync.Mutex
	n := 0
	return func(msgs []llm.Message) (string, error) {
		last := msgs[len(msgs)-1].Content
		switch {
		case strings.Contains(last, "FOLLOW_UP_NEEDED:"):
			return evaluation, nil
		case strings.Contains(last, "vocal delivery"):
			return "Clear and steady.", nil
		case strings.Contains(last, "closing statement"):
			return "Thanks for your time!", nil
		case strings.Contains(last, "next interview question"):
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("Question %d?", n), nil
		}
		return "", fmt.Errorf("unexpected prompt")
	}
}

type testEnv struct {
	server   *Server
	fake     *llm.FakeClient
	db       *fakeDB
	store    *storage.MemoryStore
	registry *session.Registry
	hub      *hub.Hub
	jwt      *JWTService
}

// newTestEnv builds a server over fakes. The model answers interview
// prompts; tests queue extra replies on env.fake for résumé calls.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := llm.NewFakeClient()
	fake.Respond = interviewReplies("FEEDBACK: Solid answer.\nFOLLOW_UP_NEEDED: no")
	gw := llm.NewStaticGateway(fake)
	logger := zap.NewNop()

	h := hub.New(0, logger)
	registry := session.NewRegistry(session.NewMemoryStore(), logger)
	engine := interview.NewEngine(gw, hub.SessionEmitter{Hub: h}, logger)
	matcher, err := resume.NewMatcher(gw, 16, logger)
	require.NoError(t, err)

	jwtCfg, err := config.AuthConfig{JWTSecret: testJWTSecret}.JWT()
	require.NoError(t, err)
	passwords, err := config.AuthConfig{BcryptCost: 10}.Password()
	require.NoError(t, err)

	env := &testEnv{
		fake:     fake,
		db:       newFakeDB(),
		store:    storage.NewMemoryStore(),
		registry: registry,
		hub:      h,
		jwt:      NewJWTService(jwtCfg),
	}
	env.server, err = New(0, Deps{
		Engine:    engine,
		Registry:  registry,
		Hub:       h,
		Parser:    resume.NewParser(gw, logger),
		Matcher:   matcher,
		Letters:   resume.NewCoverLetterWriter(gw),
		Jobs:      fakeJobs{"https://jobs.example.com/1": "Senior Go engineer building APIs."},
		Storage:   env.store,
		DB:        env.db,
		JWT:       env.jwt,
		Passwords: passwords,
		Logger:    logger,
	})
	require.NoError(t, err)
	return env
}

// do sends a JSON request through the full middleware chain.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

// login registers a fresh user and returns its id and token.
func (e *testEnv) login(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	id, err := e.db.CreateUser(context.Background(), "Test User", uuid.NewString()+"@example.com", "")
	require.NoError(t, err)
	token, err := e.jwt.GenerateToken(id)
	require.NoError(t, err)
	return id, token
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
