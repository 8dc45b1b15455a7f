package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/interview"
)

// Registry owns interview sessions and serializes work per session id.
type Registry struct {
	store  Store
	locks  *keyedMutex
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewRegistry creates a registry over store. A nil store means in-memory.
func NewRegistry(store Store, logger *zap.Logger) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:  store,
		locks:  newKeyedMutex(),
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Create validates cfg, fills defaults and stores a new session in the start
// stage. A missing UserID is generated.
func (r *Registry) Create(ctx context.Context, cfg interview.Config) (*interview.State, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UserID == "" {
		cfg.UserID = r.newID()
	}

	st := interview.NewState(r.newID(), cfg, r.now())
	if err := r.store.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	r.logger.Info("interview session created",
		zap.String("interview_id", st.ID),
		zap.String("user_id", st.UserID),
		zap.String("interview_type", string(st.Kind)),
		zap.Int("max_questions", st.MaxQuestions))
	return st, nil
}

// Get returns a snapshot of the session. Unknown ids yield ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*interview.State, error) {
	return r.store.Load(ctx, id)
}

// GetByUser returns the user's current session.
func (r *Registry) GetByUser(ctx context.Context, userID string) (*interview.State, error) {
	return r.store.LoadByUser(ctx, userID)
}

// Update loads the session under its lock, applies fn to a private copy and
// saves the copy only if fn succeeds.
func (r *Registry) Update(ctx context.Context, id string, fn func(*interview.State) error) (*interview.State, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	st, err := r.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = r.now()
	if err := r.store.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return st, nil
}

// Remove deletes the session. Removing an unknown id is not an error.
func (r *Registry) Remove(ctx context.Context, id string) error {
	unlock := r.locks.Lock(id)
	defer unlock()

	if err := r.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	r.logger.Info("interview session removed", zap.String("interview_id", id))
	return nil
}
