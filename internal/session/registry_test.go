package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/interview"
)

func TestRegistry_CreateAppliesDefaults(t *testing.T) {
	r := NewRegistry(nil, nil)

	st, err := r.Create(context.Background(), interview.Config{})
	require.NoError(t, err)

	assert.NotEmpty(t, st.ID)
	assert.NotEmpty(t, st.UserID)
	assert.Equal(t, interview.StageStart, st.Stage)
	assert.Equal(t, interview.DefaultJobTitle, st.JobTitle)
	assert.Equal(t, 8, st.MaxQuestions)

	got, err := r.GetByUser(context.Background(), st.UserID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)
}

func TestRegistry_CreateRejectsInvalidConfig(t *testing.T) {
	r := NewRegistry(nil, nil)

	_, err := r.Create(context.Background(), interview.Config{DurationMinutes: -1})
	assert.ErrorIs(t, err, interview.ErrInvalidConfig)
}

func TestRegistry_GetUnknownIsNotFound(t *testing.T) {
	r := NewRegistry(nil, nil)

	_, err := r.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.GetByUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Update(context.Background(), "does-not-exist", func(*interview.State) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_UpdateFailureDoesNotPersist(t *testing.T) {
	r := NewRegistry(nil, nil)
	st, err := r.Create(context.Background(), interview.Config{UserID: "u1"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = r.Update(context.Background(), st.ID, func(s *interview.State) error {
		s.QuestionCount = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := r.Get(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuestionCount)
}

func TestRegistry_UpdatesAreSerializedPerSession(t *testing.T) {
	r := NewRegistry(nil, nil)
	st, err := r.Create(context.Background(), interview.Config{})
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Update(context.Background(), st.ID, func(s *interview.State) error {
				n := s.QuestionCount
				time.Sleep(time.Millisecond)
				s.QuestionCount = n + 1
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.Get(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, got.QuestionCount)
	assert.Equal(t, 0, r.locks.size())
}

func TestRegistry_Remove(t *testing.T) {
	store := NewMemoryStore()
	r := NewRegistry(store, nil)
	st, err := r.Create(context.Background(), interview.Config{UserID: "u1"})
	require.NoError(t, err)

	require.NoError(t, r.Remove(context.Background(), st.ID))
	assert.Equal(t, 0, store.Len())

	_, err = r.GetByUser(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, r.Remove(context.Background(), st.ID))
}
