package storage

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/config"
)

func TestResumeKey(t *testing.T) {
	user := uuid.New()
	k1 := ResumeKey(user, "My CV.PDF")
	k2 := ResumeKey(user, "cv")

	assert.True(t, strings.HasPrefix(k1, "resumes/"+user.String()+"/"))
	assert.True(t, strings.HasSuffix(k1, ".pdf"))
	assert.True(t, strings.HasSuffix(k2, ".pdf"))
	assert.NotEqual(t, k1, ResumeKey(user, "My CV.PDF"))
}

func TestOwnedBy(t *testing.T) {
	user := uuid.New()
	assert.True(t, OwnedBy(ResumeKey(user, "cv.pdf"), user))
	assert.False(t, OwnedBy(ResumeKey(uuid.New(), "cv.pdf"), user))
	assert.False(t, OwnedBy("resumes/"+user.String()+"/nested/cv.pdf", user))
	assert.False(t, OwnedBy("", user))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	content := []byte("%PDF-1.4")
	require.NoError(t, s.Put(ctx, "/resumes/a.pdf", content, "application/pdf"))
	content[0] = 'X'

	got, err := s.Get(ctx, "resumes/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got))

	_, err = s.Get(ctx, "resumes/missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Put(ctx, "  ", nil, ""))
}

func TestNewS3Store_RequiresFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{"no endpoint", config.StorageConfig{}, "endpoint"},
		{"no keys", config.StorageConfig{Endpoint: "localhost:9000", Bucket: "b"}, "access key"},
		{"no bucket", config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Store(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	s, err := NewS3Store(config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
}

func TestS3Store_RoundTrip(t *testing.T) {
	endpoint := os.Getenv("STORAGE_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping integration test: STORAGE_ENDPOINT not set")
	}
	s, err := NewS3Store(config.StorageConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		Bucket:    "interview-coach-test",
	})
	require.NoError(t, err)

	ctx := context.Background()
	key := ResumeKey(uuid.New(), "cv.pdf")
	require.NoError(t, s.Put(ctx, key, []byte("%PDF"), "application/pdf"))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(got))
}
