package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClientFromID(context.Background(), "cohere/command-r", Credentials{})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "unsupported model provider")
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := NewClientFromID(context.Background(), "groq/llama3-8b-8192", Credentials{})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func newTestCompatClient(t *testing.T, handler http.HandlerFunc) *OpenAICompatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewOpenAICompatClient(ProviderGroq, groqEndpoint, "llama3-8b-8192", Credentials{
		GroqAPIKey: "test-key",
		BaseURL:    srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestOpenAICompatClient_Complete(t *testing.T) {
	var got chatRequest
	c := newTestCompatClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Tell me about yourself."}}]}`))
	})

	out, err := c.Complete(context.Background(), []Message{System("be nice"), User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "Tell me about yourself.", out)
	assert.Equal(t, "llama3-8b-8192", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[1].Content)
	assert.Equal(t, "groq/llama3-8b-8192", c.Name())
}

func TestOpenAICompatClient_ErrorClasses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		permanent bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`},
		{name: "server error", status: http.StatusBadGateway, body: `{}`},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"bad"}`, permanent: true},
		{name: "context length", status: http.StatusBadRequest, body: `{"error":{"code":"context_length_exceeded"}}`, permanent: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, permanent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompatClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Complete(context.Background(), []Message{User("hi")})
			require.Error(t, err)
			var perm *PermanentError
			var trans *TransientError
			if tt.permanent {
				assert.ErrorAs(t, err, &perm)
				assert.False(t, IsRetryable(err))
			} else {
				assert.ErrorAs(t, err, &trans)
				assert.True(t, IsRetryable(err))
			}
		})
	}
}

func TestOpenAICompatClient_EmptyCompletion(t *testing.T) {
	c := newTestCompatClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Complete(context.Background(), []Message{User("hi")})
	var trans *TransientError
	assert.ErrorAs(t, err, &trans)
}

func TestSplitSystem(t *testing.T) {
	system, turns := splitSystem([]Message{System("a"), User("q"), System("b"), Assistant("r")})
	assert.Equal(t, "a\n\nb", system)
	assert.Equal(t, []Message{User("q"), Assistant("r")}, turns)
}
