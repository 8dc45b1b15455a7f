package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/llm"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, llm.DefaultModel, cfg.LLM.Model)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 300*time.Millisecond, cfg.LLM.RetryDelay)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, 24, cfg.Auth.JWTExpirationHours)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_MODEL", "openai/gpt-4o-mini")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("SESSION_STORE", "sqlite")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "gsk-test", cfg.Credentials().GroqAPIKey)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, StoreSQLite, cfg.Session.Store)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.yaml")
	content := `
server:
  port: 7000
llm:
  model: groq/llama3-70b-8192
  lite-model: groq/llama3-8b-8192
  advanced-model: gemini/gemini-2.5-pro
session:
  store: sqlite
  sqlite-path: /tmp/sessions.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/sessions.db", cfg.Session.SQLitePath)

	models := cfg.Models()
	assert.Equal(t, "groq/llama3-70b-8192", models.GetModel(llm.TierStandard))
	assert.Equal(t, "groq/llama3-8b-8192", models.GetModel(llm.TierLite))
	assert.Equal(t, "gemini/gemini-2.5-pro", models.GetModel(llm.TierAdvanced))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			LLM:     LLMConfig{Model: llm.DefaultModel, MaxRetries: 1},
			Session: SessionConfig{Store: StoreMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "unknown store", mutate: func(c *Config) { c.Session.Store = "redis" }, wantErr: "unknown session store"},
		{name: "postgres without url", mutate: func(c *Config) { c.Session.Store = StorePostgres }, wantErr: "database.url"},
		{name: "bad model id", mutate: func(c *Config) { c.LLM.Model = "llama3" }, wantErr: "provider/model-name"},
		{name: "no retries", mutate: func(c *Config) { c.LLM.MaxRetries = 0 }, wantErr: "max-retries"},
		{name: "storage without bucket", mutate: func(c *Config) { c.Storage.Endpoint = "localhost:9000" }, wantErr: "storage.bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMiddlewares(t *testing.T) {
	cfg := Config{LLM: LLMConfig{MaxRetries: 2, Timeout: time.Second}}
	assert.Len(t, cfg.Middlewares(), 2)
}
