// Package config loads service configuration from an optional config file
// and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/interview-coach/internal/llm"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Session  SessionConfig  `mapstructure:"session"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors-origins"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LLMConfig selects models per tier as "provider/model-name" ids.
type LLMConfig struct {
	Model          string        `mapstructure:"model"`
	LiteModel      string        `mapstructure:"lite-model"`
	AdvancedModel  string        `mapstructure:"advanced-model"`
	GroqAPIKey     string        `mapstructure:"groq-api-key"`
	OpenAIAPIKey   string        `mapstructure:"openai-api-key"`
	GeminiAPIKey   string        `mapstructure:"gemini-api-key"`
	VertexProject  string        `mapstructure:"vertex-project"`
	VertexLocation string        `mapstructure:"vertex-location"`
	Temperature    float32       `mapstructure:"temperature"`
	MaxRetries     int           `mapstructure:"max-retries"`
	RetryDelay     time.Duration `mapstructure:"retry-delay"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Store      string `mapstructure:"store"`
	SQLitePath string `mapstructure:"sqlite-path"`
}

// StorageConfig points at an S3-compatible bucket for uploaded résumés.
// Storage is disabled when Endpoint is empty.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use-ssl"`
}

type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt-secret"`
	JWTExpirationHours int    `mapstructure:"jwt-expiration-hours"`
	BcryptCost         int    `mapstructure:"bcrypt-cost"`
	PasswordPepper     string `mapstructure:"password-pepper"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string][]string{
	"server.port":               {"PORT"},
	"database.url":              {"DATABASE_URL"},
	"llm.model":                 {"LLM_MODEL"},
	"llm.lite-model":            {"LLM_LITE_MODEL"},
	"llm.advanced-model":        {"LLM_ADVANCED_MODEL"},
	"llm.groq-api-key":          {"GROQ_API_KEY"},
	"llm.openai-api-key":        {"OPENAI_API_KEY"},
	"llm.gemini-api-key":        {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"llm.vertex-project":        {"GOOGLE_CLOUD_PROJECT"},
	"llm.vertex-location":       {"GOOGLE_CLOUD_LOCATION"},
	"llm.timeout":               {"LLM_TIMEOUT"},
	"llm.max-retries":           {"LLM_MAX_RETRIES"},
	"session.store":             {"SESSION_STORE"},
	"session.sqlite-path":       {"SQLITE_PATH"},
	"storage.endpoint":          {"STORAGE_ENDPOINT"},
	"storage.access-key":        {"STORAGE_ACCESS_KEY"},
	"storage.secret-key":        {"STORAGE_SECRET_KEY"},
	"storage.bucket":            {"STORAGE_BUCKET"},
	"storage.region":            {"STORAGE_REGION"},
	"storage.use-ssl":           {"STORAGE_USE_SSL"},
	"auth.jwt-secret":           {"JWT_SECRET"},
	"auth.jwt-expiration-hours": {"JWT_EXPIRATION_HOURS"},
	"auth.bcrypt-cost":          {"BCRYPT_COST"},
	"auth.password-pepper":      {"PASSWORD_PEPPER"},
	"log.json":                  {"LOG_JSON"},
	"log.debug":                 {"LOG_DEBUG"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors-origins", []string{"*"})
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max-retries", 3)
	v.SetDefault("llm.retry-delay", 300*time.Millisecond)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.vertex-location", "us-central1")
	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.sqlite-path", "interview-coach.sqlite")
	v.SetDefault("storage.bucket", "resumes")
	v.SetDefault("auth.jwt-expiration-hours", 24)
	v.SetDefault("auth.bcrypt-cost", 12)
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	return v
}

// Load reads the optional config file at path (yaml, json or toml) on top of
// defaults and environment variables.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port)
	}
	switch c.Session.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("config error: session store %q requires 'database.url'", StorePostgres)
		}
	default:
		return fmt.Errorf("config error: unknown session store %q", c.Session.Store)
	}
	for _, id := range []string{c.LLM.Model, c.LLM.LiteModel, c.LLM.AdvancedModel} {
		if id == "" {
			continue
		}
		if _, err := llm.ParseModelID(id); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.LLM.MaxRetries < 1 {
		return fmt.Errorf("config error: 'llm.max-retries' must be at least 1")
	}
	if c.Storage.Endpoint != "" && strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("config error: 'storage.bucket' is required when storage is enabled")
	}
	return nil
}

// Models returns the tier-to-model mapping.
func (c *Config) Models() *llm.Config {
	m := &llm.Config{Models: map[llm.ModelTier]string{llm.TierStandard: c.LLM.Model}}
	if c.LLM.LiteModel != "" {
		m.Models[llm.TierLite] = c.LLM.LiteModel
	}
	if c.LLM.AdvancedModel != "" {
		m.Models[llm.TierAdvanced] = c.LLM.AdvancedModel
	}
	return m
}

// Credentials returns provider secrets for the gateway.
func (c *Config) Credentials() llm.Credentials {
	return llm.Credentials{
		GroqAPIKey:     c.LLM.GroqAPIKey,
		OpenAIAPIKey:   c.LLM.OpenAIAPIKey,
		GeminiAPIKey:   c.LLM.GeminiAPIKey,
		VertexProject:  c.LLM.VertexProject,
		VertexLocation: c.LLM.VertexLocation,
		Temperature:    c.LLM.Temperature,
	}
}

// Middlewares returns the retry and timeout layers configured for the gateway.
func (c *Config) Middlewares() []llm.Middleware {
	return []llm.Middleware{
		llm.WithRetry(c.LLM.MaxRetries, c.LLM.RetryDelay),
		llm.WithTimeout(c.LLM.Timeout),
	}
}
