// Package llm provides centralized model configuration and provider-agnostic
// chat-completion clients. Models are addressed as "provider/model-name" and
// grouped into tiers so callers pick a capability level instead of a model.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short auxiliary calls such as delivery analysis
	TierLite ModelTier = "lite"
	// TierStandard is for conversational turns: questions, evaluation, closing
	TierStandard ModelTier = "standard"
	// TierAdvanced is for structured extraction and scoring of documents
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGroq is the Groq OpenAI-compatible endpoint
	ProviderGroq Provider = "groq"
	// ProviderOpenAI is the OpenAI chat completions endpoint
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini API
	ProviderGemini Provider = "gemini"
	// ProviderVertex is Gemini served through Vertex AI
	ProviderVertex Provider = "vertex"
)

// ModelID is a parsed "provider/model-name" identifier.
type ModelID struct {
	Provider Provider
	Name     string
}

func (m ModelID) String() string {
	return string(m.Provider) + "/" + m.Name
}

// ParseModelID splits a provider-prefixed model identifier. Only the first
// slash separates the provider, so model names may themselves contain slashes.
func ParseModelID(id string) (ModelID, error) {
	id = strings.TrimSpace(id)
	provider, name, ok := strings.Cut(id, "/")
	if !ok || provider == "" || name == "" {
		return ModelID{}, &ConfigError{Message: fmt.Sprintf("invalid model id %q: expected provider/model-name", id)}
	}
	return ModelID{Provider: Provider(strings.ToLower(provider)), Name: name}, nil
}

// Config holds the model configuration for the application
type Config struct {
	Models map[ModelTier]string
}

// DefaultModel is used for every tier unless overridden.
const DefaultModel = "groq/llama3-8b-8192"

// DefaultConfig returns the default configuration: one Groq model for all tiers
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierStandard: DefaultModel,
		},
	}
}

// GetModel returns the model id for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierLite]; ok && model != "" {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Models: make(map[ModelTier]string),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// Credentials carries provider secrets and endpoints.
type Credentials struct {
	GroqAPIKey     string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	VertexProject  string
	VertexLocation string
	// BaseURL overrides the chat completions endpoint of OpenAI-compatible providers.
	BaseURL     string
	Temperature float32
}

func (c Credentials) apiKey(p Provider) string {
	switch p {
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	}
	return ""
}
