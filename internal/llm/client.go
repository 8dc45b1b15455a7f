package llm

import (
	"context"
	"fmt"
)

// Role of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn sent to a provider.
type Message struct {
	Role    Role
	Content string
}

// System, User and Assistant build messages of the matching role.
func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Client is an abstraction over LLM providers. Implementations hold no
// conversation state; every call is independent.
type Client interface {
	// Complete sends the messages and returns the model's text reply
	Complete(ctx context.Context, messages []Message) (string, error)
	// Name identifies the provider and model, e.g. "groq/llama3-8b-8192"
	Name() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for the given model id. The provider is fixed
// at construction; an unsupported provider is a configuration error.
func NewClient(ctx context.Context, id ModelID, creds Credentials) (Client, error) {
	switch id.Provider {
	case ProviderGroq:
		return NewOpenAICompatClient(ProviderGroq, groqEndpoint, id.Name, creds)
	case ProviderOpenAI:
		return NewOpenAICompatClient(ProviderOpenAI, openAIEndpoint, id.Name, creds)
	case ProviderGemini:
		return NewGeminiClient(ctx, id.Name, creds)
	case ProviderVertex:
		return NewVertexClient(ctx, id.Name, creds)
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("unsupported model provider %q", id.Provider)}
	}
}

// NewClientFromID parses id and creates the matching client.
func NewClientFromID(ctx context.Context, id string, creds Credentials) (Client, error) {
	parsed, err := ParseModelID(id)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, parsed, creds)
}
