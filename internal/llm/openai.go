package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	groqEndpoint   = "https://api.groq.com/openai/v1/chat/completions"
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"

	// maxErrorBody bounds how much of a failed response body ends up in errors.
	maxErrorBody = 2048
)

// OpenAICompatClient calls an OpenAI-compatible chat completions endpoint.
// Groq and OpenAI share this wire format.
type OpenAICompatClient struct {
	http        *http.Client
	provider    Provider
	apiKey      string
	model       string
	baseURL     string
	temperature float32
}

// NewOpenAICompatClient creates a client for provider at endpoint. A non-empty
// creds.BaseURL replaces the endpoint.
func NewOpenAICompatClient(provider Provider, endpoint, model string, creds Credentials) (*OpenAICompatClient, error) {
	apiKey := strings.TrimSpace(creds.apiKey(provider))
	if apiKey == "" {
		return nil, &ConfigError{Message: fmt.Sprintf("API key is required for provider %s", provider)}
	}
	if creds.BaseURL != "" {
		endpoint = creds.BaseURL
	}
	return &OpenAICompatClient{
		http:        &http.Client{Timeout: 90 * time.Second},
		provider:    provider,
		apiKey:      apiKey,
		model:       model,
		baseURL:     endpoint,
		temperature: creds.Temperature,
	}, nil
}

func (c *OpenAICompatClient) Name() string { return string(c.provider) + "/" + c.model }
func (c *OpenAICompatClient) Close() error { return nil }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts the messages and returns the first choice's content.
func (c *OpenAICompatClient) Complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    make([]chatMessage, 0, len(messages)),
		Temperature: c.temperature,
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", &ConfigError{Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return "", ctxErr
		}
		return "", &TransientError{Provider: c.provider, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("unexpected status %s: %s", resp.Status, string(body))
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), "context_length_exceeded") {
			return "", &PermanentError{Provider: c.provider, Cause: err}
		}
		return "", classifyStatus(c.provider, resp.StatusCode, err)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TransientError{Provider: c.provider, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", &TransientError{Provider: c.provider, Cause: errors.New("empty completion")}
	}
	return out.Choices[0].Message.Content, nil
}
