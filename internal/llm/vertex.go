package llm

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// VertexClient serves Gemini models through Vertex AI using the unified
// google.golang.org/genai SDK. Credentials come from Application Default
// Credentials; only project and location are configured here.
type VertexClient struct {
	cli         *genai.Client
	model       string
	temperature float32
}

// NewVertexClient creates a Vertex AI backed client.
func NewVertexClient(ctx context.Context, model string, creds Credentials) (*VertexClient, error) {
	project := strings.TrimSpace(creds.VertexProject)
	if project == "" {
		return nil, &ConfigError{Message: "project is required for provider vertex"}
	}
	location := strings.TrimSpace(creds.VertexLocation)
	if location == "" {
		location = "us-central1"
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  project,
		Location: location,
	})
	if err != nil {
		return nil, &ConfigError{Message: "failed to create Vertex AI client", Cause: err}
	}
	return &VertexClient{cli: cli, model: model, temperature: creds.Temperature}, nil
}

func (v *VertexClient) Name() string { return string(ProviderVertex) + "/" + v.model }
func (v *VertexClient) Close() error { return nil }

// Complete sends the full transcript in one GenerateContent call.
func (v *VertexClient) Complete(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return "", &ConfigError{Message: "at least one non-system message is required"}
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		contents = append(contents, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(v.temperature)}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := v.cli.Models.GenerateContent(ctx, v.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", classifyStatus(ProviderVertex, apiErr.Code, err)
		}
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &TransientError{Provider: ProviderVertex, Cause: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &TransientError{Provider: ProviderVertex, Cause: errors.New("empty completion")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &TransientError{Provider: ProviderVertex, Cause: errors.New("empty completion")}
	}
	return sb.String(), nil
}
