package resume

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
)

const promptFile = "resume.json"

// Completer runs one chat completion on a model tier. *llm.Gateway satisfies it.
type Completer interface {
	Complete(ctx context.Context, tier llm.ModelTier, messages []llm.Message) (string, error)
}

// Parser extracts structured fields from résumé text.
type Parser struct {
	llm    Completer
	logger *zap.Logger
}

// NewParser creates a Parser.
func NewParser(c Completer, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{llm: c, logger: logger}
}

// Parse returns the résumé as a JSON object.
func (p *Parser) Parse(ctx context.Context, text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: "text", Message: "résumé text is empty"}
	}

	reply, err := p.llm.Complete(ctx, llm.TierAdvanced, []llm.Message{
		llm.System(prompts.MustGet(promptFile, "parse-system")),
		llm.User(llm.BuildExtractionPrompt(llm.ResumeSchema(), text)),
	})
	if err != nil {
		return nil, upstream(err)
	}

	doc, raw, err := decodeObject(reply)
	if err != nil {
		p.logger.Warn("unusable parse reply", zap.String("reply", logging.TruncateForLog(reply, 500)))
		return nil, err
	}
	if err := schemas.Validate(schemas.Resume, raw); err != nil {
		return nil, &UpstreamError{Err: "Parsed resume failed validation", Message: err.Error(), Raw: raw, Cause: err}
	}
	return doc, nil
}

// decodeObject pulls the JSON object out of a model reply.
func decodeObject(reply string) (map[string]any, string, error) {
	raw, err := llm.ExtractJSONObject(reply)
	if errors.Is(err, llm.ErrNoJSONObject) {
		return nil, "", &UpstreamError{Err: "No valid JSON object found", Raw: reply, Cause: err}
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, raw, &UpstreamError{Err: "Failed to parse JSON after cleaning", Message: err.Error(), Raw: raw, Cause: err}
	}
	return doc, raw, nil
}
