package resume

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/prompts"
)

// CoverLetterRequest describes the application a letter is written for.
// ResumeData is optional.
type CoverLetterRequest struct {
	ResumeData        json.RawMessage
	JobDescription    string
	CompanyName       string
	JobTitle          string
	AdditionalPrompts string
}

// CoverLetterWriter drafts cover letters.
type CoverLetterWriter struct {
	llm Completer
}

// NewCoverLetterWriter creates a CoverLetterWriter.
func NewCoverLetterWriter(c Completer) *CoverLetterWriter {
	return &CoverLetterWriter{llm: c}
}

// Generate returns the letter body, starting at the salutation.
func (w *CoverLetterWriter) Generate(ctx context.Context, req CoverLetterRequest) (string, error) {
	if strings.TrimSpace(req.JobDescription) == "" && strings.TrimSpace(req.JobTitle) == "" {
		return "", &ValidationError{Message: "job_description or job_title is required"}
	}

	resumeText := compactJSON(req.ResumeData)
	if resumeText == "" || resumeText == "null" {
		resumeText = "Not provided - write a general but professional cover letter"
	}
	instructions := strings.TrimSpace(req.AdditionalPrompts)
	if instructions == "" {
		instructions = "None provided"
	}

	reply, err := w.llm.Complete(ctx, llm.TierAdvanced, []llm.Message{
		llm.System(prompts.MustGet(promptFile, "cover-letter-system")),
		llm.User(prompts.Format(prompts.MustGet(promptFile, "cover-letter"), map[string]string{
			"ResumeData":     resumeText,
			"JobDescription": req.JobDescription,
			"Company":        req.CompanyName,
			"JobTitle":       req.JobTitle,
			"Instructions":   instructions,
		})),
	})
	if err != nil {
		return "", upstream(err)
	}

	letter := stripPreamble(reply)
	if letter == "" {
		return "", &UpstreamError{Err: "Empty cover letter", Raw: reply}
	}
	return letter, nil
}

// stripPreamble drops a leading "Here is your cover letter:" style line.
func stripPreamble(text string) string {
	text = strings.TrimSpace(text)
	first, rest, found := strings.Cut(text, "\n")
	lower := strings.ToLower(first)
	if found && strings.HasSuffix(strings.TrimSpace(first), ":") &&
		(strings.HasPrefix(lower, "here is") || strings.HasPrefix(lower, "here's")) {
		return strings.TrimSpace(rest)
	}
	return text
}
