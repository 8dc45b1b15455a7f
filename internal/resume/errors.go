package resume

import (
	"fmt"
)

// UpstreamError reports a model reply that could not be used. Err is a short
// summary; Message carries detail and Raw the offending model output.
type UpstreamError struct {
	Err     string
	Message string
	Raw     string
	Cause   error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Message)
	}
	return e.Err
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Body renders the error the way API clients expect it.
func (e *UpstreamError) Body() map[string]string {
	body := map[string]string{"error": e.Err}
	if e.Message != "" {
		body["message"] = e.Message
	}
	if e.Raw != "" {
		body["raw"] = e.Raw
	}
	return body
}

// ValidationError represents bad caller input
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// PDFError is returned when a file cannot be read as a PDF.
type PDFError struct {
	Message string
	Cause   error
}

func (e *PDFError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdf error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pdf error: %s", e.Message)
}

func (e *PDFError) Unwrap() error {
	return e.Cause
}

func upstream(err error) error {
	return &UpstreamError{Err: "Request failed", Message: err.Error(), Cause: err}
}
