package llm

import (
	"context"
	"errors"
	"fmt"
)

// ConfigError reports a misconfigured gateway: unknown provider, malformed
// model id, missing credentials. It is never retried.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm config: %s: %v", e.Message, e.Cause)
	}
	return "llm config: " + e.Message
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// TransientError is a failure worth retrying: network errors, rate limits,
// upstream 5xx, timeouts and empty completions.
type TransientError struct {
	Provider Provider
	Cause    error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Provider, e.Cause)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// PermanentError marks a rejection that will not succeed on retry,
// e.g. a 4xx from the provider or an exceeded context window.
type PermanentError struct {
	Provider Provider
	Cause    error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s: permanent failure: %v", e.Provider, e.Cause)
}

func (e *PermanentError) Unwrap() error { return e.Cause }

// IsRetryable reports whether err should be retried by middleware.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var cfg *ConfigError
	var perm *PermanentError
	if errors.As(err, &cfg) || errors.As(err, &perm) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// classifyStatus maps an HTTP status code from a provider to an error class.
func classifyStatus(p Provider, status int, err error) error {
	switch {
	case status == 429 || status >= 500:
		return &TransientError{Provider: p, Cause: err}
	case status >= 400:
		return &PermanentError{Provider: p, Cause: err}
	default:
		return &TransientError{Provider: p, Cause: err}
	}
}
