package interview

import "errors"

var (
	// ErrInvalidConfig wraps bad interview setup values.
	ErrInvalidConfig = errors.New("invalid interview configuration")
	// ErrEmptyResponse is returned for blank answers.
	ErrEmptyResponse = errors.New("response is empty")
	// ErrInterviewEnded is returned when answering a finished interview.
	ErrInterviewEnded = errors.New("interview has ended")
	// ErrNotAwaitingResponse is returned when no question is pending.
	ErrNotAwaitingResponse = errors.New("interview is not awaiting a response")
	// ErrAlreadyStarted is returned when Start runs twice on one session.
	ErrAlreadyStarted = errors.New("interview already started")
)
