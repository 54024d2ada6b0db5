package studygen

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrGenerationInFlight is returned when a second request for an artifact
	// kind arrives while a job for that kind is still outstanding.
	ErrGenerationInFlight = errors.New("a generation for this artifact kind is already in flight")

	// ErrCancelled is returned when the caller abandons a wait before the job
	// reaches a terminal state. It never lands in PipelineState.LastError.
	ErrCancelled = errors.New("generation cancelled")
)

// ValidationError reports a request rejected before reaching the backend,
// e.g. an empty source selection. Never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SubmissionError reports that the backend refused to start a generation job
// (malformed parameters, quota, ...). Distinct from a later polling failure.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("could not start generation: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// GenerationFailure reports a job that reached the failed terminal state,
// carrying the backend's reason when it provided one.
type GenerationFailure struct {
	Reason string
}

func (e *GenerationFailure) Error() string {
	if e.Reason == "" {
		return "generation failed"
	}
	return "generation failed: " + e.Reason
}

// PollingTimeout reports a job still pending after the poll budget ran out.
// Kept distinct from GenerationFailure so callers can message "still
// processing, try later" instead of "this will never work".
type PollingTimeout struct {
	Attempts int
	Interval time.Duration
}

func (e *PollingTimeout) Error() string {
	return fmt.Sprintf("generation still pending after %d polls", e.Attempts)
}

// TransportError wraps a network failure during a backend call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
