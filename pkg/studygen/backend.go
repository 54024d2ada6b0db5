package studygen

import (
	"context"
	"encoding/json"
)

// JobState is the lifecycle state a generation job reports. pending and
// running are both non-terminal; the poller keeps waiting on either.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// JobStatus is the backend's answer to a status poll.
type JobStatus struct {
	State  JobState        `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// CacheResult is the backend's answer to a cache lookup. Result is only set
// when Cached is true, and always comes from a completed job.
type CacheResult struct {
	Cached bool            `json:"cached"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Backend is the generation service the pipeline drives. Implementations
// wrap a wire protocol (see HTTPBackend); tests substitute fakes.
type Backend interface {
	// Generate requests computation of an artifact and returns an opaque job
	// id. It never waits for the generation to finish.
	Generate(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (string, error)

	// JobStatus reads the current state of a job.
	JobStatus(ctx context.Context, jobId string) (*JobStatus, error)

	// CleanupJob tells the backend it may discard a terminal job record.
	CleanupJob(ctx context.Context, jobId string) error

	// CachedResult returns a previously completed artifact for the
	// fingerprint derived from kind, sourceIds and params, or a definitive
	// "not cached". Read-only.
	CachedResult(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (*CacheResult, error)

	// InvalidateCache deletes cached artifacts for the kind and source set.
	// With nil params every artifact of the kind is deleted regardless of the
	// parameters that produced it. Deleting nothing is success.
	InvalidateCache(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (int, error)
}
