package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type SubmitJobRequest struct {
	Kind       string                 `json:"kind" validate:"required"`
	SourceIds  []string               `json:"source_ids" validate:"required,min=1"`
	Parameters map[string]interface{} `json:"parameters"`
}

type SubmitJobResponse struct {
	JobId uuid.UUID `json:"job_id"`
}

type JobStatusResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type CacheLookupResponse struct {
	Cached bool            `json:"cached"`
	Result json.RawMessage `json:"result,omitempty"`
}

type InvalidateCacheResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// EnqueueGenerationMessage is the payload placed on the internal work queue
// when a job is submitted.
type EnqueueGenerationMessage struct {
	JobId uuid.UUID `json:"job_id"`
}
