package entity

import (
	"encoding/json"
	"time"

	"ai-studygen-be/pkg/studygen"

	"github.com/google/uuid"
)

// GenerationJob tracks one asynchronous artifact generation from submission
// to terminal state. Mutated only by the worker once submitted.
type GenerationJob struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Kind        studygen.ArtifactKind
	SourceIds   []string
	Parameters  map[string]interface{}
	Fingerprint string
	Status      studygen.JobState
	Result      json.RawMessage
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func (j *GenerationJob) Start() {
	now := time.Now()
	j.Status = studygen.JobRunning
	j.StartedAt = &now
}

func (j *GenerationJob) Complete(result json.RawMessage) {
	now := time.Now()
	j.Status = studygen.JobCompleted
	j.Result = result
	j.CompletedAt = &now
}

func (j *GenerationJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = studygen.JobFailed
	j.Error = errMsg
	j.CompletedAt = &now
}

// Terminal reports whether the job will never transition again.
func (j *GenerationJob) Terminal() bool {
	return j.Status == studygen.JobCompleted || j.Status == studygen.JobFailed
}
