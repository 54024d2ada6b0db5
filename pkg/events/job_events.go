package events

import "time"

const (
	TypeJobSubmitted = "JOB_SUBMITTED"
	TypeJobCompleted = "JOB_COMPLETED"
	TypeJobFailed    = "JOB_FAILED"
)

// NewJobSubmitted is emitted when a generation job is accepted and enqueued.
func NewJobSubmitted(jobId, userId, kind string) Event {
	return BaseEvent{
		Type: TypeJobSubmitted,
		Data: map[string]interface{}{
			"job_id":  jobId,
			"user_id": userId,
			"kind":    kind,
		},
		OccurredAt: time.Now(),
	}
}

// NewJobCompleted is emitted when a worker finishes a job successfully.
func NewJobCompleted(jobId, userId, kind, fingerprint string) Event {
	return BaseEvent{
		Type: TypeJobCompleted,
		Data: map[string]interface{}{
			"job_id":      jobId,
			"user_id":     userId,
			"kind":        kind,
			"fingerprint": fingerprint,
		},
		OccurredAt: time.Now(),
	}
}

// NewJobFailed is emitted when a worker gives up on a job.
func NewJobFailed(jobId, userId, kind, reason string) Event {
	return BaseEvent{
		Type: TypeJobFailed,
		Data: map[string]interface{}{
			"job_id":  jobId,
			"user_id": userId,
			"kind":    kind,
			"reason":  reason,
		},
		OccurredAt: time.Now(),
	}
}
