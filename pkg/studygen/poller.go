package studygen

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Generation latency is bounded and user-facing (30-60s typical), so the
// poller keeps a fast uniform cadence instead of backing off.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultMaxPollAttempts = 60 // ~5 minutes at the default interval
)

// Poller waits for a generation job to reach a terminal state.
type Poller struct {
	backend     Backend
	interval    time.Duration
	maxAttempts int
}

// NewPoller creates a poller. Zero interval or attempts fall back to the
// defaults.
func NewPoller(backend Backend, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPollAttempts
	}
	return &Poller{
		backend:     backend,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Wait polls the job on a fixed interval until it completes, fails, the
// attempt budget runs out, or ctx is cancelled. The result is delivered at
// most once; after a terminal return no further requests are issued.
//
// A transport error while polling is terminal: a flaky status endpoint must
// not silently extend the user's wait. Cancellation is cooperative; an
// in-flight status call is allowed to return and its answer is discarded.
func (p *Poller) Wait(ctx context.Context, jobId string) (json.RawMessage, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		status, err := p.backend.JobStatus(ctx, jobId)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrCancelled
			}
			return nil, &TransportError{Op: "poll job status", Err: err}
		}
		if ctx.Err() != nil {
			// The caller lost interest while this call was in flight; the
			// answer is discarded.
			return nil, ErrCancelled
		}

		switch status.State {
		case JobCompleted:
			return status.Result, nil
		case JobFailed:
			// The failed record has been consumed; discard is best-effort.
			if err := p.backend.CleanupJob(ctx, jobId); err != nil {
				log.Printf("[WARN] Failed to clean up job %s: %v", jobId, err)
			}
			return nil, &GenerationFailure{Reason: status.Error}
		}

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		case <-time.After(p.interval):
		}
	}

	return nil, &PollingTimeout{Attempts: p.maxAttempts, Interval: p.interval}
}
