package studygen

import (
	"context"
	"errors"
	"log"
	"sync"
)

// PipelineState is the caller-visible state for one artifact kind, exposed
// read-only for rendering.
type PipelineState struct {
	InFlight  bool
	LastError error
	Current   *Artifact
}

type kindState struct {
	PipelineState
	run    int // incremented on cancel/reset; stale completions are dropped
	cancel context.CancelFunc
}

// Orchestrator drives the check-cache → submit → poll protocol for one
// content selection. Kinds are independent: a flashcard job and a quiz job
// may be in flight simultaneously, but a second request for a kind whose job
// is still outstanding is rejected without contacting the backend.
//
// Construct one per active selection and tear it down on navigation; call
// SetSources when the selection changes so a stale artifact from one source
// set never leaks into the view of another.
type Orchestrator struct {
	backend Backend
	poller  *Poller

	mu        sync.Mutex
	sourceIds []string
	states    map[ArtifactKind]*kindState
}

// NewOrchestrator creates an orchestrator for the given selection. A nil
// poller gets the default cadence (5s interval, 60 attempts).
func NewOrchestrator(backend Backend, sourceIds []string, poller *Poller) *Orchestrator {
	if poller == nil {
		poller = NewPoller(backend, 0, 0)
	}
	return &Orchestrator{
		backend:   backend,
		poller:    poller,
		sourceIds: append([]string(nil), sourceIds...),
		states:    make(map[ArtifactKind]*kindState),
	}
}

// GetOrGenerate returns the artifact for the kind, producing it if needed:
// current value → cache lookup → submit and poll. Blocks until a terminal
// outcome or cancellation.
func (o *Orchestrator) GetOrGenerate(ctx context.Context, kind ArtifactKind, params Parameters) (*Artifact, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Message: "unknown artifact kind: " + string(kind)}
	}

	o.mu.Lock()
	if cur := o.state(kind).Current; cur != nil {
		o.mu.Unlock()
		return cur, nil
	}
	o.mu.Unlock()

	run, runCtx, sources, err := o.begin(ctx, kind)
	if err != nil {
		return nil, err
	}

	artifact, err := o.execute(runCtx, kind, sources, params, false)
	o.finish(kind, run, artifact, err)
	return artifact, err
}

// Regenerate discards the current artifact, invalidates the cache for the
// kind and source set, and submits a fresh job with the new parameters.
// Invalidation is best-effort cache hygiene: the new job is submitted even
// if the delete call fails.
func (o *Orchestrator) Regenerate(ctx context.Context, kind ArtifactKind, params Parameters) (*Artifact, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Message: "unknown artifact kind: " + string(kind)}
	}

	run, runCtx, sources, err := o.begin(ctx, kind)
	if err != nil {
		return nil, err
	}

	artifact, err := o.execute(runCtx, kind, sources, params, true)
	o.finish(kind, run, artifact, err)
	return artifact, err
}

// Cancel stops observing an outstanding job for the kind. Cooperative: an
// in-flight network call may still return and is ignored. The backend job
// keeps running; its result becomes available to a future cache lookup.
func (o *Orchestrator) Cancel(kind ArtifactKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reset(o.state(kind))
}

// SetSources replaces the active selection. All per-kind state is reset and
// any active poll is cancelled.
func (o *Orchestrator) SetSources(sourceIds []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sourceIds = append([]string(nil), sourceIds...)
	for _, st := range o.states {
		o.reset(st)
	}
}

// State returns a snapshot of the pipeline state for the kind.
func (o *Orchestrator) State(kind ArtifactKind) PipelineState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state(kind).PipelineState
}

func (o *Orchestrator) state(kind ArtifactKind) *kindState {
	st, ok := o.states[kind]
	if !ok {
		st = &kindState{}
		o.states[kind] = st
	}
	return st
}

// reset clears one kind's state and bumps its run token so a completion from
// the old run cannot land afterwards. Caller holds the lock.
func (o *Orchestrator) reset(st *kindState) {
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.run++
	st.PipelineState = PipelineState{}
}

// begin validates preconditions and claims the in-flight slot for the kind.
func (o *Orchestrator) begin(ctx context.Context, kind ArtifactKind) (int, context.Context, []string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.sourceIds) == 0 {
		return 0, nil, nil, &ValidationError{Message: "no source content selected"}
	}

	st := o.state(kind)
	if st.InFlight {
		return 0, nil, nil, ErrGenerationInFlight
	}

	runCtx, cancel := context.WithCancel(ctx)
	st.InFlight = true
	st.LastError = nil
	st.Current = nil
	st.run++
	st.cancel = cancel

	return st.run, runCtx, append([]string(nil), o.sourceIds...), nil
}

// finish records the outcome unless the run was cancelled or superseded.
func (o *Orchestrator) finish(kind ArtifactKind, run int, artifact *Artifact, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := o.state(kind)
	if st.run != run {
		// Cancelled or selection changed while we were waiting.
		return
	}

	st.InFlight = false
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}

	if errors.Is(err, ErrCancelled) {
		return
	}
	if err != nil {
		st.LastError = err
		return
	}
	st.Current = artifact
	st.LastError = nil
}

func (o *Orchestrator) execute(ctx context.Context, kind ArtifactKind, sources []string, params Parameters, invalidateFirst bool) (*Artifact, error) {
	if invalidateFirst {
		// Stale entries get overwritten by the new result anyway, so a
		// failed delete must not abort the regeneration.
		if _, err := o.backend.InvalidateCache(ctx, kind, sources, nil); err != nil {
			log.Printf("[WARN] Cache invalidation failed for %s: %v", kind, err)
		}
	} else {
		// Fast path. Lookup fails open: a broken cache check must not block
		// a fresh generation attempt; re-running is safe.
		cached, err := o.backend.CachedResult(ctx, kind, sources, params)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrCancelled
			}
			log.Printf("[WARN] Cache lookup failed for %s, treating as miss: %v", kind, err)
		} else if cached != nil && cached.Cached {
			return &Artifact{Kind: kind, Payload: cached.Result}, nil
		}
	}

	jobId, err := o.backend.Generate(ctx, kind, sources, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, &SubmissionError{Err: err}
	}

	payload, err := o.poller.Wait(ctx, jobId)
	if err != nil {
		return nil, err
	}
	return &Artifact{Kind: kind, Payload: payload}, nil
}
