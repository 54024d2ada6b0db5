package studygen

import (
	"context"
	"encoding/json"
	"sync"
)

// fakeBackend scripts backend behavior for unit tests and records every call
// in order.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	generateFunc   func(kind ArtifactKind, sourceIds []string, params Parameters) (string, error)
	statusFunc     func(jobId string) (*JobStatus, error)
	cleanupFunc    func(jobId string) error
	lookupFunc     func(kind ArtifactKind, sourceIds []string, params Parameters) (*CacheResult, error)
	invalidateFunc func(kind ArtifactKind, sourceIds []string, params Parameters) (int, error)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

func (f *fakeBackend) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Generate(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (string, error) {
	f.record("generate")
	if f.generateFunc != nil {
		return f.generateFunc(kind, sourceIds, params)
	}
	return "job-1", nil
}

func (f *fakeBackend) JobStatus(ctx context.Context, jobId string) (*JobStatus, error) {
	f.record("status")
	if f.statusFunc != nil {
		return f.statusFunc(jobId)
	}
	return &JobStatus{State: JobCompleted, Result: json.RawMessage(`{}`)}, nil
}

func (f *fakeBackend) CleanupJob(ctx context.Context, jobId string) error {
	f.record("cleanup")
	if f.cleanupFunc != nil {
		return f.cleanupFunc(jobId)
	}
	return nil
}

func (f *fakeBackend) CachedResult(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (*CacheResult, error) {
	f.record("lookup")
	if f.lookupFunc != nil {
		return f.lookupFunc(kind, sourceIds, params)
	}
	return &CacheResult{Cached: false}, nil
}

func (f *fakeBackend) InvalidateCache(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (int, error) {
	f.record("invalidate")
	if f.invalidateFunc != nil {
		return f.invalidateFunc(kind, sourceIds, params)
	}
	return 0, nil
}

// pendingN returns a statusFunc that reports pending n times, then completed
// with the given payload.
func pendingN(n int, payload string) func(jobId string) (*JobStatus, error) {
	var mu sync.Mutex
	polls := 0
	return func(jobId string) (*JobStatus, error) {
		mu.Lock()
		defer mu.Unlock()
		polls++
		if polls <= n {
			return &JobStatus{State: JobPending}, nil
		}
		return &JobStatus{State: JobCompleted, Result: json.RawMessage(payload)}, nil
	}
}
