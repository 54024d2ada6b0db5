package studygen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func testPoller(backend Backend) *Poller {
	return NewPoller(backend, time.Millisecond, 10)
}

func waitForInFlight(t *testing.T, o *Orchestrator, kind ArtifactKind) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if o.State(kind).InFlight {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("generation never became in-flight")
}

func TestGetOrGenerateCacheHit(t *testing.T) {
	backend := newFakeBackend()
	backend.lookupFunc = func(kind ArtifactKind, sourceIds []string, params Parameters) (*CacheResult, error) {
		return &CacheResult{Cached: true, Result: json.RawMessage(`{"text":"a summary"}`)}, nil
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	artifact, err := o.GetOrGenerate(context.Background(), KindSummary, nil)
	if err != nil {
		t.Fatalf("GetOrGenerate() error = %v", err)
	}

	summary, err := artifact.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Text != "a summary" {
		t.Errorf("Text = %q", summary.Text)
	}
	if got := backend.count("generate"); got != 0 {
		t.Errorf("generate calls = %d, want 0 on cache hit", got)
	}

	state := o.State(KindSummary)
	if state.InFlight || state.Current == nil || state.LastError != nil {
		t.Errorf("unexpected state after cache hit: %+v", state)
	}
}

func TestGetOrGenerateColdGeneration(t *testing.T) {
	backend := newFakeBackend()
	cards := `[{"front":"1"},{"front":"2"},{"front":"3"},{"front":"4"},{"front":"5"},` +
		`{"front":"6"},{"front":"7"},{"front":"8"},{"front":"9"},{"front":"10"}]`
	backend.statusFunc = pendingN(2, cards)

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	params := FlashcardParams{Difficulty: DifficultyMedium, Count: 10}.Parameters()

	artifact, err := o.GetOrGenerate(context.Background(), KindFlashcards, params)
	if err != nil {
		t.Fatalf("GetOrGenerate() error = %v", err)
	}

	deck, err := artifact.Flashcards()
	if err != nil {
		t.Fatalf("Flashcards() error = %v", err)
	}
	if len(deck) != 10 {
		t.Errorf("deck size = %d, want 10", len(deck))
	}
	if got := backend.count("generate"); got != 1 {
		t.Errorf("generate calls = %d, want 1", got)
	}
	if o.State(KindFlashcards).InFlight {
		t.Error("InFlight still true after completion")
	}
}

func TestGetOrGenerateReturnsCurrentWithoutBackend(t *testing.T) {
	backend := newFakeBackend()
	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))

	first, err := o.GetOrGenerate(context.Background(), KindSummary, nil)
	if err != nil {
		t.Fatalf("first GetOrGenerate() error = %v", err)
	}
	callsAfterFirst := len(backend.callLog())

	second, err := o.GetOrGenerate(context.Background(), KindSummary, nil)
	if err != nil {
		t.Fatalf("second GetOrGenerate() error = %v", err)
	}
	if second != first {
		t.Error("second call did not return the held artifact")
	}
	if len(backend.callLog()) != callsAfterFirst {
		t.Error("second call contacted the backend despite a held artifact")
	}
}

func TestEmptySelectionRejectedBeforeBackend(t *testing.T) {
	backend := newFakeBackend()
	o := NewOrchestrator(backend, nil, testPoller(backend))

	_, err := o.GetOrGenerate(context.Background(), KindSummary, nil)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("GetOrGenerate() error = %v, want *ValidationError", err)
	}
	if len(backend.callLog()) != 0 {
		t.Errorf("backend was contacted: %v", backend.callLog())
	}
}

func TestSecondRequestWhileInFlightRejected(t *testing.T) {
	backend := newFakeBackend()
	release := make(chan struct{})
	backend.statusFunc = func(jobId string) (*JobStatus, error) {
		<-release
		return &JobStatus{State: JobCompleted, Result: json.RawMessage(`{}`)}, nil
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.GetOrGenerate(context.Background(), KindQuiz, nil)
	}()
	waitForInFlight(t, o, KindQuiz)

	callsBefore := len(backend.callLog())
	if _, err := o.GetOrGenerate(context.Background(), KindQuiz, nil); !errors.Is(err, ErrGenerationInFlight) {
		t.Errorf("second GetOrGenerate() error = %v, want ErrGenerationInFlight", err)
	}
	if _, err := o.Regenerate(context.Background(), KindQuiz, nil); !errors.Is(err, ErrGenerationInFlight) {
		t.Errorf("Regenerate() error = %v, want ErrGenerationInFlight", err)
	}
	if len(backend.callLog()) != callsBefore {
		t.Error("rejected requests still contacted the backend")
	}

	close(release)
	<-done
}

func TestConcurrentKindsAreIndependent(t *testing.T) {
	backend := newFakeBackend()
	release := make(chan struct{})
	backend.statusFunc = func(jobId string) (*JobStatus, error) {
		if jobId == "job-flashcards" {
			<-release
		}
		return &JobStatus{State: JobCompleted, Result: json.RawMessage(`{}`)}, nil
	}
	backend.generateFunc = func(kind ArtifactKind, sourceIds []string, params Parameters) (string, error) {
		return "job-" + string(kind), nil
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.GetOrGenerate(context.Background(), KindFlashcards, nil)
	}()
	waitForInFlight(t, o, KindFlashcards)

	// A different kind may run while flashcards are still in flight.
	if _, err := o.GetOrGenerate(context.Background(), KindSummary, nil); err != nil {
		t.Errorf("summary while flashcards in flight: %v", err)
	}

	close(release)
	<-done
}

func TestRegenerateInvalidatesBeforeSubmitting(t *testing.T) {
	backend := newFakeBackend()
	var invalidatedParams Parameters = Parameters{"marker": true} // sentinel, must become nil
	backend.invalidateFunc = func(kind ArtifactKind, sourceIds []string, params Parameters) (int, error) {
		invalidatedParams = params
		return 1, nil
	}
	var submittedParams Parameters
	backend.generateFunc = func(kind ArtifactKind, sourceIds []string, params Parameters) (string, error) {
		submittedParams = params
		return "job-2", nil
	}
	backend.statusFunc = pendingN(0, `[{"front":"h1"},{"front":"h2"},{"front":"h3"},{"front":"h4"},{"front":"h5"}]`)

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	params := FlashcardParams{Difficulty: DifficultyHard, Count: 5}.Parameters()
	artifact, err := o.Regenerate(context.Background(), KindFlashcards, params)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	log := backend.callLog()
	invalidateAt, generateAt := -1, -1
	for i, call := range log {
		switch call {
		case "invalidate":
			invalidateAt = i
		case "generate":
			generateAt = i
		}
	}
	if invalidateAt == -1 || generateAt == -1 || invalidateAt > generateAt {
		t.Errorf("call order = %v, want invalidate before generate", log)
	}
	if invalidatedParams != nil {
		t.Error("regenerate must invalidate all cached variants (nil params)")
	}
	if submittedParams["difficulty"] != "hard" {
		t.Errorf("submitted params = %v, want the new parameters", submittedParams)
	}

	deck, _ := artifact.Flashcards()
	if len(deck) != 5 {
		t.Errorf("deck size = %d, want 5", len(deck))
	}
}

func TestRegenerateProceedsWhenInvalidationFails(t *testing.T) {
	backend := newFakeBackend()
	backend.invalidateFunc = func(kind ArtifactKind, sourceIds []string, params Parameters) (int, error) {
		return 0, fmt.Errorf("cache backend down")
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	if _, err := o.Regenerate(context.Background(), KindSummary, nil); err != nil {
		t.Fatalf("Regenerate() error = %v, want success despite failed invalidation", err)
	}
	if got := backend.count("generate"); got != 1 {
		t.Errorf("generate calls = %d, want 1", got)
	}
}

func TestRegenerateReplacesCurrent(t *testing.T) {
	backend := newFakeBackend()
	backend.lookupFunc = func(kind ArtifactKind, sourceIds []string, params Parameters) (*CacheResult, error) {
		return &CacheResult{Cached: true, Result: json.RawMessage(`[{"front":"old"}]`)}, nil
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	if _, err := o.GetOrGenerate(context.Background(), KindFlashcards, nil); err != nil {
		t.Fatalf("GetOrGenerate() error = %v", err)
	}

	backend.statusFunc = pendingN(0, `[{"front":"new-1"},{"front":"new-2"}]`)
	artifact, err := o.Regenerate(context.Background(), KindFlashcards, FlashcardParams{Difficulty: DifficultyHard, Count: 2}.Parameters())
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	deck, _ := artifact.Flashcards()
	if len(deck) != 2 || deck[0].Front != "new-1" {
		t.Errorf("deck = %+v, want the regenerated cards", deck)
	}
	state := o.State(KindFlashcards)
	if state.Current != artifact {
		t.Error("Current was not replaced by the regenerated artifact")
	}
}

func TestCacheLookupErrorFailsOpen(t *testing.T) {
	backend := newFakeBackend()
	backend.lookupFunc = func(kind ArtifactKind, sourceIds []string, params Parameters) (*CacheResult, error) {
		return nil, fmt.Errorf("cache backend unreachable")
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	if _, err := o.GetOrGenerate(context.Background(), KindSummary, nil); err != nil {
		t.Fatalf("GetOrGenerate() error = %v, want generation to proceed on lookup failure", err)
	}
	if got := backend.count("generate"); got != 1 {
		t.Errorf("generate calls = %d, want 1", got)
	}
}

func TestGenerationFailureRecordedInState(t *testing.T) {
	backend := newFakeBackend()
	backend.statusFunc = func(jobId string) (*JobStatus, error) {
		return &JobStatus{State: JobFailed, Error: "quota exceeded"}, nil
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	_, err := o.GetOrGenerate(context.Background(), KindQuiz, nil)

	var failure *GenerationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("GetOrGenerate() error = %v, want *GenerationFailure", err)
	}

	state := o.State(KindQuiz)
	if state.InFlight {
		t.Error("InFlight still true after failure")
	}
	if state.LastError == nil {
		t.Error("LastError not recorded")
	}
	if state.Current != nil {
		t.Error("Current set despite failure")
	}
}

func TestSubmissionErrorDistinctFromPollingFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.generateFunc = func(kind ArtifactKind, sourceIds []string, params Parameters) (string, error) {
		return "", fmt.Errorf("malformed parameters")
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	_, err := o.GetOrGenerate(context.Background(), KindNotes, NotesParams{Style: "outline"}.Parameters())

	var submission *SubmissionError
	if !errors.As(err, &submission) {
		t.Fatalf("GetOrGenerate() error = %v, want *SubmissionError", err)
	}
	if got := backend.count("status"); got != 0 {
		t.Errorf("status polls = %d, want 0 after rejected submission", got)
	}
}

func TestCancelSilencesDelivery(t *testing.T) {
	backend := newFakeBackend()
	release := make(chan struct{})
	backend.statusFunc = func(jobId string) (*JobStatus, error) {
		<-release
		return &JobStatus{State: JobCompleted, Result: json.RawMessage(`{"text":"done"}`)}, nil
	}

	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))
	result := make(chan error, 1)
	go func() {
		_, err := o.GetOrGenerate(context.Background(), KindSummary, nil)
		result <- err
	}()
	waitForInFlight(t, o, KindSummary)

	o.Cancel(KindSummary)
	close(release) // the in-flight call completes and must be ignored

	if err := <-result; !errors.Is(err, ErrCancelled) {
		t.Errorf("GetOrGenerate() error = %v, want ErrCancelled", err)
	}

	state := o.State(KindSummary)
	if state.Current != nil || state.LastError != nil || state.InFlight {
		t.Errorf("state updated after cancel: %+v", state)
	}
}

func TestSetSourcesResetsStateAndCancels(t *testing.T) {
	backend := newFakeBackend()
	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))

	if _, err := o.GetOrGenerate(context.Background(), KindSummary, nil); err != nil {
		t.Fatalf("GetOrGenerate() error = %v", err)
	}
	if o.State(KindSummary).Current == nil {
		t.Fatal("no artifact held before selection change")
	}

	// Selection change while a quiz poll is outstanding.
	release := make(chan struct{})
	backend.statusFunc = func(jobId string) (*JobStatus, error) {
		<-release
		return &JobStatus{State: JobCompleted, Result: json.RawMessage(`{}`)}, nil
	}
	result := make(chan error, 1)
	go func() {
		_, err := o.GetOrGenerate(context.Background(), KindQuiz, nil)
		result <- err
	}()
	waitForInFlight(t, o, KindQuiz)

	o.SetSources([]string{"doc-2"})
	close(release)

	if err := <-result; !errors.Is(err, ErrCancelled) {
		t.Errorf("outstanding poll error = %v, want ErrCancelled", err)
	}
	if state := o.State(KindSummary); state.Current != nil {
		t.Error("summary from the old selection leaked into the new one")
	}
	if state := o.State(KindQuiz); state.Current != nil || state.InFlight {
		t.Errorf("quiz state not reset: %+v", state)
	}
}

func TestUnknownKindRejected(t *testing.T) {
	backend := newFakeBackend()
	o := NewOrchestrator(backend, []string{"doc-1"}, testPoller(backend))

	var validation *ValidationError
	if _, err := o.GetOrGenerate(context.Background(), ArtifactKind("mindmap"), nil); !errors.As(err, &validation) {
		t.Errorf("GetOrGenerate() error = %v, want *ValidationError", err)
	}
}
