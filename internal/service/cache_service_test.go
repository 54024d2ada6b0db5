// FILE: internal/service/cache_service_test.go
package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/repository/cache"
	"ai-studygen-be/internal/repository/contract"
	"ai-studygen-be/internal/repository/memory"
	"ai-studygen-be/internal/repository/specification"
	"ai-studygen-be/internal/repository/unitofwork"
	"ai-studygen-be/pkg/studygen"

	"github.com/google/uuid"
)

// --- In-memory repository fakes ---

type fakeArtifactRepo struct {
	artifacts map[uuid.UUID]*entity.Artifact
	findCalls int
}

func newFakeArtifactRepo() *fakeArtifactRepo {
	return &fakeArtifactRepo{artifacts: make(map[uuid.UUID]*entity.Artifact)}
}

func (r *fakeArtifactRepo) Create(ctx context.Context, artifact *entity.Artifact) error {
	copied := *artifact
	r.artifacts[artifact.Id] = &copied
	return nil
}

func (r *fakeArtifactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.artifacts, id)
	return nil
}

func (r *fakeArtifactRepo) DeleteByFingerprintPrefix(ctx context.Context, userId uuid.UUID, prefix string) (int64, error) {
	var deleted int64
	for id, a := range r.artifacts {
		if a.UserId == userId && strings.HasPrefix(a.Fingerprint, prefix) {
			delete(r.artifacts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeArtifactRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Artifact, error) {
	r.findCalls++
	// The cache service always queries by fingerprint and owner; the fake
	// matches on those fields directly.
	fingerprint, userId := extractFingerprintAndUser(specs)
	for _, a := range r.artifacts {
		if a.Fingerprint == fingerprint && a.UserId == userId {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeArtifactRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Artifact, error) {
	return nil, nil
}

func (r *fakeArtifactRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.artifacts)), nil
}

func extractFingerprintAndUser(specs []specification.Specification) (string, uuid.UUID) {
	var fingerprint string
	var userId uuid.UUID
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByFingerprint:
			fingerprint = spec.Fingerprint
		case specification.OwnedByUser:
			userId = spec.UserID
		}
	}
	return fingerprint, userId
}

type fakeUnitOfWork struct {
	artifacts *fakeArtifactRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) SourceContentRepository() contract.SourceContentRepository { return nil }
func (u *fakeUnitOfWork) GenerationJobRepository() contract.GenerationJobRepository { return nil }
func (u *fakeUnitOfWork) ArtifactRepository() contract.ArtifactRepository           { return u.artifacts }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newCacheServiceUnderTest() (ICacheService, *fakeArtifactRepo) {
	repo := newFakeArtifactRepo()
	factory := &fakeUowFactory{uow: &fakeUnitOfWork{artifacts: repo}}
	hot := memory.NewArtifactCache(time.Minute)
	shared := cache.NewRedisArtifactCache(nil, time.Minute) // nil client: pass-through
	return NewCacheService(factory, hot, shared), repo
}

func seedArtifact(repo *fakeArtifactRepo, userId uuid.UUID, kind studygen.ArtifactKind, sourceIds []string, params map[string]interface{}, payload string) {
	repo.artifacts[uuid.New()] = &entity.Artifact{
		Id:          uuid.New(),
		Fingerprint: studygen.Fingerprint(kind, sourceIds, params),
		Kind:        kind,
		SourceIds:   sourceIds,
		Parameters:  params,
		Payload:     json.RawMessage(payload),
		UserId:      userId,
		CreatedAt:   time.Now(),
	}
}

// --- Tests ---

func TestCacheLookup_MissThenDatabaseHitBackfills(t *testing.T) {
	svc, repo := newCacheServiceUnderTest()
	userId := uuid.New()
	sourceIds := []string{"a", "b"}
	seedArtifact(repo, userId, studygen.KindSummary, sourceIds, nil, `{"text":"s"}`)

	res, err := svc.Lookup(context.Background(), userId, studygen.KindSummary, sourceIds, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Cached {
		t.Fatal("expected a cache hit from the durable layer")
	}
	if repo.findCalls != 1 {
		t.Fatalf("expected 1 database read, got %d", repo.findCalls)
	}

	// Second lookup must come from the hot layer
	res, err = svc.Lookup(context.Background(), userId, studygen.KindSummary, sourceIds, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Cached {
		t.Fatal("expected a hit on the second lookup")
	}
	if repo.findCalls != 1 {
		t.Fatalf("expected backfill to prevent a second database read, got %d", repo.findCalls)
	}
}

func TestCacheLookup_MissIsDefinitive(t *testing.T) {
	svc, _ := newCacheServiceUnderTest()

	res, err := svc.Lookup(context.Background(), uuid.New(), studygen.KindQuiz, []string{"x"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cached {
		t.Fatal("expected a definitive miss")
	}
	if res.Result != nil {
		t.Fatal("a miss must not carry a result")
	}
}

func TestCacheLookup_UserScoped(t *testing.T) {
	svc, repo := newCacheServiceUnderTest()
	owner := uuid.New()
	other := uuid.New()
	sourceIds := []string{"a"}
	seedArtifact(repo, owner, studygen.KindSummary, sourceIds, nil, `{"text":"s"}`)

	res, err := svc.Lookup(context.Background(), other, studygen.KindSummary, sourceIds, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cached {
		t.Fatal("another user's artifact must not be visible")
	}
}

func TestCacheInvalidate_NilParamsRemovesAllVariants(t *testing.T) {
	svc, repo := newCacheServiceUnderTest()
	userId := uuid.New()
	sourceIds := []string{"a", "b"}

	seedArtifact(repo, userId, studygen.KindNotes, sourceIds, map[string]interface{}{"style": "outline"}, `{"style":"outline","markdown":"m"}`)
	seedArtifact(repo, userId, studygen.KindNotes, sourceIds, map[string]interface{}{"style": "cornell"}, `{"style":"cornell","markdown":"m"}`)

	deleted, err := svc.Invalidate(context.Background(), userId, studygen.KindNotes, sourceIds, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected both style variants removed, got %d", deleted)
	}
}

func TestCacheInvalidate_WithParamsRemovesExactVariant(t *testing.T) {
	svc, repo := newCacheServiceUnderTest()
	userId := uuid.New()
	sourceIds := []string{"a", "b"}

	seedArtifact(repo, userId, studygen.KindNotes, sourceIds, map[string]interface{}{"style": "outline"}, `{"style":"outline","markdown":"m"}`)
	seedArtifact(repo, userId, studygen.KindNotes, sourceIds, map[string]interface{}{"style": "cornell"}, `{"style":"cornell","markdown":"m"}`)

	deleted, err := svc.Invalidate(context.Background(), userId, studygen.KindNotes, sourceIds, map[string]interface{}{"style": "outline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected only the outline variant removed, got %d", deleted)
	}
}

func TestCacheInvalidate_NothingToDeleteIsSuccess(t *testing.T) {
	svc, _ := newCacheServiceUnderTest()

	deleted, err := svc.Invalidate(context.Background(), uuid.New(), studygen.KindFlashcards, []string{"a"}, nil)
	if err != nil {
		t.Fatalf("invalidating an empty cache must succeed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected 0 deletions, got %d", deleted)
	}
}

func TestCacheStore_ReplacesPreviousArtifact(t *testing.T) {
	svc, repo := newCacheServiceUnderTest()
	userId := uuid.New()
	sourceIds := []string{"a"}

	job := &entity.GenerationJob{
		Id:          uuid.New(),
		UserId:      userId,
		Kind:        studygen.KindSummary,
		SourceIds:   sourceIds,
		Fingerprint: studygen.Fingerprint(studygen.KindSummary, sourceIds, nil),
		Status:      studygen.JobCompleted,
		Result:      json.RawMessage(`{"text":"first"}`),
	}
	if err := svc.Store(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job.Id = uuid.New()
	job.Result = json.RawMessage(`{"text":"second"}`)
	if err := svc.Store(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.artifacts) != 1 {
		t.Fatalf("expected the regeneration to replace the stale artifact, found %d rows", len(repo.artifacts))
	}
	for _, a := range repo.artifacts {
		if string(a.Payload) != `{"text":"second"}` {
			t.Errorf("expected the newest payload to win, got %s", a.Payload)
		}
	}
}

func TestCacheStore_RejectsUnfinishedJob(t *testing.T) {
	svc, _ := newCacheServiceUnderTest()

	job := &entity.GenerationJob{
		Id:     uuid.New(),
		UserId: uuid.New(),
		Kind:   studygen.KindSummary,
		Status: studygen.JobPending,
	}
	if err := svc.Store(context.Background(), job); err == nil {
		t.Fatal("expected storing a pending job to fail")
	}
}
