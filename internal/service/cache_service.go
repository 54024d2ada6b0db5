// FILE: internal/service/cache_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-studygen-be/internal/dto"
	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/repository/cache"
	"ai-studygen-be/internal/repository/memory"
	"ai-studygen-be/internal/repository/specification"
	"ai-studygen-be/internal/repository/unitofwork"
	"ai-studygen-be/pkg/studygen"

	"github.com/google/uuid"
)

type ICacheService interface {
	// Lookup checks the layered cache for a completed artifact matching the
	// kind, source set and (for parameter-keyed kinds) parameters.
	Lookup(ctx context.Context, userId uuid.UUID, kind studygen.ArtifactKind, sourceIds []string, params map[string]interface{}) (*dto.CacheLookupResponse, error)

	// Invalidate removes cached artifacts across every layer. With nil
	// params every parameter variant of the kind+sources key is removed.
	// The database count is the authoritative return value.
	Invalidate(ctx context.Context, userId uuid.UUID, kind studygen.ArtifactKind, sourceIds []string, params map[string]interface{}) (int, error)

	// Store records a completed job's payload into all cache layers.
	Store(ctx context.Context, job *entity.GenerationJob) error
}

type cacheService struct {
	uowFactory unitofwork.RepositoryFactory
	hot        *memory.ArtifactCache
	shared     *cache.RedisArtifactCache
}

func NewCacheService(
	uowFactory unitofwork.RepositoryFactory,
	hot *memory.ArtifactCache,
	shared *cache.RedisArtifactCache,
) ICacheService {
	return &cacheService{
		uowFactory: uowFactory,
		hot:        hot,
		shared:     shared,
	}
}

func (s *cacheService) Lookup(ctx context.Context, userId uuid.UUID, kind studygen.ArtifactKind, sourceIds []string, params map[string]interface{}) (*dto.CacheLookupResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}
	fingerprint := studygen.Fingerprint(kind, sourceIds, params)

	// 1. In-process layer
	if payload, found := s.hot.Get(userId, fingerprint); found {
		return &dto.CacheLookupResponse{Cached: true, Result: payload}, nil
	}

	// 2. Shared layer; a Redis failure degrades to a database read
	payload, found, err := s.shared.Get(ctx, userId, fingerprint)
	if err != nil {
		log.Printf("[WARN] Redis lookup failed for %s: %v", fingerprint, err)
	} else if found {
		s.hot.Set(userId, fingerprint, payload)
		return &dto.CacheLookupResponse{Cached: true, Result: payload}, nil
	}

	// 3. Durable layer, backfilling the faster ones on a hit
	uow := s.uowFactory.NewUnitOfWork(ctx)
	artifact, err := uow.ArtifactRepository().FindOne(ctx,
		specification.ByFingerprint{Fingerprint: fingerprint},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return &dto.CacheLookupResponse{Cached: false}, nil
	}

	s.hot.Set(userId, fingerprint, artifact.Payload)
	if err := s.shared.Set(ctx, userId, fingerprint, artifact.Payload); err != nil {
		log.Printf("[WARN] Redis backfill failed for %s: %v", fingerprint, err)
	}

	return &dto.CacheLookupResponse{Cached: true, Result: artifact.Payload}, nil
}

func (s *cacheService) Invalidate(ctx context.Context, userId uuid.UUID, kind studygen.ArtifactKind, sourceIds []string, params map[string]interface{}) (int, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidKind, kind)
	}

	// Without parameters the whole kind+sources family goes; with them only
	// the exact variant. Both resolve to a prefix match on the fingerprint.
	var prefix string
	if params == nil {
		prefix = studygen.FingerprintPrefix(kind, sourceIds)
	} else {
		prefix = studygen.Fingerprint(kind, sourceIds, params)
	}

	// 1. Database first; its count is the answer
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.ArtifactRepository().DeleteByFingerprintPrefix(ctx, userId, prefix)
	if err != nil {
		return 0, err
	}

	// 2. Volatile layers; failures there only leave entries to expire
	s.hot.DeletePrefix(userId, prefix)
	if _, err := s.shared.DeletePrefix(ctx, userId, prefix); err != nil {
		log.Printf("[WARN] Redis invalidation failed for prefix %s: %v", prefix, err)
	}

	return int(deleted), nil
}

func (s *cacheService) Store(ctx context.Context, job *entity.GenerationJob) error {
	if job.Status != studygen.JobCompleted || len(job.Result) == 0 {
		return fmt.Errorf("job %s has no result to cache", job.Id)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Replace any previous artifact under the same fingerprint so a
	// regeneration wins over the stale entry.
	if _, err := uow.ArtifactRepository().DeleteByFingerprintPrefix(ctx, job.UserId, job.Fingerprint); err != nil {
		return err
	}

	artifact := entity.Artifact{
		Id:          uuid.New(),
		Fingerprint: job.Fingerprint,
		Kind:        job.Kind,
		SourceIds:   job.SourceIds,
		Parameters:  job.Parameters,
		Payload:     json.RawMessage(job.Result),
		UserId:      job.UserId,
		CreatedAt:   time.Now(),
	}
	if err := uow.ArtifactRepository().Create(ctx, &artifact); err != nil {
		return err
	}

	s.hot.Set(job.UserId, job.Fingerprint, artifact.Payload)
	if err := s.shared.Set(ctx, job.UserId, job.Fingerprint, artifact.Payload); err != nil {
		log.Printf("[WARN] Redis store failed for %s: %v", job.Fingerprint, err)
	}

	return nil
}
