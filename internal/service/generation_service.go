// FILE: internal/service/generation_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ai-studygen-be/internal/dto"
	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/repository/specification"
	"ai-studygen-be/internal/repository/unitofwork"
	"ai-studygen-be/pkg/events"
	pktNats "ai-studygen-be/pkg/nats"
	"ai-studygen-be/pkg/studygen"

	"github.com/google/uuid"
)

type IGenerationService interface {
	Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitJobRequest) (*dto.SubmitJobResponse, error)
	Status(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.JobStatusResponse, error)
	Cleanup(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) error
}

type generationService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IGenerationService {
	return &generationService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (s *generationService) Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitJobRequest) (*dto.SubmitJobResponse, error) {
	// 1. Validate kind and parameters
	kind := studygen.ArtifactKind(req.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, req.Kind)
	}
	if err := validateParameters(kind, req.Parameters); err != nil {
		return nil, err
	}

	// 2. Verify the user owns every referenced source
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sourceIds, err := parseSourceIds(req.SourceIds)
	if err != nil {
		return nil, err
	}
	count, err := uow.SourceContentRepository().Count(ctx,
		specification.ByIDs{IDs: sourceIds},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if count != int64(len(sourceIds)) {
		return nil, ErrSourceNotFound
	}

	// 3. Create the job record in pending state
	job := entity.GenerationJob{
		Id:          uuid.New(),
		UserId:      userId,
		Kind:        kind,
		SourceIds:   req.SourceIds,
		Parameters:  req.Parameters,
		Fingerprint: studygen.Fingerprint(kind, req.SourceIds, req.Parameters),
		Status:      studygen.JobPending,
		CreatedAt:   time.Now(),
	}
	if err := uow.GenerationJobRepository().Create(ctx, &job); err != nil {
		return nil, err
	}

	// 4. Enqueue for the worker
	msgPayload := dto.EnqueueGenerationMessage{
		JobId: job.Id,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	// Publish Event for observers; auxiliary, never fails the request
	if s.eventPublisher != nil {
		evt := events.NewJobSubmitted(job.Id.String(), userId.String(), string(kind))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish JOB_SUBMITTED event: %v", err)
		}
	}

	return &dto.SubmitJobResponse{
		JobId: job.Id,
	}, nil
}

func (s *generationService) Status(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.JobStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.GenerationJobRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	return &dto.JobStatusResponse{
		Status: string(job.Status),
		Result: job.Result,
		Error:  job.Error,
	}, nil
}

func (s *generationService) Cleanup(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	job, err := uow.GenerationJobRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrJobNotFound
	}
	// Only settled jobs may be discarded; the worker still owns running ones
	if !job.Terminal() {
		return ErrJobNotTerminal
	}

	return uow.GenerationJobRepository().Delete(ctx, job.Id)
}

func parseSourceIds(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad source id %q", ErrInvalidParameters, s)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

var validDifficulties = map[string]bool{
	string(studygen.DifficultyEasy):   true,
	string(studygen.DifficultyMedium): true,
	string(studygen.DifficultyHard):   true,
}

var validQuestionTypes = map[string]bool{
	"multiple_choice": true,
	"true_false":      true,
	"short_answer":    true,
}

func validateParameters(kind studygen.ArtifactKind, params map[string]interface{}) error {
	switch kind {
	case studygen.KindFlashcards:
		if count, ok := numberParam(params, "count"); ok && (count < 1 || count > 100) {
			return fmt.Errorf("%w: count must be between 1 and 100", ErrInvalidParameters)
		}
		if d, ok := params["difficulty"].(string); ok && !validDifficulties[d] {
			return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidParameters, d)
		}
	case studygen.KindQuiz:
		if count, ok := numberParam(params, "question_count"); ok && (count < 1 || count > 50) {
			return fmt.Errorf("%w: question_count must be between 1 and 50", ErrInvalidParameters)
		}
		if d, ok := params["difficulty"].(string); ok && !validDifficulties[d] {
			return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidParameters, d)
		}
		for _, qt := range questionTypes(params) {
			if !validQuestionTypes[qt] {
				return fmt.Errorf("%w: unknown question type %q", ErrInvalidParameters, qt)
			}
		}
	case studygen.KindNotes:
		if style, ok := params["style"].(string); ok && style == "" {
			return fmt.Errorf("%w: style must not be empty", ErrInvalidParameters)
		}
	case studygen.KindSummary:
		// Summaries take no parameters
	}
	return nil
}

func numberParam(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func questionTypes(params map[string]interface{}) []string {
	switch v := params["question_types"].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
