// FILE: internal/service/worker_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-studygen-be/internal/dto"
	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/repository/specification"
	"ai-studygen-be/internal/repository/unitofwork"
	"ai-studygen-be/pkg/events"
	"ai-studygen-be/pkg/generator"
	pktNats "ai-studygen-be/pkg/nats"
	"ai-studygen-be/pkg/studygen"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IWorkerService interface {
	Consume(ctx context.Context) error
}

type workerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	concurrency    int
	uowFactory     unitofwork.RepositoryFactory
	generator      generator.Generator
	cacheService   ICacheService
	eventPublisher *pktNats.Publisher
}

func NewWorkerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	concurrency int,
	uowFactory unitofwork.RepositoryFactory,
	gen generator.Generator,
	cacheService ICacheService,
	eventPublisher *pktNats.Publisher,
) IWorkerService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &workerService{
		pubSub:         pubSub,
		topicName:      topicName,
		concurrency:    concurrency,
		uowFactory:     uowFactory,
		generator:      gen,
		cacheService:   cacheService,
		eventPublisher: eventPublisher,
	}
}

func (ws *workerService) Consume(ctx context.Context) error {
	messages, err := ws.pubSub.Subscribe(ctx, ws.topicName)
	if err != nil {
		return err
	}

	for i := 0; i < ws.concurrency; i++ {
		go func() {
			for msg := range messages {
				ws.processMessage(ctx, msg)
			}
		}()
	}

	return nil
}

func (ws *workerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EnqueueGenerationMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing generation job %s", payload.JobId)

	uow := ws.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.GenerationJobRepository().FindOne(ctx, specification.ByID{ID: payload.JobId})
	if err != nil {
		log.Printf("[ERROR] Failed to load job %s: %v", payload.JobId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if job == nil {
		log.Printf("[ERROR] Job not found: %s", payload.JobId)
		msg.Ack() // Job cleaned up? Ack.
		return
	}
	if job.Terminal() {
		log.Printf("[WARN] Job %s already %s, skipping redelivery", job.Id, job.Status)
		msg.Ack()
		return
	}
	if job.Status == studygen.JobRunning {
		// Another delivery of the same message already owns this job.
		log.Printf("[WARN] Job %s already running, skipping redelivery", job.Id)
		msg.Ack()
		return
	}

	job.Start()
	if err := uow.GenerationJobRepository().Update(ctx, job); err != nil {
		log.Printf("[ERROR] Failed to mark job %s started: %v", job.Id, err)
		msg.Nack()
		return
	}

	// Load the source set for the prompt
	sources, err := ws.loadSources(ctx, uow, job)
	if err != nil {
		log.Printf("[ERROR] Failed to load sources for job %s: %v", job.Id, err)
		ws.failJob(ctx, uow, job, "source content unavailable")
		msg.Ack()
		return
	}

	result, err := ws.generator.Generate(ctx, job.Kind, sources, job.Parameters)
	if err != nil {
		log.Printf("[ERROR] Generation failed for job %s: %v", job.Id, err)
		ws.failJob(ctx, uow, job, err.Error())
		msg.Ack() // Generation errors are not retriable at the queue level
		return
	}

	job.Complete(result)
	if err := uow.GenerationJobRepository().Update(ctx, job); err != nil {
		log.Printf("[ERROR] Failed to complete job %s: %v", job.Id, err)
		msg.Nack()
		return
	}

	// Cache the artifact; the job record already carries the result, so a
	// cache failure is logged and the job still counts as done
	if err := ws.cacheService.Store(ctx, job); err != nil {
		log.Printf("[WARN] Failed to cache artifact for job %s: %v", job.Id, err)
	}

	ws.publishEvent(ctx, events.NewJobCompleted(job.Id.String(), job.UserId.String(), string(job.Kind), job.Fingerprint))

	log.Printf("[SUCCESS] Job %s completed (%s)", job.Id, job.Kind)
	msg.Ack()
}

func (ws *workerService) loadSources(ctx context.Context, uow unitofwork.UnitOfWork, job *entity.GenerationJob) ([]generator.Source, error) {
	ids := make([]uuid.UUID, 0, len(job.SourceIds))
	for _, raw := range job.SourceIds {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	contents, err := uow.SourceContentRepository().FindAll(ctx,
		specification.ByIDs{IDs: ids},
		specification.OwnedByUser{UserID: job.UserId},
	)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, ErrSourceNotFound
	}

	sources := make([]generator.Source, 0, len(contents))
	for _, c := range contents {
		sources = append(sources, generator.Source{
			Title: c.Title,
			Kind:  c.Kind,
			Body:  c.Body,
		})
	}
	return sources, nil
}

func (ws *workerService) failJob(ctx context.Context, uow unitofwork.UnitOfWork, job *entity.GenerationJob, reason string) {
	job.Fail(reason)
	if err := uow.GenerationJobRepository().Update(ctx, job); err != nil {
		log.Printf("[ERROR] Failed to mark job %s failed: %v", job.Id, err)
		return
	}
	ws.publishEvent(ctx, events.NewJobFailed(job.Id.String(), job.UserId.String(), string(job.Kind), reason))
}

func (ws *workerService) publishEvent(ctx context.Context, evt events.Event) {
	if ws.eventPublisher == nil {
		return
	}
	if err := ws.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", evt.EventType(), err)
	}
}
