package integration

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/model"
	"ai-studygen-be/internal/repository/cache"
	"ai-studygen-be/internal/repository/memory"
	"ai-studygen-be/internal/repository/specification"
	"ai-studygen-be/internal/repository/unitofwork"
	"ai-studygen-be/internal/service"
	"ai-studygen-be/pkg/database"
	"ai-studygen-be/pkg/studygen"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationPipelineAgainstDatabase(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to DB")

	require.NoError(t, gormDB.AutoMigrate(
		&model.SourceContent{},
		&model.GenerationJob{},
		&model.Artifact{},
	))

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	assert.NotNil(t, uow.SourceContentRepository())
	assert.NotNil(t, uow.GenerationJobRepository())
	assert.NotNil(t, uow.ArtifactRepository())

	userId := uuid.New()

	t.Run("Source roundtrip", func(t *testing.T) {
		source := &entity.SourceContent{
			Id:        uuid.New(),
			Kind:      studygen.SourceText,
			Title:     "Integration fixture",
			Body:      "The mitochondria is the powerhouse of the cell.",
			UserId:    userId,
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.SourceContentRepository().Create(ctx, source))

		found, err := uow.SourceContentRepository().FindOne(ctx,
			specification.ByID{ID: source.Id},
			specification.OwnedByUser{UserID: userId},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, source.Title, found.Title)
		assert.Equal(t, studygen.SourceText, found.Kind)
	})

	t.Run("Job lifecycle", func(t *testing.T) {
		sourceIds := []string{uuid.New().String()}
		job := &entity.GenerationJob{
			Id:          uuid.New(),
			UserId:      userId,
			Kind:        studygen.KindSummary,
			SourceIds:   sourceIds,
			Fingerprint: studygen.Fingerprint(studygen.KindSummary, sourceIds, nil),
			Status:      studygen.JobPending,
			CreatedAt:   time.Now(),
		}
		require.NoError(t, uow.GenerationJobRepository().Create(ctx, job))

		job.Start()
		require.NoError(t, uow.GenerationJobRepository().Update(ctx, job))

		running, err := uow.GenerationJobRepository().FindOne(ctx, specification.ByID{ID: job.Id})
		require.NoError(t, err)
		require.NotNil(t, running)
		assert.Equal(t, studygen.JobRunning, running.Status)

		job.Complete(json.RawMessage(`{"text":"short summary"}`))
		require.NoError(t, uow.GenerationJobRepository().Update(ctx, job))

		found, err := uow.GenerationJobRepository().FindOne(ctx, specification.ByID{ID: job.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, studygen.JobCompleted, found.Status)
		assert.JSONEq(t, `{"text":"short summary"}`, string(found.Result))
		assert.NotNil(t, found.CompletedAt)
	})

	t.Run("Cache service over real database", func(t *testing.T) {
		hot := memory.NewArtifactCache(time.Minute)
		shared := cache.NewRedisArtifactCache(nil, time.Minute)
		cacheService := service.NewCacheService(uowFactory, hot, shared)

		sourceIds := []string{uuid.New().String(), uuid.New().String()}
		job := &entity.GenerationJob{
			Id:          uuid.New(),
			UserId:      userId,
			Kind:        studygen.KindFlashcards,
			SourceIds:   sourceIds,
			Parameters:  map[string]interface{}{"count": 5, "difficulty": "easy"},
			Fingerprint: studygen.Fingerprint(studygen.KindFlashcards, sourceIds, map[string]interface{}{"count": 5, "difficulty": "easy"}),
			Status:      studygen.JobCompleted,
			Result:      json.RawMessage(`[{"front":"Q","back":"A"}]`),
			CreatedAt:   time.Now(),
		}
		require.NoError(t, cacheService.Store(ctx, job))

		// Parameters are excluded from the flashcard key, so a lookup with
		// different parameters still hits
		res, err := cacheService.Lookup(ctx, userId, studygen.KindFlashcards, sourceIds, map[string]interface{}{"count": 20, "difficulty": "hard"})
		require.NoError(t, err)
		assert.True(t, res.Cached)

		deleted, err := cacheService.Invalidate(ctx, userId, studygen.KindFlashcards, sourceIds, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		res, err = cacheService.Lookup(ctx, userId, studygen.KindFlashcards, sourceIds, nil)
		require.NoError(t, err)
		assert.False(t, res.Cached)
	})
}
