package unitofwork

import (
	"context"

	"ai-studygen-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SourceContentRepository() contract.SourceContentRepository
	GenerationJobRepository() contract.GenerationJobRepository
	ArtifactRepository() contract.ArtifactRepository
}
