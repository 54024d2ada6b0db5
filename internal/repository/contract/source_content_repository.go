package contract

import (
	"context"

	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SourceContentRepository interface {
	Create(ctx context.Context, source *entity.SourceContent) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SourceContent, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SourceContent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
