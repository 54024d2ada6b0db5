package contract

import (
	"context"

	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ArtifactRepository interface {
	Create(ctx context.Context, artifact *entity.Artifact) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByFingerprintPrefix removes every artifact of a user whose
	// fingerprint starts with prefix. Returns how many rows went away;
	// zero matches is success.
	DeleteByFingerprintPrefix(ctx context.Context, userId uuid.UUID, prefix string) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Artifact, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Artifact, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
