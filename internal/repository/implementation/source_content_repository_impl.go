package implementation

import (
	"context"
	"errors"

	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/mapper"
	"ai-studygen-be/internal/model"
	"ai-studygen-be/internal/repository/contract"
	"ai-studygen-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SourceContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SourceContentMapper
}

func NewSourceContentRepository(db *gorm.DB) contract.SourceContentRepository {
	return &SourceContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewSourceContentMapper(),
	}
}

func (r *SourceContentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SourceContentRepositoryImpl) Create(ctx context.Context, source *entity.SourceContent) error {
	m := r.mapper.ToModel(source)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*source = *r.mapper.ToEntity(m)
	return nil
}

func (r *SourceContentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SourceContent{}, id).Error
}

func (r *SourceContentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SourceContent, error) {
	var m model.SourceContent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SourceContentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SourceContent, error) {
	var models []*model.SourceContent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SourceContentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.SourceContent{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
