// FILE: internal/service/source_service.go
package service

import (
	"context"
	"time"

	"ai-studygen-be/internal/dto"
	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/repository/specification"
	"ai-studygen-be/internal/repository/unitofwork"
	"ai-studygen-be/pkg/studygen"

	"github.com/google/uuid"
)

type ISourceService interface {
	Register(ctx context.Context, userId uuid.UUID, req *dto.RegisterSourceRequest) (*dto.RegisterSourceResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]dto.SourceResponse, error)
}

type sourceService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSourceService(uowFactory unitofwork.RepositoryFactory) ISourceService {
	return &sourceService{
		uowFactory: uowFactory,
	}
}

func (s *sourceService) Register(ctx context.Context, userId uuid.UUID, req *dto.RegisterSourceRequest) (*dto.RegisterSourceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	source := entity.SourceContent{
		Id:        uuid.New(),
		Kind:      studygen.SourceKind(req.Kind),
		Title:     req.Title,
		Body:      req.Body,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.SourceContentRepository().Create(ctx, &source); err != nil {
		return nil, err
	}

	return &dto.RegisterSourceResponse{
		Id: source.Id,
	}, nil
}

func (s *sourceService) List(ctx context.Context, userId uuid.UUID) ([]dto.SourceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sources, err := uow.SourceContentRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderByCreatedDesc{},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.SourceResponse, 0, len(sources))
	for _, src := range sources {
		res = append(res, dto.SourceResponse{
			Id:        src.Id,
			Kind:      string(src.Kind),
			Title:     src.Title,
			CreatedAt: src.CreatedAt,
		})
	}
	return res, nil
}
