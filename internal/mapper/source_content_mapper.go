package mapper

import (
	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/model"
	"ai-studygen-be/pkg/studygen"
)

type SourceContentMapper struct{}

func NewSourceContentMapper() *SourceContentMapper {
	return &SourceContentMapper{}
}

func (m *SourceContentMapper) ToEntity(s *model.SourceContent) *entity.SourceContent {
	if s == nil {
		return nil
	}
	return &entity.SourceContent{
		Id:        s.Id,
		Kind:      studygen.SourceKind(s.Kind),
		Title:     s.Title,
		Body:      s.Body,
		UserId:    s.UserId,
		CreatedAt: s.CreatedAt,
	}
}

func (m *SourceContentMapper) ToModel(s *entity.SourceContent) *model.SourceContent {
	if s == nil {
		return nil
	}
	return &model.SourceContent{
		Id:        s.Id,
		Kind:      string(s.Kind),
		Title:     s.Title,
		Body:      s.Body,
		UserId:    s.UserId,
		CreatedAt: s.CreatedAt,
	}
}

func (m *SourceContentMapper) ToEntities(sources []*model.SourceContent) []*entity.SourceContent {
	entities := make([]*entity.SourceContent, len(sources))
	for i, s := range sources {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
