package mapper

import (
	"encoding/json"

	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/model"
	"ai-studygen-be/pkg/studygen"

	"gorm.io/datatypes"
)

type ArtifactMapper struct{}

func NewArtifactMapper() *ArtifactMapper {
	return &ArtifactMapper{}
}

func (m *ArtifactMapper) ToEntity(a *model.Artifact) *entity.Artifact {
	if a == nil {
		return nil
	}

	var sourceIds []string
	if len(a.SourceIds) > 0 {
		json.Unmarshal(a.SourceIds, &sourceIds)
	}

	return &entity.Artifact{
		Id:          a.Id,
		Fingerprint: a.Fingerprint,
		Kind:        studygen.ArtifactKind(a.Kind),
		SourceIds:   sourceIds,
		Parameters:  map[string]interface{}(a.Parameters),
		Payload:     json.RawMessage(a.Payload),
		UserId:      a.UserId,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *ArtifactMapper) ToModel(a *entity.Artifact) *model.Artifact {
	if a == nil {
		return nil
	}

	sourceIds, _ := json.Marshal(a.SourceIds)

	return &model.Artifact{
		Id:          a.Id,
		Fingerprint: a.Fingerprint,
		Kind:        string(a.Kind),
		SourceIds:   datatypes.JSON(sourceIds),
		Parameters:  datatypes.JSONMap(a.Parameters),
		Payload:     datatypes.JSON(a.Payload),
		UserId:      a.UserId,
		CreatedAt:   a.CreatedAt,
	}
}

func (m *ArtifactMapper) ToEntities(artifacts []*model.Artifact) []*entity.Artifact {
	entities := make([]*entity.Artifact, len(artifacts))
	for i, a := range artifacts {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
