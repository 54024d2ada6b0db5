package mapper

import (
	"encoding/json"

	"ai-studygen-be/internal/entity"
	"ai-studygen-be/internal/model"
	"ai-studygen-be/pkg/studygen"

	"gorm.io/datatypes"
)

type GenerationJobMapper struct{}

func NewGenerationJobMapper() *GenerationJobMapper {
	return &GenerationJobMapper{}
}

func (m *GenerationJobMapper) ToEntity(j *model.GenerationJob) *entity.GenerationJob {
	if j == nil {
		return nil
	}

	var sourceIds []string
	if len(j.SourceIds) > 0 {
		json.Unmarshal(j.SourceIds, &sourceIds)
	}

	return &entity.GenerationJob{
		Id:          j.Id,
		UserId:      j.UserId,
		Kind:        studygen.ArtifactKind(j.Kind),
		SourceIds:   sourceIds,
		Parameters:  map[string]interface{}(j.Parameters),
		Fingerprint: j.Fingerprint,
		Status:      studygen.JobState(j.Status),
		Result:      json.RawMessage(j.Result),
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

func (m *GenerationJobMapper) ToModel(j *entity.GenerationJob) *model.GenerationJob {
	if j == nil {
		return nil
	}

	sourceIds, _ := json.Marshal(j.SourceIds)

	return &model.GenerationJob{
		Id:          j.Id,
		UserId:      j.UserId,
		Kind:        string(j.Kind),
		SourceIds:   datatypes.JSON(sourceIds),
		Parameters:  datatypes.JSONMap(j.Parameters),
		Fingerprint: j.Fingerprint,
		Status:      string(j.Status),
		Result:      datatypes.JSON(j.Result),
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

func (m *GenerationJobMapper) ToEntities(jobs []*model.GenerationJob) []*entity.GenerationJob {
	entities := make([]*entity.GenerationJob, len(jobs))
	for i, j := range jobs {
		entities[i] = m.ToEntity(j)
	}
	return entities
}
