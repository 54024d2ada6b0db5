package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GenerationJob struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Kind        string            `gorm:"type:varchar(32);not null;index"`
	SourceIds   datatypes.JSON    `gorm:"type:jsonb;not null"`
	Parameters  datatypes.JSONMap `gorm:"type:jsonb"`
	Fingerprint string            `gorm:"type:varchar(128);not null;index"`
	Status      string            `gorm:"type:varchar(16);not null;index"`
	Result      datatypes.JSON    `gorm:"type:jsonb"`
	Error       string            `gorm:"type:text"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}
