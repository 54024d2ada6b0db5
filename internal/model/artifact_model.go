package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Artifact struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fingerprint string            `gorm:"type:varchar(128);not null;uniqueIndex:idx_artifacts_user_fingerprint,priority:2"`
	Kind        string            `gorm:"type:varchar(32);not null;index"`
	SourceIds   datatypes.JSON    `gorm:"type:jsonb;not null"`
	Parameters  datatypes.JSONMap `gorm:"type:jsonb"`
	Payload     datatypes.JSON    `gorm:"type:jsonb;not null"`
	UserId      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_artifacts_user_fingerprint,priority:1"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
}

func (Artifact) TableName() string {
	return "artifacts"
}
