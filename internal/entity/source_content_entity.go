package entity

import (
	"time"

	"ai-studygen-be/pkg/studygen"

	"github.com/google/uuid"
)

type SourceContent struct {
	Id        uuid.UUID
	Kind      studygen.SourceKind
	Title     string
	Body      string
	UserId    uuid.UUID
	CreatedAt time.Time
}
