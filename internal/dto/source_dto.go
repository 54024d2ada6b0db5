package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterSourceRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=document recording text video-transcript"`
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

type RegisterSourceResponse struct {
	Id uuid.UUID `json:"id"`
}

type SourceResponse struct {
	Id        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
