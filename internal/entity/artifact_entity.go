package entity

import (
	"encoding/json"
	"time"

	"ai-studygen-be/pkg/studygen"

	"github.com/google/uuid"
)

// Artifact is a completed generation result, addressable by fingerprint.
// It is the durable layer of the artifact cache.
type Artifact struct {
	Id          uuid.UUID
	Fingerprint string
	Kind        studygen.ArtifactKind
	SourceIds   []string
	Parameters  map[string]interface{}
	Payload     json.RawMessage
	UserId      uuid.UUID
	CreatedAt   time.Time
}
