package specification

import (
	"ai-studygen-be/pkg/studygen"

	"gorm.io/gorm"
)

type ByKind struct {
	Kind studygen.ArtifactKind
}

func (s ByKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", string(s.Kind))
}

type ByStatus struct {
	Status studygen.JobState
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type ByFingerprint struct {
	Fingerprint string
}

func (s ByFingerprint) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("fingerprint = ?", s.Fingerprint)
}

// ByFingerprintPrefix matches every parameter variant of a kind+sources key.
type ByFingerprintPrefix struct {
	Prefix string
}

func (s ByFingerprintPrefix) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("fingerprint LIKE ?", s.Prefix+"%")
}
