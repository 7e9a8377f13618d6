package models

import (
	"time"

	"gorm.io/gorm"

	apperrors "marketplace/internal/errors"
)

// AuditLog is an append-only record of an administrative action.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Action      string    `gorm:"not null" json:"action"`
	Target      string    `gorm:"not null" json:"target"`
	PerformedBy string    `gorm:"not null" json:"performed_by"`
	ActorID     uint      `gorm:"index" json:"actor_id"`
	RequestID   string    `gorm:"size:36" json:"request_id,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// BeforeUpdate rejects any update of an existing entry.
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return apperrors.ErrAuditImmutable
}

// BeforeDelete rejects deletion.
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return apperrors.ErrAuditImmutable
}
