package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions.
const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
)

// AuditLog records one mutating action: who did what to which
// entity, with JSON snapshots of the record before and after.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Actor      string         `gorm:"size:100;not null;index" json:"actor"`
	Role       string         `gorm:"size:20;not null" json:"role"`
	Action     string         `gorm:"size:20;not null" json:"action"`
	EntityType string         `gorm:"size:30;not null;index" json:"entityType"`
	EntityID   string         `gorm:"size:64;not null" json:"entityId"`
	BranchID   *uuid.UUID     `gorm:"type:uuid;index" json:"branchId,omitempty"`
	Before     datatypes.JSON `gorm:"type:jsonb" json:"before,omitempty"`
	After      datatypes.JSON `gorm:"type:jsonb" json:"after,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
