package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID), standard audit trails and the optimistic
// concurrency token every entity carries. Version is compared on update;
// a mismatch means another writer got there first.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"` // Soft delete support
	Version   int            `gorm:"default:1" json:"version"`

	// Audit actor tracking
	CreatedBy string `json:"created_by"`
	UpdatedBy string `json:"updated_by"`
}

// Hook to generate the UUID before insert
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.Version == 0 {
		base.Version = 1
	}
	return
}
