package model

import "github.com/google/uuid"

// Location is a physical storage slot. CurrentOccupancy never exceeds
// Capacity, and capacity can never be lowered below what is already stored.
// Locations form a tree via ParentID.
type Location struct {
	BaseModel
	Code             string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required,max=50"`
	Capacity         int        `gorm:"not null;default:0" json:"capacity" validate:"gte=0"`
	CurrentOccupancy int        `gorm:"not null;default:0" json:"current_occupancy"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	ParentID         *uuid.UUID `gorm:"type:uuid" json:"parent_id,omitempty"`
	Parent           *Location  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

// Available is the remaining capacity of the location.
func (l *Location) Available() int {
	return l.Capacity - l.CurrentOccupancy
}
