package model

import (
	"github.com/google/uuid"

	"go-wms/internal/apperr"
)

type InboundStatus string

const (
	InboundPending   InboundStatus = "PENDING"
	InboundReceived  InboundStatus = "RECEIVED"
	InboundPutAway   InboundStatus = "PUTAWAY"
	InboundCompleted InboundStatus = "COMPLETED"
	InboundCancelled InboundStatus = "CANCELLED"
)

func ParseInboundStatus(s string) (InboundStatus, error) {
	switch InboundStatus(s) {
	case InboundPending, InboundReceived, InboundPutAway, InboundCompleted,
		InboundCancelled:
		return InboundStatus(s), nil
	}
	return "", apperr.Validation("unknown inbound status %q", s)
}

// Inbound is a receiving document that drives inventory increases.
type Inbound struct {
	BaseModel
	InboundNo    string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"inbound_no"`
	SupplierName string        `gorm:"type:varchar(255)" json:"supplier_name" validate:"max=255"`
	Status       InboundStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Remarks      string        `gorm:"type:varchar(500)" json:"remarks"`

	Items []InboundItem `gorm:"foreignKey:InboundID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

// InboundItem is one expected receipt line. ReceivedQty <= ExpectedQty and
// DamagedQty <= ReceivedQty; only undamaged units are put away.
type InboundItem struct {
	BaseModel
	InboundID   uuid.UUID `gorm:"type:uuid;not null;index" json:"inbound_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ExpectedQty int       `gorm:"not null" json:"expected_qty"`
	ReceivedQty int       `gorm:"not null;default:0" json:"received_qty"`
	DamagedQty  int       `gorm:"not null;default:0" json:"damaged_qty"`
}
