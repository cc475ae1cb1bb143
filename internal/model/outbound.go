package model

import (
	"time"

	"github.com/google/uuid"

	"go-wms/internal/apperr"
)

type OutboundStatus string

const (
	OutboundPending   OutboundStatus = "PENDING"
	OutboundPicking   OutboundStatus = "PICKING"
	OutboundPicked    OutboundStatus = "PICKED"
	OutboundPacked    OutboundStatus = "PACKED"
	OutboundShipped   OutboundStatus = "SHIPPED"
	OutboundCancelled OutboundStatus = "CANCELLED"
)

// ParseOutboundStatus validates a status string once at the boundary.
func ParseOutboundStatus(s string) (OutboundStatus, error) {
	switch OutboundStatus(s) {
	case OutboundPending, OutboundPicking, OutboundPicked, OutboundPacked,
		OutboundShipped, OutboundCancelled:
		return OutboundStatus(s), nil
	}
	return "", apperr.Validation("unknown outbound status %q", s)
}

type PaymentType string

const (
	PaymentPrepaid  PaymentType = "PREPAID"
	PaymentCOD      PaymentType = "COD"
	PaymentPostpaid PaymentType = "POSTPAID"
)

func ParsePaymentType(s string) (PaymentType, error) {
	switch PaymentType(s) {
	case PaymentPrepaid, PaymentCOD, PaymentPostpaid:
		return PaymentType(s), nil
	}
	return "", apperr.Validation("unknown payment type %q", s)
}

// Outbound is a customer order moving through the fulfillment state machine
// PENDING -> PICKING -> PICKED -> PACKED -> SHIPPED, with CANCELLED reachable
// from every pre-shipped state.
type Outbound struct {
	BaseModel
	OutboundNo   string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"outbound_no"`
	CustomerName string         `gorm:"type:varchar(255)" json:"customer_name" validate:"max=255"`
	Status       OutboundStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	PaymentType  PaymentType    `gorm:"type:varchar(20);not null" json:"payment_type"`
	PaymentID    *uuid.UUID     `gorm:"type:uuid" json:"payment_id,omitempty"`
	ShipDate     *time.Time     `json:"ship_date,omitempty"`
	Remarks      string         `gorm:"type:varchar(500)" json:"remarks"`

	Items []OutboundItem `gorm:"foreignKey:OutboundID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
}

// OutboundItem is one order line. Quantities always satisfy
// 0 <= PickedQty <= OrderedQty and ShippedQty <= PickedQty.
type OutboundItem struct {
	BaseModel
	OutboundID uuid.UUID `gorm:"type:uuid;not null;index" json:"outbound_id"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	LocationID uuid.UUID `gorm:"type:uuid;not null" json:"location_id"`
	OrderedQty int       `gorm:"not null" json:"ordered_qty"`
	PickedQty  int       `gorm:"not null;default:0" json:"picked_qty"`
	ShippedQty int       `gorm:"not null;default:0" json:"shipped_qty"`
}
