package model

import (
	"time"

	"github.com/google/uuid"

	"go-wms/internal/apperr"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
	DeliveryFailed    DeliveryStatus = "FAILED"
	DeliveryReturned  DeliveryStatus = "RETURNED"
	DeliveryCancelled DeliveryStatus = "CANCELLED"
)

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch DeliveryStatus(s) {
	case DeliveryPending, DeliveryInTransit, DeliveryDelivered, DeliveryFailed,
		DeliveryReturned, DeliveryCancelled:
		return DeliveryStatus(s), nil
	}
	return "", apperr.Validation("unknown delivery status %q", s)
}

func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryDelivered || s == DeliveryFailed ||
		s == DeliveryReturned || s == DeliveryCancelled
}

// Delivery tracks the physical shipment after an outbound leaves the
// warehouse. Its lifecycle is independent of the outbound status.
type Delivery struct {
	BaseModel
	DeliveryNo string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"delivery_no"`
	OutboundID uuid.UUID      `gorm:"type:uuid;not null;index" json:"outbound_id"`
	TrackingNo string         `gorm:"type:varchar(100)" json:"tracking_no" validate:"max=100"`
	Status     DeliveryStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`

	Events []DeliveryEvent `gorm:"foreignKey:DeliveryID;references:ID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

// DeliveryEvent is the immutable tracking log a dispute-resolution workflow
// reads. EventID is the partner-supplied id deduplicating webhook replays.
type DeliveryEvent struct {
	BaseModel
	DeliveryID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_delivery_event" json:"delivery_id"`
	EventID    *string        `gorm:"type:varchar(100);uniqueIndex:idx_delivery_event" json:"event_id,omitempty"`
	Status     DeliveryStatus `gorm:"type:varchar(20);not null" json:"status"`
	Location   string         `gorm:"type:varchar(255)" json:"location"`
	Notes      string         `gorm:"type:varchar(500)" json:"notes"`
	OccurredAt time.Time      `json:"occurred_at"`
}
