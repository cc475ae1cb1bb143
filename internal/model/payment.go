package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-wms/internal/apperr"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentConfirmed, PaymentFailed, PaymentCancelled:
		return PaymentStatus(s), nil
	}
	return "", apperr.Validation("unknown payment status %q", s)
}

// Terminal reports whether no further transition may leave the status.
// A failed payment is retried by creating a new Payment, never by reusing
// the failed one.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentConfirmed || s == PaymentCancelled || s == PaymentFailed
}

// Payment gates shipment of prepaid outbounds.
type Payment struct {
	BaseModel
	PaymentNo  string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"payment_no"`
	OutboundID *uuid.UUID      `gorm:"type:uuid;index" json:"outbound_id,omitempty"`
	Status     PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2)" json:"amount"`
	Method     string          `gorm:"type:varchar(50)" json:"method" validate:"max=50"`

	Events []PaymentEvent `gorm:"foreignKey:PaymentID;references:ID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

// PaymentEvent is the append-only audit log of payment state changes.
// EventID is the gateway-assigned id used to deduplicate webhook replays;
// it is nil for events raised internally.
type PaymentEvent struct {
	BaseModel
	PaymentID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_payment_event" json:"payment_id"`
	EventID   *string       `gorm:"type:varchar(100);uniqueIndex:idx_payment_event" json:"event_id,omitempty"`
	Status    PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes     string        `gorm:"type:varchar(500)" json:"notes"`
}
