package model

import "github.com/google/uuid"

// TransactionType tags every ledger entry with the operation that caused it.
type TransactionType string

const (
	TxInbound    TransactionType = "INBOUND"
	TxOutbound   TransactionType = "OUTBOUND"
	TxAdjustment TransactionType = "ADJUSTMENT"
	TxReturn     TransactionType = "RETURN"
	TxReserve    TransactionType = "RESERVE"
	TxRelease    TransactionType = "RELEASE"
)

// CreatesRow reports whether this type may open a new inventory row for a
// product/location pair.
func (t TransactionType) CreatesRow() bool {
	return t == TxInbound || t == TxReturn
}

// Inventory is the quantity record for one product at one location. It is
// mutated only through the ledger, never directly, and always satisfies
// 0 <= QtyReserved <= QtyOnHand and QtyAvailable == QtyOnHand - QtyReserved.
type Inventory struct {
	BaseModel
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_location" json:"product_id"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_location" json:"location_id"`
	Product    Product   `json:"product,omitempty"`
	Location   Location  `json:"location,omitempty"`

	QtyOnHand    int `gorm:"not null;default:0" json:"qty_on_hand"`
	QtyReserved  int `gorm:"not null;default:0" json:"qty_reserved"`
	QtyAvailable int `gorm:"not null;default:0" json:"qty_available"`
}

// InventoryTransaction is the append-only audit trail of every quantity
// change. Rows are never updated or deleted.
type InventoryTransaction struct {
	BaseModel
	InventoryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null" json:"location_id"`
	Type        TransactionType `gorm:"type:varchar(20);not null" json:"type"`

	// Quantity is the signed delta applied to the affected quantity field;
	// BalanceBefore/BalanceAfter snapshot that field for the audit trail.
	Quantity      int `gorm:"not null" json:"quantity"`
	BalanceBefore int `gorm:"not null" json:"balance_before"`
	BalanceAfter  int `gorm:"not null" json:"balance_after"`

	// Reference to the triggering document (outbound, inbound, ...)
	RefNumber string     `gorm:"type:varchar(50)" json:"ref_number"`
	RefID     *uuid.UUID `gorm:"type:uuid" json:"ref_id,omitempty"`
}
