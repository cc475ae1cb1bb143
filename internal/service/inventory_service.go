package service

import (
	"errors"
	"time"

	"go-wms/internal/apperr"
	"go-wms/internal/model"
	"go-wms/internal/repository"
	"go-wms/internal/ws"
	"go-wms/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdjustRequest is one ledger mutation. Quantity is the signed delta applied
// to the quantity field the transaction type targets.
type AdjustRequest struct {
	ProductID  uuid.UUID             `json:"product_id" validate:"uuid_required"`
	LocationID uuid.UUID             `json:"location_id" validate:"uuid_required"`
	Quantity   int                   `json:"quantity"`
	Type       model.TransactionType `json:"type" validate:"required"`
	RefNumber  string                `json:"ref_number" validate:"max=50"`
	RefID      *uuid.UUID            `json:"ref_id,omitempty"`
}

// InventoryService is the ledger: every quantity change goes through it and
// leaves exactly one InventoryTransaction row behind.
type InventoryService interface {
	// Adjust is the external entry point for manual corrections and returns.
	Adjust(req *AdjustRequest, actor string) (*model.Inventory, error)

	// Tx-scoped primitives composed by the inbound/outbound flows. They must
	// run inside the caller's transaction so ledger effects and document
	// updates commit together or not at all.
	AdjustInTx(tx *gorm.DB, req *AdjustRequest, actor string) (*model.Inventory, error)
	Reserve(tx *gorm.DB, productID, locationID uuid.UUID, qty int, refNumber string, refID *uuid.UUID, actor string) (*model.Inventory, error)
	Release(tx *gorm.DB, productID, locationID uuid.UUID, qty int, refNumber string, refID *uuid.UUID, actor string) (*model.Inventory, error)
	ConsumeReservation(tx *gorm.DB, productID, locationID uuid.UUID, qty int, refNumber string, refID *uuid.UUID, actor string) (*model.Inventory, error)

	Search(filter repository.InventoryFilter) ([]model.Inventory, error)
	ListTransactions(productID *uuid.UUID, limit int) ([]model.InventoryTransaction, error)
}

type inventoryService struct {
	invRepo      repository.InventoryRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	db           *gorm.DB
	hub          *ws.Hub
}

func NewInventoryService(
	invRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	db *gorm.DB,
	hub *ws.Hub,
) InventoryService {
	return &inventoryService{
		invRepo:      invRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		db:           db,
		hub:          hub,
	}
}

func (s *inventoryService) Adjust(req *AdjustRequest, actor string) (*model.Inventory, error) {
	// Reservations are owned by the fulfillment flow; the public surface only
	// takes stock-level operations.
	switch req.Type {
	case model.TxAdjustment, model.TxReturn, model.TxInbound:
	default:
		return nil, apperr.Validation("transaction type %s is not accepted here", req.Type)
	}

	var inv *model.Inventory
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		inv, txErr = s.AdjustInTx(tx, req, actor)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish("inventory_adjusted", map[string]interface{}{
		"product_id":    inv.ProductID,
		"location_id":   inv.LocationID,
		"qty_on_hand":   inv.QtyOnHand,
		"qty_reserved":  inv.QtyReserved,
		"qty_available": inv.QtyAvailable,
		"actor":         actor,
		"at":            time.Now().UTC(),
	})

	return inv, nil
}

func (s *inventoryService) AdjustInTx(tx *gorm.DB, req *AdjustRequest, actor string) (*model.Inventory, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Quantity == 0 {
		return nil, apperr.Validation("quantity delta must not be zero")
	}

	inv, err := s.lockOrCreateRow(tx, req, actor)
	if err != nil {
		return nil, err
	}

	var before, after int
	switch req.Type {
	case model.TxReserve:
		qty := req.Quantity
		if qty < 0 {
			return nil, apperr.Validation("reserve quantity must be positive")
		}
		if qty > inv.QtyAvailable {
			return nil, apperr.InsufficientQuantity(
				"cannot reserve %d: only %d available", qty, inv.QtyAvailable)
		}
		before = inv.QtyReserved
		inv.QtyReserved += qty
		after = inv.QtyReserved

	case model.TxRelease:
		qty := -req.Quantity
		if qty < 0 {
			return nil, apperr.Validation("release delta must be negative")
		}
		if qty > inv.QtyReserved {
			return nil, apperr.InsufficientQuantity(
				"cannot release %d: only %d reserved", qty, inv.QtyReserved)
		}
		before = inv.QtyReserved
		inv.QtyReserved -= qty
		after = inv.QtyReserved

	case model.TxOutbound:
		// Shipment consumes a reservation: reserved and on-hand drop together.
		qty := -req.Quantity
		if qty < 0 {
			return nil, apperr.Validation("outbound delta must be negative")
		}
		if qty > inv.QtyReserved {
			return nil, apperr.InsufficientQuantity(
				"cannot ship %d: only %d reserved", qty, inv.QtyReserved)
		}
		before = inv.QtyOnHand
		inv.QtyOnHand -= qty
		inv.QtyReserved -= qty
		after = inv.QtyOnHand

	default: // INBOUND, RETURN, ADJUSTMENT
		newOnHand := inv.QtyOnHand + req.Quantity
		if newOnHand < 0 {
			return nil, apperr.InsufficientQuantity(
				"adjustment of %d would drop on-hand below zero (current %d)",
				req.Quantity, inv.QtyOnHand)
		}
		if newOnHand < inv.QtyReserved {
			return nil, apperr.InsufficientQuantity(
				"adjustment of %d would drop on-hand below the %d reserved",
				req.Quantity, inv.QtyReserved)
		}
		before = inv.QtyOnHand
		inv.QtyOnHand = newOnHand
		after = inv.QtyOnHand
	}

	inv.QtyAvailable = inv.QtyOnHand - inv.QtyReserved

	if err := s.invRepo.UpdateQuantities(tx, inv, actor); err != nil {
		return nil, err
	}

	trx := &model.InventoryTransaction{
		InventoryID:   inv.ID,
		ProductID:     inv.ProductID,
		LocationID:    inv.LocationID,
		Type:          req.Type,
		Quantity:      req.Quantity,
		BalanceBefore: before,
		BalanceAfter:  after,
		RefNumber:     req.RefNumber,
		RefID:         req.RefID,
	}
	trx.CreatedBy = actor
	trx.UpdatedBy = actor
	if err := s.invRepo.AppendTransaction(tx, trx); err != nil {
		return nil, err
	}

	return inv, nil
}

// lockOrCreateRow locks the inventory row, creating it first when an
// initial-receipt type touches a product/location pair for the first time.
func (s *inventoryService) lockOrCreateRow(tx *gorm.DB, req *AdjustRequest, actor string) (*model.Inventory, error) {
	inv, err := s.invRepo.FindForUpdate(tx, req.ProductID, req.LocationID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !req.Type.CreatesRow() {
		return nil, apperr.NotFound(
			"no inventory for product %s at location %s", req.ProductID, req.LocationID)
	}

	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %s not found", req.ProductID)
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, apperr.Validation("product %s is inactive", product.SKU)
	}
	loc, err := s.locationRepo.FindByID(req.LocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("location %s not found", req.LocationID)
		}
		return nil, err
	}
	if !loc.IsActive {
		return nil, apperr.Validation("location %s is inactive", loc.Code)
	}

	fresh := &model.Inventory{ProductID: req.ProductID, LocationID: req.LocationID}
	fresh.CreatedBy = actor
	fresh.UpdatedBy = actor
	if err := s.invRepo.Create(tx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *inventoryService) Reserve(tx *gorm.DB, productID, locationID uuid.UUID, qty int, refNumber string, refID *uuid.UUID, actor string) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("reserve quantity must be positive")
	}
	return s.AdjustInTx(tx, &AdjustRequest{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   qty,
		Type:       model.TxReserve,
		RefNumber:  refNumber,
		RefID:      refID,
	}, actor)
}

func (s *inventoryService) Release(tx *gorm.DB, productID, locationID uuid.UUID, qty int, refNumber string, refID *uuid.UUID, actor string) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("release quantity must be positive")
	}
	return s.AdjustInTx(tx, &AdjustRequest{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   -qty,
		Type:       model.TxRelease,
		RefNumber:  refNumber,
		RefID:      refID,
	}, actor)
}

func (s *inventoryService) ConsumeReservation(tx *gorm.DB, productID, locationID uuid.UUID, qty int, refNumber string, refID *uuid.UUID, actor string) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("ship quantity must be positive")
	}
	return s.AdjustInTx(tx, &AdjustRequest{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   -qty,
		Type:       model.TxOutbound,
		RefNumber:  refNumber,
		RefID:      refID,
	}, actor)
}

func (s *inventoryService) Search(filter repository.InventoryFilter) ([]model.Inventory, error) {
	return s.invRepo.Search(filter)
}

func (s *inventoryService) ListTransactions(productID *uuid.UUID, limit int) ([]model.InventoryTransaction, error) {
	return s.invRepo.ListTransactions(productID, limit)
}
