package service

import (
	"errors"

	"go-wms/internal/apperr"
	"go-wms/internal/model"
	"go-wms/internal/repository"
	"go-wms/pkg/idgen"
	"go-wms/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateInboundItemRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"uuid_required"`
	ExpectedQty int       `json:"expected_qty" validate:"required,gt=0"`
}

type CreateInboundRequest struct {
	SupplierName string                     `json:"supplier_name" validate:"max=255"`
	Remarks      string                     `json:"remarks" validate:"max=500"`
	Items        []CreateInboundItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ReceiveLine struct {
	ItemID      uuid.UUID `json:"item_id" validate:"uuid_required"`
	ReceivedQty int       `json:"received_qty" validate:"gte=0"`
	DamagedQty  int       `json:"damaged_qty" validate:"gte=0"`
}

type ReceiveRequest struct {
	Lines []ReceiveLine `json:"lines" validate:"required,min=1,dive"`
}

type PutAwayRequest struct {
	LocationID uuid.UUID `json:"location_id" validate:"uuid_required"`
}

// InboundService drives receiving:
// PENDING -> RECEIVED -> PUTAWAY -> COMPLETED, with CANCELLED reachable
// before putaway. Putaway is what raises the inventory ledger.
type InboundService interface {
	Create(req *CreateInboundRequest, actor string) (*model.Inbound, error)
	Get(id uuid.UUID) (*model.Inbound, error)
	List(page, limit int) ([]model.Inbound, int64, error)

	Receive(id uuid.UUID, req *ReceiveRequest, actor string) (*model.Inbound, error)
	PutAway(id uuid.UUID, req *PutAwayRequest, actor string) (*model.Inbound, error)
	Complete(id uuid.UUID, actor string) (*model.Inbound, error)
	Cancel(id uuid.UUID, actor string) (*model.Inbound, error)
}

type inboundService struct {
	inboundRepo  repository.InboundRepository
	productRepo  repository.ProductRepository
	inventorySvc InventoryService
	locationSvc  LocationService
	db           *gorm.DB
}

func NewInboundService(
	inboundRepo repository.InboundRepository,
	productRepo repository.ProductRepository,
	inventorySvc InventoryService,
	locationSvc LocationService,
	db *gorm.DB,
) InboundService {
	return &inboundService{
		inboundRepo:  inboundRepo,
		productRepo:  productRepo,
		inventorySvc: inventorySvc,
		locationSvc:  locationSvc,
		db:           db,
	}
}

func (s *inboundService) Create(req *CreateInboundRequest, actor string) (*model.Inbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	inbound := &model.Inbound{
		InboundNo:    idgen.DocNumber("INB"),
		SupplierName: req.SupplierName,
		Status:       model.InboundPending,
		Remarks:      req.Remarks,
	}
	inbound.CreatedBy = actor
	inbound.UpdatedBy = actor

	for _, line := range req.Items {
		product, err := s.productRepo.FindByID(line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("product %s not found", line.ProductID)
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, apperr.Validation("product %s is inactive", product.SKU)
		}

		item := model.InboundItem{
			ProductID:   line.ProductID,
			ExpectedQty: line.ExpectedQty,
		}
		item.CreatedBy = actor
		item.UpdatedBy = actor
		inbound.Items = append(inbound.Items, item)
	}

	if err := s.inboundRepo.Create(inbound); err != nil {
		return nil, err
	}
	return inbound, nil
}

func (s *inboundService) Get(id uuid.UUID) (*model.Inbound, error) {
	inbound, err := s.inboundRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("inbound %s not found", id)
		}
		return nil, err
	}
	return inbound, nil
}

func (s *inboundService) List(page, limit int) ([]model.Inbound, int64, error) {
	return s.inboundRepo.List(page, limit)
}

// Receive records the physical counts. Received may not exceed expected and
// damaged may not exceed received.
func (s *inboundService) Receive(id uuid.UUID, req *ReceiveRequest, actor string) (*model.Inbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		inbound, err := s.lockInbound(tx, id)
		if err != nil {
			return err
		}
		if inbound.Status != model.InboundPending {
			return apperr.InvalidTransition(
				"inbound %s cannot be received from %s", inbound.InboundNo, inbound.Status)
		}

		items := make(map[uuid.UUID]*model.InboundItem, len(inbound.Items))
		for i := range inbound.Items {
			items[inbound.Items[i].ID] = &inbound.Items[i]
		}

		for _, line := range req.Lines {
			item, ok := items[line.ItemID]
			if !ok {
				return apperr.NotFound("inbound item %s not found on %s", line.ItemID, inbound.InboundNo)
			}
			if line.ReceivedQty > item.ExpectedQty {
				return apperr.Validation(
					"received %d exceeds expected %d on item %s",
					line.ReceivedQty, item.ExpectedQty, line.ItemID)
			}
			if line.DamagedQty > line.ReceivedQty {
				return apperr.Validation(
					"damaged %d exceeds received %d on item %s",
					line.DamagedQty, line.ReceivedQty, line.ItemID)
			}
			if err := s.inboundRepo.UpdateItem(tx, item, map[string]interface{}{
				"received_qty": line.ReceivedQty,
				"damaged_qty":  line.DamagedQty,
				"updated_by":   actor,
			}); err != nil {
				return err
			}
		}

		return s.inboundRepo.UpdateHeader(tx, inbound, map[string]interface{}{
			"status":     model.InboundReceived,
			"updated_by": actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// PutAway stores the undamaged units at the target location: capacity is
// checked up front, the ledger is raised per line and occupancy moves, all
// in one transaction.
func (s *inboundService) PutAway(id uuid.UUID, req *PutAwayRequest, actor string) (*model.Inbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		inbound, err := s.lockInbound(tx, id)
		if err != nil {
			return err
		}
		if inbound.Status != model.InboundReceived {
			return apperr.InvalidTransition(
				"inbound %s cannot be put away from %s", inbound.InboundNo, inbound.Status)
		}

		goodTotal := 0
		for _, item := range inbound.Items {
			goodTotal += item.ReceivedQty - item.DamagedQty
		}
		if goodTotal <= 0 {
			return apperr.Validation("inbound %s has nothing to put away", inbound.InboundNo)
		}

		check, err := s.locationSvc.CheckCapacity(req.LocationID, goodTotal)
		if err != nil {
			return err
		}
		if !check.Sufficient {
			return apperr.InsufficientCapacity(
				"location lacks space for %d units (short %d)", goodTotal, check.Shortage)
		}

		for i := range inbound.Items {
			item := &inbound.Items[i]
			good := item.ReceivedQty - item.DamagedQty
			if good <= 0 {
				continue
			}
			if _, err := s.inventorySvc.AdjustInTx(tx, &AdjustRequest{
				ProductID:  item.ProductID,
				LocationID: req.LocationID,
				Quantity:   good,
				Type:       model.TxInbound,
				RefNumber:  inbound.InboundNo,
				RefID:      &inbound.ID,
			}, actor); err != nil {
				return err
			}
		}

		if err := s.locationSvc.AdjustOccupancy(tx, req.LocationID, goodTotal, actor); err != nil {
			return err
		}

		return s.inboundRepo.UpdateHeader(tx, inbound, map[string]interface{}{
			"status":     model.InboundPutAway,
			"updated_by": actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *inboundService) Complete(id uuid.UUID, actor string) (*model.Inbound, error) {
	return s.transition(id, actor, model.InboundCompleted, model.InboundPutAway)
}

func (s *inboundService) Cancel(id uuid.UUID, actor string) (*model.Inbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		inbound, err := s.lockInbound(tx, id)
		if err != nil {
			return err
		}
		// Once stock is on the shelf the document can only complete.
		if inbound.Status != model.InboundPending && inbound.Status != model.InboundReceived {
			return apperr.InvalidTransition(
				"inbound %s cannot be cancelled from %s", inbound.InboundNo, inbound.Status)
		}
		return s.inboundRepo.UpdateHeader(tx, inbound, map[string]interface{}{
			"status":     model.InboundCancelled,
			"updated_by": actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *inboundService) transition(id uuid.UUID, actor string, to, from model.InboundStatus) (*model.Inbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		inbound, err := s.lockInbound(tx, id)
		if err != nil {
			return err
		}
		if inbound.Status != from {
			return apperr.InvalidTransition(
				"inbound %s cannot move from %s to %s", inbound.InboundNo, inbound.Status, to)
		}
		return s.inboundRepo.UpdateHeader(tx, inbound, map[string]interface{}{
			"status":     to,
			"updated_by": actor,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *inboundService) lockInbound(tx *gorm.DB, id uuid.UUID) (*model.Inbound, error) {
	inbound, err := s.inboundRepo.FindForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("inbound %s not found", id)
		}
		return nil, err
	}
	return inbound, nil
}
