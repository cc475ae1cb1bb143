package service

import (
	"errors"
	"sort"
	"time"

	"go-wms/internal/apperr"
	"go-wms/internal/model"
	"go-wms/internal/repository"
	"go-wms/internal/ws"
	"go-wms/pkg/idgen"
	"go-wms/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipGate decides whether an outbound may leave the warehouse. The payment
// service implements it; the indirection keeps the bounded contexts from
// importing each other.
type ShipGate interface {
	ShipAuthorization(tx *gorm.DB, outbound *model.Outbound) (bool, error)
}

type CreateOutboundItemRequest struct {
	ProductID  uuid.UUID `json:"product_id" validate:"uuid_required"`
	LocationID uuid.UUID `json:"location_id" validate:"uuid_required"`
	OrderedQty int       `json:"ordered_qty" validate:"required,gt=0"`
}

type CreateOutboundRequest struct {
	CustomerName string                      `json:"customer_name" validate:"max=255"`
	PaymentType  string                      `json:"payment_type" validate:"required"`
	Remarks      string                      `json:"remarks" validate:"max=500"`
	Items        []CreateOutboundItemRequest `json:"items" validate:"required,min=1,dive"`
}

type PickLine struct {
	ItemID   uuid.UUID `json:"item_id" validate:"uuid_required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

type PickRequest struct {
	Lines []PickLine `json:"lines" validate:"required,min=1,dive"`
}

// OutboundService drives an order through
// PENDING -> PICKING -> PICKED -> PACKED -> SHIPPED, reserving and releasing
// inventory at each transition. CANCELLED is reachable from any pre-shipped
// state.
type OutboundService interface {
	Create(req *CreateOutboundRequest, actor string) (*model.Outbound, error)
	Get(id uuid.UUID) (*model.Outbound, error)
	List(page, limit int) ([]model.Outbound, int64, error)

	Allocate(id uuid.UUID, actor string) (*model.Outbound, error)
	Pick(id uuid.UUID, req *PickRequest, actor string) (*model.Outbound, error)
	Pack(id uuid.UUID, actor string) (*model.Outbound, error)
	Ship(id uuid.UUID, actor string) (*model.Outbound, error)
	Cancel(id uuid.UUID, actor string) (*model.Outbound, error)
}

type outboundService struct {
	outboundRepo repository.OutboundRepository
	deliveryRepo repository.DeliveryRepository
	productRepo  repository.ProductRepository
	inventorySvc InventoryService
	locationSvc  LocationService
	gate         ShipGate
	db           *gorm.DB
	hub          *ws.Hub
}

func NewOutboundService(
	outboundRepo repository.OutboundRepository,
	deliveryRepo repository.DeliveryRepository,
	productRepo repository.ProductRepository,
	inventorySvc InventoryService,
	locationSvc LocationService,
	gate ShipGate,
	db *gorm.DB,
	hub *ws.Hub,
) OutboundService {
	return &outboundService{
		outboundRepo: outboundRepo,
		deliveryRepo: deliveryRepo,
		productRepo:  productRepo,
		inventorySvc: inventorySvc,
		locationSvc:  locationSvc,
		gate:         gate,
		db:           db,
		hub:          hub,
	}
}

func (s *outboundService) Create(req *CreateOutboundRequest, actor string) (*model.Outbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	paymentType, err := model.ParsePaymentType(req.PaymentType)
	if err != nil {
		return nil, err
	}

	outbound := &model.Outbound{
		OutboundNo:   idgen.DocNumber("OUT"),
		CustomerName: req.CustomerName,
		Status:       model.OutboundPending,
		PaymentType:  paymentType,
		Remarks:      req.Remarks,
	}
	outbound.CreatedBy = actor
	outbound.UpdatedBy = actor

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
		if _, err := s.locationSvc.Get(line.LocationID); err != nil {
			return nil, err
		}

		item := model.OutboundItem{
			ProductID:  line.ProductID,
			LocationID: line.LocationID,
			OrderedQty: line.OrderedQty,
		}
		item.CreatedBy = actor
		item.UpdatedBy = actor
		outbound.Items = append(outbound.Items, item)
	}

	if err := s.outboundRepo.Create(outbound); err != nil {
		return nil, err
	}
	return outbound, nil
}

func (s *outboundService) Get(id uuid.UUID) (*model.Outbound, error) {
	outbound, err := s.outboundRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("outbound %s not found", id)
		}
		return nil, err
	}
	return outbound, nil
}

func (s *outboundService) List(page, limit int) ([]model.Outbound, int64, error) {
	return s.outboundRepo.List(page, limit)
}

// Allocate marks the start of picking.
func (s *outboundService) Allocate(id uuid.UUID, actor string) (*model.Outbound, error) {
	return s.transition(id, actor, model.OutboundPicking,
		func(tx *gorm.DB, ob *model.Outbound) error {
			if ob.Status != model.OutboundPending {
				return apperr.InvalidTransition(
					"outbound %s cannot start picking from %s", ob.OutboundNo, ob.Status)
			}
			return nil
		})
}

// Pick validates and reserves every requested line, all-or-nothing: a single
// bad line (unknown item, over-pick, insufficient availability) rolls the
// whole command back so no reservation survives without a fully-formed pick.
func (s *outboundService) Pick(id uuid.UUID, req *PickRequest, actor string) (*model.Outbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ob, err := s.lockOutbound(tx, id)
		if err != nil {
			return err
		}
		if ob.Status != model.OutboundPending && ob.Status != model.OutboundPicking {
			return apperr.InvalidTransition(
				"outbound %s cannot be picked from %s", ob.OutboundNo, ob.Status)
		}

		items := make(map[uuid.UUID]*model.OutboundItem, len(ob.Items))
		for i := range ob.Items {
			items[ob.Items[i].ID] = &ob.Items[i]
		}

		// Validate everything before touching inventory.
		seen := make(map[uuid.UUID]bool, len(req.Lines))
		picks := make([]struct {
			item *model.OutboundItem
			qty  int
		}, 0, len(req.Lines))
		for _, line := range req.Lines {
			item, ok := items[line.ItemID]
			if !ok {
				return apperr.NotFound("outbound item %s not found on %s", line.ItemID, ob.OutboundNo)
			}
			if seen[line.ItemID] {
				return apperr.Validation("item %s listed twice in pick request", line.ItemID)
			}
			seen[line.ItemID] = true
			if line.Quantity > item.OrderedQty {
				return apperr.Validation(
					"pick of %d exceeds ordered quantity %d on item %s",
					line.Quantity, item.OrderedQty, line.ItemID)
			}
			picks = append(picks, struct {
				item *model.OutboundItem
				qty  int
			}{item, line.Quantity})
		}

		// Deterministic lock order across concurrent picks.
		sort.Slice(picks, func(i, j int) bool {
			a, b := picks[i].item, picks[j].item
			if a.ProductID != b.ProductID {
				return a.ProductID.String() < b.ProductID.String()
			}
			if a.LocationID != b.LocationID {
				return a.LocationID.String() < b.LocationID.String()
			}
			return a.ID.String() < b.ID.String()
		})

		for _, p := range picks {
			if _, err := s.inventorySvc.Reserve(tx,
				p.item.ProductID, p.item.LocationID, p.qty,
				ob.OutboundNo, &ob.ID, actor); err != nil {
				return err
			}
			if err := s.outboundRepo.UpdateItem(tx, p.item, map[string]interface{}{
				"picked_qty": p.qty,
				"updated_by": actor,
			}); err != nil {
				return err
			}
		}

		return s.outboundRepo.UpdateHeader(tx, ob, map[string]interface{}{
			"status":     model.OutboundPicked,
			"updated_by": actor,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(id, model.OutboundPicked, actor)
	return s.Get(id)
}

// Pack is the physical packing acknowledgement; no inventory effect.
func (s *outboundService) Pack(id uuid.UUID, actor string) (*model.Outbound, error) {
	return s.transition(id, actor, model.OutboundPacked,
		func(tx *gorm.DB, ob *model.Outbound) error {
			if ob.Status != model.OutboundPicked {
				return apperr.InvalidTransition(
					"outbound %s cannot be packed from %s", ob.OutboundNo, ob.Status)
			}
			return nil
		})
}

// Ship consumes the reservations, stamps the ship date and opens the
// delivery record, all gated on payment authorization.
func (s *outboundService) Ship(id uuid.UUID, actor string) (*model.Outbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ob, err := s.lockOutbound(tx, id)
		if err != nil {
			return err
		}
		if ob.Status != model.OutboundPacked {
			return apperr.InvalidTransition(
				"outbound %s cannot ship from %s", ob.OutboundNo, ob.Status)
		}

		allowed, err := s.gate.ShipAuthorization(tx, ob)
		if err != nil {
			return err
		}
		if !allowed {
			return apperr.InvalidTransition(
				"outbound %s requires a confirmed payment before shipping", ob.OutboundNo)
		}

		for i := range ob.Items {
			item := &ob.Items[i]
			if item.PickedQty == 0 {
				continue
			}
			if _, err := s.inventorySvc.ConsumeReservation(tx,
				item.ProductID, item.LocationID, item.PickedQty,
				ob.OutboundNo, &ob.ID, actor); err != nil {
				return err
			}
			if err := s.locationSvc.AdjustOccupancy(tx, item.LocationID, -item.PickedQty, actor); err != nil {
				return err
			}
			if err := s.outboundRepo.UpdateItem(tx, item, map[string]interface{}{
				"shipped_qty": item.PickedQty,
				"updated_by":  actor,
			}); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		if err := s.outboundRepo.UpdateHeader(tx, ob, map[string]interface{}{
			"status":     model.OutboundShipped,
			"ship_date":  now,
			"updated_by": actor,
		}); err != nil {
			return err
		}

		// The physical shipment gets its own tracking lifecycle.
		delivery := &model.Delivery{
			DeliveryNo: idgen.DocNumber("DLV"),
			OutboundID: ob.ID,
			Status:     model.DeliveryPending,
		}
		delivery.CreatedBy = actor
		delivery.UpdatedBy = actor
		if err := s.deliveryRepo.Create(tx, delivery); err != nil {
			return err
		}

		event := &model.DeliveryEvent{
			DeliveryID: delivery.ID,
			Status:     model.DeliveryPending,
			Notes:      "created on shipment of " + ob.OutboundNo,
			OccurredAt: now,
		}
		event.CreatedBy = actor
		event.UpdatedBy = actor
		return s.deliveryRepo.AppendEvent(tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(id, model.OutboundShipped, actor)
	return s.Get(id)
}

// Cancel releases every reservation made so far and closes the order.
func (s *outboundService) Cancel(id uuid.UUID, actor string) (*model.Outbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ob, err := s.lockOutbound(tx, id)
		if err != nil {
			return err
		}
		switch ob.Status {
		case model.OutboundPending, model.OutboundPicking,
			model.OutboundPicked, model.OutboundPacked:
		default:
			return apperr.InvalidTransition(
				"outbound %s cannot be cancelled from %s", ob.OutboundNo, ob.Status)
		}

		for i := range ob.Items {
			item := &ob.Items[i]
			if item.PickedQty == 0 {
				continue
			}
			if _, err := s.inventorySvc.Release(tx,
				item.ProductID, item.LocationID, item.PickedQty,
				ob.OutboundNo, &ob.ID, actor); err != nil {
				return err
			}
		}

		return s.outboundRepo.UpdateHeader(tx, ob, map[string]interface{}{
			"status":     model.OutboundCancelled,
			"updated_by": actor,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(id, model.OutboundCancelled, actor)
	return s.Get(id)
}

// transition runs a side-effect-free status change under the header lock.
func (s *outboundService) transition(id uuid.UUID, actor string, to model.OutboundStatus, guard func(tx *gorm.DB, ob *model.Outbound) error) (*model.Outbound, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ob, err := s.lockOutbound(tx, id)
		if err != nil {
			return err
		}
		if err := guard(tx, ob); err != nil {
			return err
		}
		return s.outboundRepo.UpdateHeader(tx, ob, map[string]interface{}{
			"status":     to,
			"updated_by": actor,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishStatus(id, to, actor)
	return s.Get(id)
}

func (s *outboundService) lockOutbound(tx *gorm.DB, id uuid.UUID) (*model.Outbound, error) {
	ob, err := s.outboundRepo.FindForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("outbound %s not found", id)
		}
		return nil, err
	}
	return ob, nil
}

func (s *outboundService) publishStatus(id uuid.UUID, status model.OutboundStatus, actor string) {
	s.hub.Publish("outbound_status", map[string]interface{}{
		"outbound_id": id,
		"status":      status,
		"actor":       actor,
		"at":          time.Now().UTC(),
	})
}
