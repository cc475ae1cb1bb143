package service

import (
	"errors"
	"time"

	"go-wms/internal/apperr"
	"go-wms/internal/model"
	"go-wms/internal/repository"
	"go-wms/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// deliveryTransitions is the closed edge set of the tracker. Completing is
// only legal from IN_TRANSIT; failing from any non-terminal state; a
// shipment may come back as RETURNED while on the road.
var deliveryTransitions = map[model.DeliveryStatus][]model.DeliveryStatus{
	model.DeliveryPending:   {model.DeliveryInTransit, model.DeliveryCancelled, model.DeliveryFailed},
	model.DeliveryInTransit: {model.DeliveryDelivered, model.DeliveryFailed, model.DeliveryReturned},
}

func deliveryCanTransition(from, to model.DeliveryStatus) bool {
	for _, allowed := range deliveryTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type DeliveryStatusRequest struct {
	Status   string `json:"status" validate:"required"`
	Location string `json:"location" validate:"max=255"`
	Notes    string `json:"notes" validate:"max=500"`
}

type DeliveryEventRequest struct {
	Location string `json:"location" validate:"max=255"`
	Notes    string `json:"notes" validate:"required,max=500"`
}

// DeliveryWebhookRequest is a carrier callback, deduplicated on the
// partner-supplied EventID exactly like payment webhooks.
type DeliveryWebhookRequest struct {
	EventID  string `json:"event_id" validate:"required,max=100"`
	Status   string `json:"status" validate:"required"`
	Location string `json:"location" validate:"max=255"`
	Notes    string `json:"notes" validate:"max=500"`
}

type DeliveryService interface {
	Get(id uuid.UUID) (*model.Delivery, error)
	GetByOutbound(outboundID uuid.UUID) (*model.Delivery, error)
	List(page, limit int) ([]model.Delivery, int64, error)

	UpdateStatus(id uuid.UUID, req *DeliveryStatusRequest, actor string) (*model.Delivery, error)
	AddEvent(id uuid.UUID, req *DeliveryEventRequest, actor string) (*model.Delivery, error)
	HandleWebhook(id uuid.UUID, req *DeliveryWebhookRequest, actor string) (*model.Delivery, error)
}

type deliveryService struct {
	deliveryRepo repository.DeliveryRepository
	db           *gorm.DB
}

func NewDeliveryService(deliveryRepo repository.DeliveryRepository, db *gorm.DB) DeliveryService {
	return &deliveryService{deliveryRepo: deliveryRepo, db: db}
}

func (s *deliveryService) Get(id uuid.UUID) (*model.Delivery, error) {
	delivery, err := s.deliveryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("delivery %s not found", id)
		}
		return nil, err
	}
	return delivery, nil
}

func (s *deliveryService) GetByOutbound(outboundID uuid.UUID) (*model.Delivery, error) {
	delivery, err := s.deliveryRepo.FindByOutbound(outboundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no delivery for outbound %s", outboundID)
		}
		return nil, err
	}
	return delivery, nil
}

func (s *deliveryService) List(page, limit int) ([]model.Delivery, int64, error) {
	return s.deliveryRepo.List(page, limit)
}

func (s *deliveryService) UpdateStatus(id uuid.UUID, req *DeliveryStatusRequest, actor string) (*model.Delivery, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	status, err := model.ParseDeliveryStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(id, status, nil, req.Location, req.Notes, actor)
}

// AddEvent appends a tracking note without changing status.
func (s *deliveryService) AddEvent(id uuid.UUID, req *DeliveryEventRequest, actor string) (*model.Delivery, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		delivery, err := s.lockDelivery(tx, id)
		if err != nil {
			return err
		}
		event := &model.DeliveryEvent{
			DeliveryID: delivery.ID,
			Status:     delivery.Status,
			Location:   req.Location,
			Notes:      req.Notes,
			OccurredAt: time.Now().UTC(),
		}
		event.CreatedBy = actor
		event.UpdatedBy = actor
		return s.deliveryRepo.AppendEvent(tx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *deliveryService) HandleWebhook(id uuid.UUID, req *DeliveryWebhookRequest, actor string) (*model.Delivery, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	status, err := model.ParseDeliveryStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(id, status, &req.EventID, req.Location, req.Notes, actor)
}

func (s *deliveryService) applyStatus(id uuid.UUID, to model.DeliveryStatus, eventID *string, location, notes, actor string) (*model.Delivery, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		delivery, err := s.lockDelivery(tx, id)
		if err != nil {
			return err
		}

		if eventID != nil {
			duplicate, err := s.deliveryRepo.HasEvent(tx, delivery.ID, *eventID)
			if err != nil {
				return err
			}
			if duplicate {
				return apperr.DuplicateEvent("event %s already processed", *eventID)
			}
		}

		if !deliveryCanTransition(delivery.Status, to) {
			return apperr.InvalidTransition(
				"delivery %s cannot move from %s to %s", delivery.DeliveryNo, delivery.Status, to)
		}

		if err := s.deliveryRepo.UpdateStatus(tx, delivery, map[string]interface{}{
			"status":     to,
			"updated_by": actor,
		}); err != nil {
			return err
		}

		event := &model.DeliveryEvent{
			DeliveryID: delivery.ID,
			EventID:    eventID,
			Status:     to,
			Location:   location,
			Notes:      notes,
			OccurredAt: time.Now().UTC(),
		}
		event.CreatedBy = actor
		event.UpdatedBy = actor
		return s.deliveryRepo.AppendEvent(tx, event)
	})
	if err != nil {
		if apperr.Is(err, apperr.CodeDuplicateEvent) {
			if delivery, getErr := s.Get(id); getErr == nil {
				return delivery, err
			}
		}
		return nil, err
	}

	return s.Get(id)
}

func (s *deliveryService) lockDelivery(tx *gorm.DB, id uuid.UUID) (*model.Delivery, error) {
	delivery, err := s.deliveryRepo.FindForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("delivery %s not found", id)
		}
		return nil, err
	}
	return delivery, nil
}
