package service

import (
	"errors"
	"fmt"

	"go-wms/internal/apperr"
	"go-wms/internal/model"
	"go-wms/internal/repository"
	"go-wms/pkg/idgen"
	"go-wms/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreatePaymentRequest struct {
	OutboundID *uuid.UUID `json:"outbound_id,omitempty"`
	Amount     string     `json:"amount" validate:"required"`
	Method     string     `json:"method" validate:"max=50"`
}

// PaymentWebhookRequest is a gateway callback. EventID is the gateway's
// idempotency key: replays of an already-recorded id are acknowledged
// without touching the payment again.
type PaymentWebhookRequest struct {
	EventID string `json:"event_id" validate:"required,max=100"`
	Status  string `json:"status" validate:"required"`
	Notes   string `json:"notes" validate:"max=500"`
}

type PaymentService interface {
	Create(req *CreatePaymentRequest, actor string) (*model.Payment, error)
	Get(id uuid.UUID) (*model.Payment, error)
	List(page, limit int) ([]model.Payment, int64, error)

	Confirm(id uuid.UUID, actor string) (*model.Payment, error)
	Fail(id uuid.UUID, actor string) (*model.Payment, error)
	Cancel(id uuid.UUID, actor string) (*model.Payment, error)
	HandleWebhook(id uuid.UUID, req *PaymentWebhookRequest, actor string) (*model.Payment, error)

	// ShipAuthorization implements the ship gate consulted by the outbound
	// state machine.
	ShipAuthorization(tx *gorm.DB, outbound *model.Outbound) (bool, error)
}

type paymentService struct {
	paymentRepo  repository.PaymentRepository
	outboundRepo repository.OutboundRepository
	db           *gorm.DB
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	outboundRepo repository.OutboundRepository,
	db *gorm.DB,
) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		outboundRepo: outboundRepo,
		db:           db,
	}
}

func (s *paymentService) Create(req *CreatePaymentRequest, actor string) (*model.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, apperr.Validation("invalid amount %q", req.Amount)
	}
	if amount.IsNegative() {
		return nil, apperr.Validation("amount must not be negative")
	}

	payment := &model.Payment{
		PaymentNo:  idgen.DocNumber("PAY"),
		OutboundID: req.OutboundID,
		Status:     model.PaymentPending,
		Amount:     amount,
		Method:     req.Method,
	}
	payment.CreatedBy = actor
	payment.UpdatedBy = actor

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.OutboundID != nil {
			ob, err := s.outboundRepo.FindForUpdate(tx, *req.OutboundID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("outbound %s not found", *req.OutboundID)
				}
				return err
			}
			if ob.PaymentID != nil {
				// A failed payment is retried with a fresh Payment; the link
				// moves to the new one.
				prev, err := s.paymentRepo.FindByIDTx(tx, *ob.PaymentID)
				if err != nil {
					return err
				}
				if prev.Status != model.PaymentFailed {
					return apperr.Validation(
						"outbound %s already has payment %s", ob.OutboundNo, prev.PaymentNo)
				}
			}
			if err := tx.Create(payment).Error; err != nil {
				return err
			}
			return s.outboundRepo.UpdateHeader(tx, ob, map[string]interface{}{
				"payment_id": payment.ID,
				"updated_by": actor,
			})
		}
		return tx.Create(payment).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Get(id uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment %s not found", id)
		}
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) List(page, limit int) ([]model.Payment, int64, error) {
	return s.paymentRepo.List(page, limit)
}

func (s *paymentService) Confirm(id uuid.UUID, actor string) (*model.Payment, error) {
	return s.settle(id, model.PaymentConfirmed, nil, "", actor)
}

func (s *paymentService) Fail(id uuid.UUID, actor string) (*model.Payment, error) {
	return s.settle(id, model.PaymentFailed, nil, "", actor)
}

func (s *paymentService) Cancel(id uuid.UUID, actor string) (*model.Payment, error) {
	return s.settle(id, model.PaymentCancelled, nil, "", actor)
}

func (s *paymentService) HandleWebhook(id uuid.UUID, req *PaymentWebhookRequest, actor string) (*model.Payment, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	status, err := model.ParsePaymentStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if status != model.PaymentConfirmed && status != model.PaymentFailed {
		return nil, apperr.Validation("gateway may only report CONFIRMED or FAILED")
	}

	return s.settle(id, status, &req.EventID, req.Notes, actor)
}

// settle applies a terminal outcome under the payment row lock, appending
// one audit event. The dedupe check runs before the transition guard so a
// replayed settling event stays a quiet no-op.
func (s *paymentService) settle(id uuid.UUID, to model.PaymentStatus, eventID *string, notes string, actor string) (*model.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("payment %s not found", id)
			}
			return err
		}

		if eventID != nil {
			duplicate, err := s.paymentRepo.HasEvent(tx, payment.ID, *eventID)
			if err != nil {
				return err
			}
			if duplicate {
				return apperr.DuplicateEvent("event %s already processed", *eventID)
			}
		}

		if payment.Status.Terminal() {
			return apperr.InvalidTransition(
				"payment %s is already %s", payment.PaymentNo, payment.Status)
		}

		if err := s.paymentRepo.UpdateStatus(tx, payment, map[string]interface{}{
			"status":     to,
			"updated_by": actor,
		}); err != nil {
			return err
		}

		if notes == "" {
			notes = fmt.Sprintf("payment %s by %s", to, actor)
		}
		event := &model.PaymentEvent{
			PaymentID: payment.ID,
			EventID:   eventID,
			Status:    to,
			Notes:     notes,
		}
		event.CreatedBy = actor
		event.UpdatedBy = actor
		return s.paymentRepo.AppendEvent(tx, event)
	})
	if err != nil {
		// The caller still gets the current state on an idempotent replay.
		if apperr.Is(err, apperr.CodeDuplicateEvent) {
			if payment, getErr := s.Get(id); getErr == nil {
				return payment, err
			}
		}
		return nil, err
	}

	return s.Get(id)
}

// ShipAuthorization: prepaid orders ship only on a confirmed payment;
// COD and postpaid orders are always cleared. The payment type is read from
// the outbound at the moment of shipment, so a type changed after payment
// creation is honored as it stands now.
func (s *paymentService) ShipAuthorization(tx *gorm.DB, outbound *model.Outbound) (bool, error) {
	if outbound.PaymentType != model.PaymentPrepaid {
		return true, nil
	}
	if outbound.PaymentID == nil {
		return false, nil
	}

	payment, err := s.paymentRepo.FindByIDTx(tx, *outbound.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return payment.Status == model.PaymentConfirmed, nil
}
