package repository

import (
	"go-wms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(payment *model.Payment) error
	FindByID(id uuid.UUID) (*model.Payment, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Payment, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Payment, error)
	List(page, limit int) ([]model.Payment, int64, error)
	UpdateStatus(tx *gorm.DB, payment *model.Payment, updates map[string]interface{}) error
	AppendEvent(tx *gorm.DB, event *model.PaymentEvent) error
	HasEvent(tx *gorm.DB, paymentID uuid.UUID, eventID string) (bool, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepo) FindByID(id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Preload("Events").First(&payment, "id = ?", id).Error
	return &payment, err
}

func (r *paymentRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := forUpdate(tx).First(&payment, "id = ?", id).Error
	return &payment, err
}

// FindByIDTx reads within the caller's transaction without locking; the ship
// gate uses it so the authorization decision sees committed state only.
func (r *paymentRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := tx.First(&payment, "id = ?", id).Error
	return &payment, err
}

func (r *paymentRepo) List(page, limit int) ([]model.Payment, int64, error) {
	var total int64
	if err := r.db.Model(&model.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var payments []model.Payment
	err := r.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepo) UpdateStatus(tx *gorm.DB, payment *model.Payment, updates map[string]interface{}) error {
	return updateVersioned(tx, &model.Payment{}, payment.ID, payment.Version, updates)
}

func (r *paymentRepo) AppendEvent(tx *gorm.DB, event *model.PaymentEvent) error {
	return tx.Create(event).Error
}

func (r *paymentRepo) HasEvent(tx *gorm.DB, paymentID uuid.UUID, eventID string) (bool, error) {
	var count int64
	err := tx.Model(&model.PaymentEvent{}).
		Where("payment_id = ? AND event_id = ?", paymentID, eventID).
		Count(&count).Error
	return count > 0, err
}
