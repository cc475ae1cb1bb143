package repository

import (
	"go-wms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryRepository interface {
	Create(tx *gorm.DB, delivery *model.Delivery) error
	FindByID(id uuid.UUID) (*model.Delivery, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Delivery, error)
	FindByOutbound(outboundID uuid.UUID) (*model.Delivery, error)
	List(page, limit int) ([]model.Delivery, int64, error)
	UpdateStatus(tx *gorm.DB, delivery *model.Delivery, updates map[string]interface{}) error
	AppendEvent(tx *gorm.DB, event *model.DeliveryEvent) error
	HasEvent(tx *gorm.DB, deliveryID uuid.UUID, eventID string) (bool, error)
}

type deliveryRepo struct {
	db *gorm.DB
}

func NewDeliveryRepo(db *gorm.DB) DeliveryRepository {
	return &deliveryRepo{db}
}

func (r *deliveryRepo) Create(tx *gorm.DB, delivery *model.Delivery) error {
	return tx.Create(delivery).Error
}

func (r *deliveryRepo) FindByID(id uuid.UUID) (*model.Delivery, error) {
	var delivery model.Delivery
	err := r.db.Preload("Events", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&delivery, "id = ?", id).Error
	return &delivery, err
}

func (r *deliveryRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Delivery, error) {
	var delivery model.Delivery
	err := forUpdate(tx).First(&delivery, "id = ?", id).Error
	return &delivery, err
}

func (r *deliveryRepo) FindByOutbound(outboundID uuid.UUID) (*model.Delivery, error) {
	var delivery model.Delivery
	err := r.db.Preload("Events").First(&delivery, "outbound_id = ?", outboundID).Error
	return &delivery, err
}

func (r *deliveryRepo) List(page, limit int) ([]model.Delivery, int64, error) {
	var total int64
	if err := r.db.Model(&model.Delivery{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var deliveries []model.Delivery
	err := r.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&deliveries).Error
	return deliveries, total, err
}

func (r *deliveryRepo) UpdateStatus(tx *gorm.DB, delivery *model.Delivery, updates map[string]interface{}) error {
	return updateVersioned(tx, &model.Delivery{}, delivery.ID, delivery.Version, updates)
}

func (r *deliveryRepo) AppendEvent(tx *gorm.DB, event *model.DeliveryEvent) error {
	return tx.Create(event).Error
}

func (r *deliveryRepo) HasEvent(tx *gorm.DB, deliveryID uuid.UUID, eventID string) (bool, error) {
	var count int64
	err := tx.Model(&model.DeliveryEvent{}).
		Where("delivery_id = ? AND event_id = ?", deliveryID, eventID).
		Count(&count).Error
	return count > 0, err
}
