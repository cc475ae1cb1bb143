package repository

import (
	"go-wms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InboundRepository interface {
	Create(inbound *model.Inbound) error
	FindByID(id uuid.UUID) (*model.Inbound, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Inbound, error)
	List(page, limit int) ([]model.Inbound, int64, error)
	UpdateHeader(tx *gorm.DB, inbound *model.Inbound, updates map[string]interface{}) error
	UpdateItem(tx *gorm.DB, item *model.InboundItem, updates map[string]interface{}) error
}

type inboundRepo struct {
	db *gorm.DB
}

func NewInboundRepo(db *gorm.DB) InboundRepository {
	return &inboundRepo{db}
}

func (r *inboundRepo) Create(inbound *model.Inbound) error {
	return r.db.Create(inbound).Error
}

func (r *inboundRepo) FindByID(id uuid.UUID) (*model.Inbound, error) {
	var inbound model.Inbound
	err := r.db.Preload("Items").First(&inbound, "id = ?", id).Error
	return &inbound, err
}

func (r *inboundRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Inbound, error) {
	var inbound model.Inbound
	if err := forUpdate(tx).First(&inbound, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("inbound_id = ?", id).Order("created_at ASC").
		Find(&inbound.Items).Error; err != nil {
		return nil, err
	}
	return &inbound, nil
}

func (r *inboundRepo) List(page, limit int) ([]model.Inbound, int64, error) {
	var total int64
	if err := r.db.Model(&model.Inbound{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var inbounds []model.Inbound
	err := r.db.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&inbounds).Error
	return inbounds, total, err
}

func (r *inboundRepo) UpdateHeader(tx *gorm.DB, inbound *model.Inbound, updates map[string]interface{}) error {
	return updateVersioned(tx, &model.Inbound{}, inbound.ID, inbound.Version, updates)
}

func (r *inboundRepo) UpdateItem(tx *gorm.DB, item *model.InboundItem, updates map[string]interface{}) error {
	return updateVersioned(tx, &model.InboundItem{}, item.ID, item.Version, updates)
}
