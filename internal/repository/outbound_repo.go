package repository

import (
	"go-wms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboundRepository interface {
	Create(outbound *model.Outbound) error
	FindByID(id uuid.UUID) (*model.Outbound, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Outbound, error)
	List(page, limit int) ([]model.Outbound, int64, error)
	UpdateHeader(tx *gorm.DB, outbound *model.Outbound, updates map[string]interface{}) error
	UpdateItem(tx *gorm.DB, item *model.OutboundItem, updates map[string]interface{}) error
}

type outboundRepo struct {
	db *gorm.DB
}

func NewOutboundRepo(db *gorm.DB) OutboundRepository {
	return &outboundRepo{db}
}

func (r *outboundRepo) Create(outbound *model.Outbound) error {
	return r.db.Create(outbound).Error
}

func (r *outboundRepo) FindByID(id uuid.UUID) (*model.Outbound, error) {
	var outbound model.Outbound
	err := r.db.Preload("Items").First(&outbound, "id = ?", id).Error
	return &outbound, err
}

// FindForUpdate locks the header so two fulfillment commands cannot race on
// the same order, then loads the items inside the same tx.
func (r *outboundRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Outbound, error) {
	var outbound model.Outbound
	if err := forUpdate(tx).First(&outbound, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("outbound_id = ?", id).Order("created_at ASC").
		Find(&outbound.Items).Error; err != nil {
		return nil, err
	}
	return &outbound, nil
}

func (r *outboundRepo) List(page, limit int) ([]model.Outbound, int64, error) {
	var total int64
	if err := r.db.Model(&model.Outbound{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var outbounds []model.Outbound
	err := r.db.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&outbounds).Error
	return outbounds, total, err
}

func (r *outboundRepo) UpdateHeader(tx *gorm.DB, outbound *model.Outbound, updates map[string]interface{}) error {
	return updateVersioned(tx, &model.Outbound{}, outbound.ID, outbound.Version, updates)
}

func (r *outboundRepo) UpdateItem(tx *gorm.DB, item *model.OutboundItem, updates map[string]interface{}) error {
	return updateVersioned(tx, &model.OutboundItem{}, item.ID, item.Version, updates)
}
