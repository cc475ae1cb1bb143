package repository

import (
	"go-wms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Update(product *model.Product, updates map[string]interface{}) error
	Count() (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("sku ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) Update(product *model.Product, updates map[string]interface{}) error {
	return updateVersioned(r.db, &model.Product{}, product.ID, product.Version, updates)
}

func (r *productRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}
