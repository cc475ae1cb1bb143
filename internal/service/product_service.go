package service

import (
	"errors"

	"go-wms/internal/apperr"
	"go-wms/internal/model"
	"go-wms/internal/repository"
	"go-wms/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	SKU    string  `json:"sku" validate:"required,max=50"`
	Name   string  `json:"name" validate:"required,max=255"`
	Length float64 `json:"length" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

// UpdateProductRequest deliberately has no SKU field: SKU is immutable.
type UpdateProductRequest struct {
	Name   string  `json:"name" validate:"required,max=255"`
	Length float64 `json:"length" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

type ProductService interface {
	Create(req *CreateProductRequest, actor string) (*model.Product, error)
	Update(id uuid.UUID, req *UpdateProductRequest, actor string) (*model.Product, error)
	SetActive(id uuid.UUID, active bool, actor string) (*model.Product, error)
	Get(id uuid.UUID) (*model.Product, error)
	GetBySKU(sku string) (*model.Product, error)
	List() ([]model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) Create(req *CreateProductRequest, actor string) (*model.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// SKU duplication is a business validation, not a DB constraint surprise
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return nil, apperr.Validation("SKU %s already exists", req.SKU)
	}

	product := &model.Product{
		SKU:      req.SKU,
		Name:     req.Name,
		Length:   req.Length,
		Width:    req.Width,
		Height:   req.Height,
		Weight:   req.Weight,
		IsActive: true,
	}
	product.CreatedBy = actor
	product.UpdatedBy = actor

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(id uuid.UUID, req *UpdateProductRequest, actor string) (*model.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	err = s.productRepo.Update(product, map[string]interface{}{
		"name":       req.Name,
		"length":     req.Length,
		"width":      req.Width,
		"height":     req.Height,
		"weight":     req.Weight,
		"updated_by": actor,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *productService) SetActive(id uuid.UUID, active bool, actor string) (*model.Product, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	err = s.productRepo.Update(product, map[string]interface{}{
		"is_active":  active,
		"updated_by": actor,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *productService) Get(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %s not found", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetBySKU(sku string) (*model.Product, error) {
	product, err := s.productRepo.FindBySKU(sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product with SKU %s not found", sku)
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) List() ([]model.Product, error) {
	return s.productRepo.FindAll()
}
