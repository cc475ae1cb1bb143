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

type CreateLocationRequest struct {
	Code     string     `json:"code" validate:"required,max=50"`
	Capacity int        `json:"capacity" validate:"gte=0"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type UpdateLocationRequest struct {
	Capacity *int       `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// CapacityCheck is the putaway pre-flight answer.
type CapacityCheck struct {
	LocationID       uuid.UUID `json:"location_id"`
	Capacity         int       `json:"capacity"`
	CurrentOccupancy int       `json:"current_occupancy"`
	Available        int       `json:"available"`
	Sufficient       bool      `json:"sufficient"`
	Shortage         int       `json:"shortage"`
}

type LocationService interface {
	Create(req *CreateLocationRequest, actor string) (*model.Location, error)
	Update(id uuid.UUID, req *UpdateLocationRequest, actor string) (*model.Location, error)
	SetActive(id uuid.UUID, active bool, actor string) (*model.Location, error)
	Get(id uuid.UUID) (*model.Location, error)
	List() ([]model.Location, error)
	CheckCapacity(id uuid.UUID, required int) (*CapacityCheck, error)

	// AdjustOccupancy moves stored units in or out of a location inside the
	// caller's transaction, holding the location row lock.
	AdjustOccupancy(tx *gorm.DB, id uuid.UUID, delta int, actor string) error
}

type locationService struct {
	locationRepo repository.LocationRepository
}

func NewLocationService(locationRepo repository.LocationRepository) LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) Create(req *CreateLocationRequest, actor string) (*model.Location, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	existing, _ := s.locationRepo.FindByCode(req.Code)
	if existing != nil && existing.ID != uuid.Nil {
		return nil, apperr.Validation("location code %s already exists", req.Code)
	}

	if req.ParentID != nil {
		if _, err := s.Get(*req.ParentID); err != nil {
			return nil, err
		}
	}

	location := &model.Location{
		Code:     req.Code,
		Capacity: req.Capacity,
		ParentID: req.ParentID,
		IsActive: true,
	}
	location.CreatedBy = actor
	location.UpdatedBy = actor

	if err := s.locationRepo.Create(location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *locationService) Update(id uuid.UUID, req *UpdateLocationRequest, actor string) (*model.Location, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	location, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_by": actor}

	if req.Capacity != nil {
		// Capacity may never be squeezed below what is already stored.
		if *req.Capacity < location.CurrentOccupancy {
			return nil, apperr.InsufficientCapacity(
				"capacity %d is below current occupancy %d",
				*req.Capacity, location.CurrentOccupancy)
		}
		updates["capacity"] = *req.Capacity
	}

	if req.ParentID != nil {
		if err := s.checkNoCycle(id, *req.ParentID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *req.ParentID
	}

	if err := s.locationRepo.Update(location, updates); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// checkNoCycle walks the proposed parent chain; the hierarchy is a tree, so
// the chain must never reach the location being updated.
func (s *locationService) checkNoCycle(id, parentID uuid.UUID) error {
	current := parentID
	for depth := 0; depth < 100; depth++ {
		if current == id {
			return apperr.Validation("location hierarchy must not contain cycles")
		}
		parent, err := s.Get(current)
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
	return apperr.Validation("location hierarchy too deep")
}

func (s *locationService) SetActive(id uuid.UUID, active bool, actor string) (*model.Location, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	location, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	err = s.locationRepo.Update(location, map[string]interface{}{
		"is_active":  active,
		"updated_by": actor,
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func (s *locationService) Get(id uuid.UUID) (*model.Location, error) {
	location, err := s.locationRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("location %s not found", id)
		}
		return nil, err
	}
	return location, nil
}

func (s *locationService) List() ([]model.Location, error) {
	return s.locationRepo.FindAll()
}

func (s *locationService) CheckCapacity(id uuid.UUID, required int) (*CapacityCheck, error) {
	if required <= 0 {
		return nil, apperr.Validation("required amount must be positive")
	}

	location, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !location.IsActive {
		return nil, apperr.Validation("location %s is inactive", location.Code)
	}

	check := &CapacityCheck{
		LocationID:       location.ID,
		Capacity:         location.Capacity,
		CurrentOccupancy: location.CurrentOccupancy,
		Available:        location.Available(),
		Sufficient:       location.Available() >= required,
	}
	if !check.Sufficient {
		check.Shortage = required - check.Available
	}
	return check, nil
}

func (s *locationService) AdjustOccupancy(tx *gorm.DB, id uuid.UUID, delta int, actor string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	location, err := s.locationRepo.FindForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("location %s not found", id)
		}
		return err
	}

	newOccupancy := location.CurrentOccupancy + delta
	if newOccupancy < 0 {
		newOccupancy = 0
	}
	if newOccupancy > location.Capacity {
		return apperr.InsufficientCapacity(
			"location %s cannot hold %d more units (capacity %d, occupancy %d)",
			location.Code, delta, location.Capacity, location.CurrentOccupancy)
	}

	return s.locationRepo.UpdateOccupancy(tx, id, newOccupancy, actor)
}
