package repository

import (
	"go-wms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(location *model.Location) error
	FindAll() ([]model.Location, error)
	FindByID(id uuid.UUID) (*model.Location, error)
	FindByCode(code string) (*model.Location, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Location, error)
	Update(location *model.Location, updates map[string]interface{}) error
	UpdateOccupancy(tx *gorm.DB, id uuid.UUID, occupancy int, updatedBy string) error
}

type locationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) LocationRepository {
	return &locationRepo{db}
}

func (r *locationRepo) Create(location *model.Location) error {
	return r.db.Create(location).Error
}

func (r *locationRepo) FindAll() ([]model.Location, error) {
	var locations []model.Location
	err := r.db.Order("code ASC").Find(&locations).Error
	return locations, err
}

func (r *locationRepo) FindByID(id uuid.UUID) (*model.Location, error) {
	var location model.Location
	err := r.db.First(&location, "id = ?", id).Error
	return &location, err
}

func (r *locationRepo) FindByCode(code string) (*model.Location, error) {
	var location model.Location
	err := r.db.First(&location, "code = ?", code).Error
	return &location, err
}

// FindForUpdate locks the location row for the duration of tx; occupancy
// changes must go through this lock.
func (r *locationRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Location, error) {
	var location model.Location
	err := forUpdate(tx).First(&location, "id = ?", id).Error
	return &location, err
}

func (r *locationRepo) Update(location *model.Location, updates map[string]interface{}) error {
	return updateVersioned(r.db, &model.Location{}, location.ID, location.Version, updates)
}

func (r *locationRepo) UpdateOccupancy(tx *gorm.DB, id uuid.UUID, occupancy int, updatedBy string) error {
	return tx.Model(&model.Location{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_occupancy": occupancy,
			"updated_by":        updatedBy,
		}).Error
}
